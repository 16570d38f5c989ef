package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain/money"
)

const fixedColumns = 3 // producto;unidad;especial

type producto struct {
	Nombre   string
	Unidad   string
	Especial bool
	// Precios por clave de grupo; solo grupos con precio.
	Precios map[string]decimal.Decimal
}

type catalogo struct {
	Grupos    []string
	Productos []producto
}

func (c *catalogo) precios() int {
	n := 0
	for _, p := range c.Productos {
		n += len(p.Precios)
	}
	return n
}

// parseCatalog lee el CSV ya decodificado a UTF-8. Productos repetidos: gana la última fila.
func parseCatalog(r io.Reader) (*catalogo, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("archivo vacío")
		}
		return nil, err
	}
	if len(header) <= fixedColumns {
		return nil, fmt.Errorf("encabezado sin columnas de grupo")
	}
	cat := &catalogo{}
	for _, g := range header[fixedColumns:] {
		g = strings.ToUpper(strings.TrimSpace(g))
		if g == "" {
			return nil, fmt.Errorf("clave de grupo vacía en el encabezado")
		}
		cat.Grupos = append(cat.Grupos, g)
	}

	index := make(map[string]int)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		p, err := parseRow(rec, cat.Grupos)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		key := strings.ToLower(p.Nombre)
		if i, ok := index[key]; ok {
			cat.Productos[i] = p
			continue
		}
		index[key] = len(cat.Productos)
		cat.Productos = append(cat.Productos, p)
	}
	return cat, nil
}

func parseRow(rec []string, grupos []string) (producto, error) {
	p := producto{
		Nombre:  strings.TrimSpace(rec[0]),
		Precios: make(map[string]decimal.Decimal),
	}
	if len(rec) > 1 {
		p.Unidad = strings.TrimSpace(rec[1])
	}
	if p.Unidad == "" {
		p.Unidad = "pz"
	}
	if len(rec) > 2 {
		p.Especial = parseBool(rec[2])
	}
	for i, g := range grupos {
		col := fixedColumns + i
		if col >= len(rec) || strings.TrimSpace(rec[col]) == "" {
			continue
		}
		v, err := money.Parse(rec[col])
		if err != nil {
			return producto{}, fmt.Errorf("precio de %s para %s: %w", p.Nombre, g, err)
		}
		if v.IsNegative() {
			return producto{}, fmt.Errorf("precio negativo de %s para %s", p.Nombre, g)
		}
		p.Precios[g] = money.Round(v)
	}
	return p, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "si", "sí", "s", "x", "1":
		return true
	}
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

// writeSQL script idempotente: grupos y productos por clave natural, precios con upsert.
func writeSQL(w io.Writer, cat *catalogo) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("-- Catálogo inicial generado desde la lista de precios heredada\n\n")

	bw.WriteString("-- 1. Grupos\n")
	bw.WriteString("INSERT INTO grupo (clave_grupo) VALUES\n")
	for i, g := range cat.Grupos {
		sep := ","
		if i == len(cat.Grupos)-1 {
			sep = ""
		}
		fmt.Fprintf(bw, "  ('%s')%s\n", escapeSQL(g), sep)
	}
	bw.WriteString("ON CONFLICT (clave_grupo) DO NOTHING;\n\n")

	bw.WriteString("-- 2. Productos\n")
	for _, p := range cat.Productos {
		fmt.Fprintf(bw, "INSERT INTO producto (nombre_producto, unidad_producto, es_especial) VALUES ('%s', '%s', %t)\n",
			escapeSQL(p.Nombre), escapeSQL(p.Unidad), p.Especial)
		bw.WriteString("ON CONFLICT (nombre_producto) DO UPDATE SET unidad_producto = EXCLUDED.unidad_producto, es_especial = EXCLUDED.es_especial;\n")
	}

	bw.WriteString("\n-- 3. Precios por grupo\n")
	for _, p := range cat.Productos {
		for _, g := range cat.Grupos {
			v, ok := p.Precios[g]
			if !ok {
				continue
			}
			fmt.Fprintf(bw, "INSERT INTO precio_por_grupo (id_grupo, id_producto, precio_base)\n")
			fmt.Fprintf(bw, "SELECT g.id_grupo, p.id_producto, %s FROM grupo g, producto p WHERE g.clave_grupo = '%s' AND p.nombre_producto = '%s'\n",
				v.StringFixed(money.MoneyScale), escapeSQL(g), escapeSQL(p.Nombre))
			bw.WriteString("ON CONFLICT (id_grupo, id_producto) DO UPDATE SET precio_base = EXCLUDED.precio_base;\n")
		}
	}
	return bw.Flush()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
