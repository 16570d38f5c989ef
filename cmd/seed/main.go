// seed genera el script SQL que carga grupos, productos y precios por grupo
// a partir de la lista de precios heredada (CSV exportado desde Excel en Windows-1252).
//
// Uso: go run ./cmd/seed [ruta/precios.csv] [salida.sql]
// Por defecto lee precios.csv del directorio actual y escribe migrations/0003_seed_catalog.sql.
//
// Formato: separador ';', primera fila de encabezados:
//
//	producto;unidad;especial;<clave grupo 1>;<clave grupo 2>;...
//
// Una celda de precio vacía deja al producto sin precio para ese grupo (no vendible).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	csvPath := "precios.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "migrations", "0003_seed_catalog.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, err := parseCatalog(transform.NewReader(f, charmap.Windows1252.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, cat); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d grupos, %d productos, %d precios\n",
		outPath, len(cat.Grupos), len(cat.Productos), cat.precios())
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
