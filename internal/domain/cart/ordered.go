package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ordered objeto JSON que conserva el orden de sus claves al serializar y deserializar.
type Ordered[V any] struct {
	keys []string
	vals map[string]V
}

// Set agrega o reemplaza key; una clave nueva va al final.
func (m *Ordered[V]) Set(key string, v V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get devuelve el valor de key.
func (m *Ordered[V]) Get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys claves en orden de inserción.
func (m *Ordered[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len número de claves.
func (m *Ordered[V]) Len() int { return len(m.keys) }

// MarshalJSON escribe las claves en orden.
func (m Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON lee el objeto token a token para conservar el orden. null deja el mapa vacío.
func (m *Ordered[V]) UnmarshalJSON(b []byte) error {
	m.keys = nil
	m.vals = make(map[string]V)
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("cart: se esperaba un objeto JSON")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("cart: clave no textual %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("cart: valor de %q: %w", key, err)
		}
		m.Set(key, v)
	}
	_, err = dec.Token()
	return err
}
