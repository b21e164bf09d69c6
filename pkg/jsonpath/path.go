// Package jsonpath navega valores JSON decodificados usando caminhos no
// formato "campo.subcampo[0].nome".
package jsonpath

import (
	"encoding/json"
	"strconv"
	"strings"
)

// segment representa uma parte do caminho: um campo de objeto ou um índice de array.
type segment struct {
	field   string
	isIndex bool
	index   int
}

// Lookup extrai um valor de data seguindo o caminho.
// Exemplos de caminhos válidos:
//   - "name" -> valor direto
//   - "vendor.accountNumber" -> navega em objetos aninhados
//   - "purchaseOrderDetails[1].orderQty" -> campo de um elemento do array
//
// Retorna false quando algum trecho do caminho não existe.
func Lookup(data interface{}, path string) (interface{}, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return data, true
	}

	current := data
	for _, seg := range parse(path) {
		if seg.isIndex {
			arr, ok := current.([]interface{})
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return nil, false
			}
			current = arr[seg.index]
			continue
		}

		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, exists := m[seg.field]
		if !exists {
			return nil, false
		}
		current = value
	}
	return current, true
}

// ToFloat converte números (e strings numéricas) para float64.
func ToFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// parse converte a string do caminho em segmentos; índices inválidos são ignorados.
func parse(path string) []segment {
	var segs []segment

	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}

		for part != "" {
			open := strings.Index(part, "[")
			if open == -1 {
				segs = append(segs, segment{field: part})
				break
			}
			end := strings.Index(part[open:], "]")
			if end == -1 {
				// Bracket não fechado, trata como campo normal
				segs = append(segs, segment{field: part})
				break
			}
			end += open

			if name := part[:open]; name != "" {
				segs = append(segs, segment{field: name})
			}
			if idx, err := strconv.Atoi(part[open+1 : end]); err == nil {
				segs = append(segs, segment{isIndex: true, index: idx})
			}
			part = part[end+1:]
		}
	}
	return segs
}
