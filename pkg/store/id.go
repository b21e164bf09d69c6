package store

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CanonicalID normaliza um id para comparação. Números inteiros, strings
// numéricas e json.Number com o mesmo valor produzem a mesma forma.
// Retorna false quando o valor não pode ser usado como id.
func CanonicalID(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return "", false
		}
		if isDigits(s) {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return strconv.FormatInt(n, 10), true
			}
		}
		return s, true
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return strconv.FormatInt(n, 10), true
		}
		if f, err := x.Float64(); err == nil {
			return formatFloat(f), true
		}
		return x.String(), true
	case float64:
		return formatFloat(x), true
	case float32:
		return formatFloat(float64(x)), true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	default:
		return "", false
	}
}

// SameID compara dois valores de id na forma canônica.
func SameID(a, b any) bool {
	ca, ok := CanonicalID(a)
	if !ok {
		return false
	}
	cb, ok := CanonicalID(b)
	return ok && ca == cb
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
