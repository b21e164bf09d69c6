package enrichment

import (
	"fmt"
	"strings"

	"github.com/raywall/procurement-mock/pkg/store"
)

var (
	vendorSummaryFields    = []string{"businessEntityId", "name", "accountNumber"}
	personSummaryFields    = []string{"businessEntityId", "personType", "title", "firstName", "middleName", "lastName"}
	territorySummaryFields = []string{"territoryId", "name", "countryRegionCode", "group"}
)

// VendorSummary é o subconjunto do Vendor anexado aos pedidos de compra.
func VendorSummary(vendor store.Record) map[string]interface{} {
	return pick(vendor, vendorSummaryFields)
}

// PersonSummary resume uma Person (cliente ou vendedor) e deriva fullName.
func PersonSummary(person store.Record) map[string]interface{} {
	out := pick(person, personSummaryFields)
	out["fullName"] = FullName(text(person["title"]), text(person["firstName"]), text(person["lastName"]))
	return out
}

// TerritorySummary resume um Territory.
func TerritorySummary(territory store.Record) map[string]interface{} {
	return pick(territory, territorySummaryFields)
}

// FullName concatena título, nome e sobrenome separados por um único espaço.
// Partes vazias são descartadas, então um título ausente não deixa espaço sobrando.
func FullName(title, firstName, lastName string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{title, firstName, lastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// pick copia apenas os campos presentes no registro de origem.
func pick(rec store.Record, fields []string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

func text(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
