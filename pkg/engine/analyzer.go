package engine

import (
	"fmt"
	"sort"

	"github.com/raywall/procurement-mock/pkg/enrichment"
	"github.com/raywall/procurement-mock/pkg/store"
)

// ValidationReport contém o resultado detalhado da análise do documento seed.
type ValidationReport struct {
	Valid       bool           `json:"valid"`
	Collections map[string]int `json:"collections"`
	Errors      []string       `json:"errors,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// foreignKey descreve uma junção feita pelo enrichment.
type foreignKey struct {
	child, field     string
	parent, parentPK string
}

var foreignKeys = []foreignKey{
	{enrichment.CollectionPurchaseOrders, "vendorId", enrichment.CollectionVendors, "businessEntityId"},
	{enrichment.CollectionPurchaseOrderDetails, "purchaseOrderId", enrichment.CollectionPurchaseOrders, "purchaseOrderId"},
	{enrichment.CollectionSalesOrders, "customerId", enrichment.CollectionPersons, "businessEntityId"},
	{enrichment.CollectionSalesOrders, "salesPersonId", enrichment.CollectionPersons, "businessEntityId"},
	{enrichment.CollectionSalesOrders, "territoryId", enrichment.CollectionTerritories, "territoryId"},
	{enrichment.CollectionSalesOrderDetails, "salesOrderId", enrichment.CollectionSalesOrders, "salesOrderId"},
}

// Analyze inspeciona o documento. Ids duplicados são erros, porque o roteador
// genérico passaria a endereçar só o primeiro registro. Chaves estrangeiras sem
// pai são apenas avisos: as junções omitem o campo aninhado nesses casos.
func Analyze(doc store.Document) *ValidationReport {
	report := &ValidationReport{
		Valid:       true,
		Collections: make(map[string]int, len(doc)),
		Errors:      []string{},
		Warnings:    []string{},
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	// 1. Ids do roteador genérico
	for _, name := range names {
		records := doc[name]
		report.Collections[name] = len(records)

		seen := make(map[string]bool, len(records))
		missing := 0
		for _, rec := range records {
			id, ok := store.CanonicalID(rec[store.IDField])
			if !ok {
				missing++
				continue
			}
			if seen[id] {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: id duplicado %s", name, id))
			}
			seen[id] = true
		}
		if missing > 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %d registro(s) sem id não endereçáveis por /%s/{id}", name, missing, name))
		}
	}

	// 2. Integridade referencial das junções
	for _, fk := range foreignKeys {
		children, ok := doc[fk.child]
		if !ok {
			continue
		}
		if _, ok := doc[fk.parent]; !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s.%s: coleção %s ausente", fk.child, fk.field, fk.parent))
			continue
		}

		parents := make(map[string]bool, len(doc[fk.parent]))
		for _, p := range doc[fk.parent] {
			if id, ok := store.CanonicalID(p[fk.parentPK]); ok {
				parents[id] = true
			}
		}

		dangling := 0
		for _, c := range children {
			id, ok := store.CanonicalID(c[fk.field])
			if ok && !parents[id] {
				dangling++
			}
		}
		if dangling > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s.%s: %d referência(s) sem %s.%s correspondente", fk.child, fk.field, dangling, fk.parent, fk.parentPK))
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}
