package enrichment

import (
	"context"

	"github.com/raywall/procurement-mock/pkg/store"
)

// Nomes das coleções no documento seed.
const (
	CollectionPersons              = "persons"
	CollectionVendors              = "vendors"
	CollectionTerritories          = "territories"
	CollectionPurchaseOrders       = "purchase-orders"
	CollectionPurchaseOrderDetails = "purchase-order-details"
	CollectionSalesOrders          = "sales-order-headers"
	CollectionSalesOrderDetails    = "sales-order-details"
)

// Chaves e campos de junção.
const (
	keyBusinessEntity = "businessEntityId"
	keyTerritory      = "territoryId"
	keyPurchaseOrder  = "purchaseOrderId"
	keySalesOrder     = "salesOrderId"

	fieldVendor       = "vendor"
	fieldCustomer     = "customer"
	fieldSalesPerson  = "salesPerson"
	fieldTerritory    = "territory"
	fieldPODetails    = "purchaseOrderDetails"
	fieldSalesDetails = "salesOrderDetails"
)

// Enricher monta os objetos desnormalizados a partir de um Repository emprestado.
type Enricher struct {
	repo store.Repository
}

// New cria um Enricher sobre o repositório informado.
func New(repo store.Repository) *Enricher {
	return &Enricher{repo: repo}
}

// PurchaseOrderDetails retorna os detalhes com purchaseOrderId == id (lista vazia se nenhum).
func (e *Enricher) PurchaseOrderDetails(ctx context.Context, id interface{}) (details []store.Record) {
	e.read(ctx, func(r store.Repository) {
		details = r.ListWhere(ctx, CollectionPurchaseOrderDetails, store.FieldEquals(keyPurchaseOrder, id))
	})
	return details
}

// PurchaseOrder retorna o pedido com vendor e purchaseOrderDetails anexados.
// O segundo retorno é false quando o pedido não existe.
func (e *Enricher) PurchaseOrder(ctx context.Context, id interface{}) (order store.Record, found bool) {
	e.read(ctx, func(r store.Repository) {
		order, found = r.FindByID(ctx, CollectionPurchaseOrders, keyPurchaseOrder, id)
		if !found {
			return
		}
		attachVendor(ctx, r, order)
		order[fieldPODetails] = r.ListWhere(ctx, CollectionPurchaseOrderDetails, store.FieldEquals(keyPurchaseOrder, id))
	})
	return order, found
}

// PurchaseOrders retorna todos os pedidos de compra, na ordem da coleção, com vendor anexado.
func (e *Enricher) PurchaseOrders(ctx context.Context) (orders []store.Record) {
	e.read(ctx, func(r store.Repository) {
		orders = r.ListWhere(ctx, CollectionPurchaseOrders, nil)
		for _, order := range orders {
			attachVendor(ctx, r, order)
		}
	})
	return orders
}

// SalesOrderDetails retorna os detalhes com salesOrderId == id.
func (e *Enricher) SalesOrderDetails(ctx context.Context, id interface{}) (details []store.Record) {
	e.read(ctx, func(r store.Repository) {
		details = r.ListWhere(ctx, CollectionSalesOrderDetails, store.FieldEquals(keySalesOrder, id))
	})
	return details
}

// SalesOrder retorna o cabeçalho com customer, salesPerson, territory e salesOrderDetails.
func (e *Enricher) SalesOrder(ctx context.Context, id interface{}) (order store.Record, found bool) {
	e.read(ctx, func(r store.Repository) {
		order, found = r.FindByID(ctx, CollectionSalesOrders, keySalesOrder, id)
		if !found {
			return
		}
		attachSalesParents(ctx, r, order)
		order[fieldSalesDetails] = r.ListWhere(ctx, CollectionSalesOrderDetails, store.FieldEquals(keySalesOrder, id))
	})
	return order, found
}

// SalesOrders aplica a mesma composição de SalesOrder a todos os cabeçalhos.
// Os detalhes são agrupados em uma única leitura da coleção.
func (e *Enricher) SalesOrders(ctx context.Context) (orders []store.Record) {
	e.read(ctx, func(r store.Repository) {
		orders = r.ListWhere(ctx, CollectionSalesOrders, nil)

		byOrder := make(map[string][]store.Record)
		for _, detail := range r.ListWhere(ctx, CollectionSalesOrderDetails, nil) {
			if key, ok := store.CanonicalID(detail[keySalesOrder]); ok {
				byOrder[key] = append(byOrder[key], detail)
			}
		}

		for _, order := range orders {
			attachSalesParents(ctx, r, order)

			details := []store.Record{}
			if key, ok := store.CanonicalID(order[keySalesOrder]); ok && byOrder[key] != nil {
				details = byOrder[key]
			}
			order[fieldSalesDetails] = details
		}
	})
	return orders
}

// read usa uma visão única do repositório quando ele oferece uma, de modo que
// o registro raiz e seus pais venham da mesma versão do documento.
func (e *Enricher) read(ctx context.Context, fn func(store.Repository)) {
	if v, ok := e.repo.(store.Viewer); ok {
		v.View(ctx, fn)
		return
	}
	fn(e.repo)
}

func attachVendor(ctx context.Context, r store.Repository, order store.Record) {
	attach(ctx, r, order, fieldVendor, CollectionVendors, keyBusinessEntity, order["vendorId"], VendorSummary)
}

func attachSalesParents(ctx context.Context, r store.Repository, order store.Record) {
	attach(ctx, r, order, fieldCustomer, CollectionPersons, keyBusinessEntity, order["customerId"], PersonSummary)
	attach(ctx, r, order, fieldSalesPerson, CollectionPersons, keyBusinessEntity, order["salesPersonId"], PersonSummary)
	attach(ctx, r, order, fieldTerritory, CollectionTerritories, keyTerritory, order["territoryId"], TerritorySummary)
}

// attach resolve uma chave estrangeira; pai ausente remove o campo.
func attach(ctx context.Context, r store.Repository, order store.Record, field, collection, key string, id interface{}, summarize func(store.Record) map[string]interface{}) {
	if parent, ok := r.FindByID(ctx, collection, key, id); ok {
		order[field] = summarize(parent)
		return
	}
	delete(order, field)
}
