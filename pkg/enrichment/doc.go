// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package enrichment monta as respostas desnormalizadas do mock backend,
// juntando coleções pai aos registros filhos no momento da leitura.
//
// Visão Geral:
// O documento seed guarda registros planos: um pedido de compra conhece apenas
// o `vendorId`, um pedido de venda conhece apenas `customerId`, `salesPersonId`
// e `territoryId`. O Enricher resolve essas chaves estrangeiras contra as
// coleções pai e anexa objetos-resumo ao registro base:
//
//	purchase-orders     + vendors                 -> vendor, purchaseOrderDetails
//	sales-order-headers + persons x2, territories -> customer, salesPerson,
//	                                                 territory, salesOrderDetails
//
// Política de junção:
// As junções são best-effort. Quando o registro pai não existe a chave aninhada
// é simplesmente omitida (nem null, nem objeto vazio). Apenas as buscas de
// registro raiz (PurchaseOrder, SalesOrder) reportam "não encontrado".
//
// O Enricher nunca escreve no Store: ele apenas lê através de store.Repository
// a cada chamada, sem cache. Quando o repositório implementa store.Viewer, cada
// operação roda dentro de uma única visão, então uma escrita ou um hot reload
// concorrente nunca mistura duas versões do documento na mesma resposta.
package enrichment
