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

// Package store mantém o documento JSON em memória que alimenta o mock backend.
//
// Visão Geral:
// O documento é um único objeto JSON cujas chaves são nomes de coleções e cujos
// valores são listas de registros planos, exatamente o layout do `db.json` usado
// pelo front end de compras/vendas:
//
//	{
//	  "vendors":         [ { "businessEntityId": 5, "name": "Acme", ... } ],
//	  "purchase-orders": [ { "purchaseOrderId": 10, "vendorId": 5, ... } ]
//	}
//
// O Store é carregado uma única vez na inicialização (ou em um hot reload) a
// partir de uma fonte (arquivo local, S3, DynamoDB, Redis ou Postgres) e
// protegido por um sync.RWMutex. Leituras sempre devolvem cópias, de modo que
// nenhum handler consegue alterar o estado compartilhado por acidente.
//
// Funcionalidades Principais:
//   - CRUD por coleção (List, Get, Insert, Replace, Patch, Delete).
//   - Repository: capacidade de leitura (FindByID, ListWhere) usada pelas junções.
//   - Sink opcional para gravar o snapshot após cada mutação (write-back).
//   - Comparação canônica de ids: 10, "10" e json.Number("10") são o mesmo id.
package store
