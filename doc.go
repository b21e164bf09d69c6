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

// Package procurementmock é o backend mock de compras e vendas consumido pelos
// clientes Angular durante o desenvolvimento.
//
// Visão Geral:
// O serviço carrega um documento seed (coleções de registros JSON) em memória e
// o expõe de duas formas:
// 1. Roteador genérico (pkg/router): CRUD estilo json-server sobre qualquer
//    coleção, com filtros, busca, paginação e ordenação via query string.
// 2. Interceptor de junções (pkg/interceptor): rotas de pedidos de compra e de
//    venda que devolvem o registro já desnormalizado com vendor, customer,
//    salesPerson, territory e a lista de detalhes.
//
// Fluxo de uma requisição:
//
//	observabilidade -> CORS -> rewrite (aliases) -> interceptor -> roteador -> 404 {}
//
// Sub-Pacotes Principais:
//
// 1. store:
//   - Documento em memória protegido por RWMutex, ids comparados de forma canônica.
//   - Fontes: arquivo local (JSON/YAML), S3, DynamoDB, Redis e Postgres.
//   - Persistência opcional das mutações em arquivo.
//
// 2. enrichment e interceptor:
//   - Junções best-effort: pai ausente omite o campo aninhado.
//   - Pedido raiz inexistente responde 404 com {"error": "..."}.
//
// 3. rewrite:
//   - Tabela declarativa de aliases (/api/v1/*, /sales-orders/*, ...).
//
// 4. config, logger, observability, transport:
//   - YAML com interpolação de env, SSM e Secrets Manager.
//   - zerolog, métricas DataDog, servidor HTTP, Lambda e hot reload via SQS.
//
// Exemplo de Uso:
//
//	cfg, err := config.Load(ctx, config.Path())
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc, err := engine.NewServiceEngine(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	transport.StartHTTPServer(ctx, ":3000", svc.Handler(), transport.ServerOptions{})
package procurementmock
