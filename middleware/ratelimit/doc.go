// Package ratelimit fornece o adapter HTTP (net/http) do rate limit por cliente.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: caso de uso (decisão allow/deny, Retry-After) sem net/http
//   - infra: sliding-window log em memória ou Redis, token bucket, stats
//   - ratelimit (este pacote): middleware HTTP + extração de chave + tradução para status/headers
//
// Fluxo no pipeline:
//
//  1. Extrai a chave do cliente (endereço remoto; header/XFF se configurado)
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, responde 429 {"error":"Too many requests"} com Retry-After
//  4. Se permitido, chama o próximo estágio (autenticação)
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como RATE_MAX_REQUESTS, RATE_WINDOW e RATE_BACKEND.
package ratelimit
