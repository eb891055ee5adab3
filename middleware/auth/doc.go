// Package auth fornece o estágio de autenticação (net/http) do pipeline.
//
// Camadas:
//
//   - domain: Claim, Role, TokenError e contratos Issuer/Verifier
//   - application: header Authorization -> identidade opcional
//   - infra: tokens HS256 (golang-jwt)
//   - auth (este pacote): middleware que anexa a identidade ao context do request
//
// O middleware nunca rejeita: requests sem token (ou com token inválido) seguem
// como anônimos. Handlers leem a identidade com IdentityFromContext e podem usar
// RequireRole para exigir um papel.
package auth
