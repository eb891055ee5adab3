// Package infra contém a implementação concreta dos contratos de token
// definidos em domain.
//
//   - HMACTokenService: JWT HS256 (header.payload.assinatura em base64url)
//     usando github.com/golang-jwt/jwt/v5
package infra
