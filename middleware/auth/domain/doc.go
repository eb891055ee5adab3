// Package domain define os tipos de identidade e os contratos de emissão e
// verificação de tokens.
//
// Não depende de net/http nem de bibliotecas de JWT. A camada infra implementa
// Issuer/Verifier; a camada application decide o que anexar ao request.
package domain
