package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole aceita apenas os papéis conhecidos (case-sensitive, como no token).
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Claim é a identidade carregada dentro de um token assinado.
//
// Imutável depois de criada: é passada por valor para quem consome.
// IssuedAt e ExpiresAt têm resolução de segundo (o emissor trunca o instante).
type Claim struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Valid verifica apenas a forma (subject não vazio e papel conhecido).
// Expiração é responsabilidade do Verifier.
func (c Claim) Valid() bool {
	return strings.TrimSpace(c.Subject) != "" && c.Role.Valid()
}
