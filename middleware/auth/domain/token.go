package domain

import (
	"errors"
	"time"
)

// MinSecretLen é o tamanho mínimo (em bytes) do segredo de assinatura.
const MinSecretLen = 32

// ErrSecretTooShort é a única falha de configuração fatal do pipeline:
// o processo não deve subir com um segredo curto.
var ErrSecretTooShort = errors.New("signing secret must be at least 32 bytes")

type TokenErrorKind int

const (
	Malformed TokenErrorKind = iota + 1
	BadSignature
	Expired
)

func (k TokenErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case BadSignature:
		return "bad_signature"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// TokenError é o resultado "etiquetado" de uma verificação que falhou.
// Nenhuma dessas falhas é fatal: quem chama trata como anônimo.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + e.Kind.String()
	}
	return "token " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *TokenError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, &TokenError{Kind: Expired}).
func (e *TokenError) Is(target error) bool {
	t, ok := target.(*TokenError)
	return ok && t.Kind == e.Kind
}

// KindOf devolve o tipo da falha, ou 0 se err não for um TokenError.
func KindOf(err error) TokenErrorKind {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// Issuer gera tokens. Função pura das entradas + segredo do processo.
type Issuer interface {
	Generate(subject string, role Role, now time.Time) (string, error)
}

// Verifier valida tokens sem mutar estado.
// Em caso de falha o erro é sempre um *TokenError.
type Verifier interface {
	Verify(token string, now time.Time) (Claim, error)
}
