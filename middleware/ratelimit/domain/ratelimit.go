package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

const (
	DefaultMaxRequests = 60
	DefaultWindow      = 60 * time.Second
)

// Policy é o par (limite, janela) do sliding-window log.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

func (p Policy) WithDefaults() Policy {
	if p.MaxRequests <= 0 {
		p.MaxRequests = DefaultMaxRequests
	}
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	return p
}

// Admission é o resultado de uma tentativa de registrar um request.
type Admission struct {
	Allowed bool
	// Remaining é quanto sobra na janela depois desta chamada.
	Remaining int
	// ResetIn é o tempo até o timestamp mais antigo sair da janela
	// (quando bloqueado, é quando a chave volta a ter vaga).
	ResetIn time.Duration
}

// WindowStore decide e registra admissões por chave.
//
// Para uma mesma chave, Admit precisa ser linearizável: duas chamadas
// concorrentes nunca podem ambas ver a última vaga livre.
// Chaves diferentes não devem disputar o mesmo lock.
type WindowStore interface {
	Admit(ctx context.Context, key Key, now time.Time) (Admission, error)
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
	Remaining  int
}
