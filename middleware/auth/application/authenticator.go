package application

import (
	"strings"
	"time"

	"api-guard/middleware/auth/domain"
)

// BearerPrefix é comparado literalmente (case-sensitive).
const BearerPrefix = "Bearer "

// Outcome descreve o que aconteceu com o header, sem expor o token.
type Outcome string

const (
	OutcomeAnonymous     Outcome = "anonymous"
	OutcomeAuthenticated Outcome = "authenticated"
	OutcomeMalformed     Outcome = "malformed"
	OutcomeBadSignature  Outcome = "bad_signature"
	OutcomeExpired       Outcome = "expired"
)

type Result struct {
	Claim   domain.Claim
	Present bool
	Outcome Outcome
}

type Authenticator struct {
	Verifier domain.Verifier
}

// Authenticate nunca falha: qualquer problema vira identidade vazia.
func (a Authenticator) Authenticate(header string, now time.Time) Result {
	if a.Verifier == nil || !strings.HasPrefix(header, BearerPrefix) {
		return Result{Outcome: OutcomeAnonymous}
	}

	claim, err := a.Verifier.Verify(strings.TrimPrefix(header, BearerPrefix), now)
	if err != nil {
		return Result{Outcome: outcomeFor(domain.KindOf(err))}
	}
	return Result{Claim: claim, Present: true, Outcome: OutcomeAuthenticated}
}

func outcomeFor(k domain.TokenErrorKind) Outcome {
	switch k {
	case domain.BadSignature:
		return OutcomeBadSignature
	case domain.Expired:
		return OutcomeExpired
	}
	return OutcomeMalformed
}
