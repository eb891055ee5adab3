// Package domain define o conjunto de assinaturas de injeção SQL.
//
// É uma heurística barata de segunda linha, não um parser: falsos negativos
// são esperados.
package domain

import (
	"fmt"
	"regexp"
)

// DefaultPatterns mantém a ordem e as sobreposições originais (há duas
// variantes de "union select"); a primeira que casar é a reportada.
var DefaultPatterns = []string{
	`union\s+select`,
	`or\s+1\s*=\s*1`,
	`--`,
	`;\s*drop\s+table`,
	`xp_\w+`,
	`UNION\s+ALL\s+SELECT`,
}

type Signature struct {
	Pattern string
	re      *regexp.Regexp
}

func (s Signature) MatchString(v string) bool { return s.re.MatchString(v) }

// SignatureSet é imutável depois de compilado e pode ser lido por várias
// goroutines sem sincronização.
type SignatureSet struct {
	sigs []Signature
}

// Compile compila os padrões como case-insensitive, na ordem dada.
func Compile(patterns []string) (*SignatureSet, error) {
	sigs := make([]Signature, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("compile signature %q: %w", p, err)
		}
		sigs = append(sigs, Signature{Pattern: p, re: re})
	}
	return &SignatureSet{sigs: sigs}, nil
}

// MustCompile é para conjuntos fixos conhecidos em tempo de compilação.
func MustCompile(patterns []string) *SignatureSet {
	s, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return s
}

func Default() *SignatureSet { return MustCompile(DefaultPatterns) }

// First devolve a primeira assinatura (na ordem da lista) que casa com v.
func (s *SignatureSet) First(v string) (Signature, bool) {
	for _, sig := range s.sigs {
		if sig.MatchString(v) {
			return sig, true
		}
	}
	return Signature{}, false
}

func (s *SignatureSet) Len() int { return len(s.sigs) }
