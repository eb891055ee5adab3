// Package application contém o caso de uso da triagem de entradas:
// testar strings derivadas do request contra o conjunto de assinaturas.
package application

import "api-guard/middleware/sqlguard/domain"

// Candidate é uma string a examinar e de onde ela veio (query, body...).
type Candidate struct {
	Source string
	Value  string
}

type Match struct {
	Source    string
	Signature string
}

type Screen struct {
	Signatures *domain.SignatureSet
}

func NewScreen(set *domain.SignatureSet) Screen {
	if set == nil {
		set = domain.Default()
	}
	return Screen{Signatures: set}
}

// Scan retorna na primeira correspondência. Strings vazias são ignoradas.
func (s Screen) Scan(candidates ...Candidate) (Match, bool) {
	if s.Signatures == nil {
		return Match{}, false
	}
	for _, c := range candidates {
		if c.Value == "" {
			continue
		}
		if sig, ok := s.Signatures.First(c.Value); ok {
			return Match{Source: c.Source, Signature: sig.Pattern}, true
		}
	}
	return Match{}, false
}

// Suspicious é o atalho booleano sobre strings soltas.
func (s Screen) Suspicious(values ...string) bool {
	cs := make([]Candidate, len(values))
	for i, v := range values {
		cs[i] = Candidate{Value: v}
	}
	_, ok := s.Scan(cs...)
	return ok
}
