package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"api-guard/middleware/auth/domain"

	jwt "github.com/golang-jwt/jwt/v5"
)

// MinTTL é a menor validade aceita para um token.
const MinTTL = time.Second

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// HMACTokenService emite e verifica tokens HS256 com um segredo compartilhado.
//
// O segredo é copiado na construção e nunca mais alterado, então leituras
// concorrentes não precisam de sincronização.
type HMACTokenService struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

var (
	_ domain.Issuer   = (*HMACTokenService)(nil)
	_ domain.Verifier = (*HMACTokenService)(nil)
)

func NewHMACTokenService(secret []byte, ttl time.Duration) (*HMACTokenService, error) {
	if len(secret) < domain.MinSecretLen {
		return nil, domain.ErrSecretTooShort
	}
	// iat/exp têm resolução de segundo; ttl menor que isso gera token já expirado.
	if ttl < MinTTL {
		return nil, fmt.Errorf("token ttl must be >= %s", MinTTL)
	}
	key := make([]byte, len(secret))
	copy(key, secret)

	return &HMACTokenService{
		secret: key,
		ttl:    ttl,
		// expiração é checada à mão em Verify (now > exp), depois da assinatura.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			// base64url estrito: bits de sobra do último caractere precisam ser zero,
			// senão várias strings de assinatura valeriam pelo mesmo token.
			jwt.WithStrictDecoding(),
		),
	}, nil
}

func (s *HMACTokenService) TTL() time.Duration { return s.ttl }

func (s *HMACTokenService) Generate(subject string, role domain.Role, now time.Time) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("subject is required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	now = now.Truncate(time.Second)

	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify segue a ordem: formato -> assinatura (tempo constante) -> payload -> expiração.
func (s *HMACTokenService) Verify(token string, now time.Time) (domain.Claim, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return domain.Claim{}, &domain.TokenError{Kind: domain.Malformed, Err: errors.New("token must have three non-empty segments")}
	}

	// assinatura que não decodifica não pode bater com o HMAC.
	sig, err := s.parser.DecodeSegment(parts[2])
	if err != nil {
		return domain.Claim{}, &domain.TokenError{Kind: domain.BadSignature, Err: err}
	}
	// SigningMethodHMAC.Verify compara com hmac.Equal.
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, s.secret); err != nil {
		return domain.Claim{}, &domain.TokenError{Kind: domain.BadSignature, Err: err}
	}

	var claims tokenClaims
	_, err = s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return s.secret, nil })
	if err != nil {
		// header com alg diferente de HS256 cai aqui como assinatura inválida.
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return domain.Claim{}, &domain.TokenError{Kind: domain.BadSignature, Err: err}
		}
		return domain.Claim{}, &domain.TokenError{Kind: domain.Malformed, Err: err}
	}

	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return domain.Claim{}, &domain.TokenError{Kind: domain.Malformed, Err: errors.New("missing iat/exp")}
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok || strings.TrimSpace(claims.Subject) == "" {
		return domain.Claim{}, &domain.TokenError{Kind: domain.Malformed, Err: errors.New("missing subject or unknown role")}
	}

	out := domain.Claim{
		Subject:   claims.Subject,
		Role:      role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if now.After(out.ExpiresAt) {
		return domain.Claim{}, &domain.TokenError{Kind: domain.Expired, Err: jwt.ErrTokenExpired}
	}
	return out, nil
}
