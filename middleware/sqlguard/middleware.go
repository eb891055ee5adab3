// Package sqlguard fornece o estágio de triagem de injeção SQL (net/http).
//
// É o primeiro estágio do pipeline: casa a query string (crua e decodificada)
// e, opcionalmente, um prefixo limitado do body contra assinaturas conhecidas
// e responde 400 antes de qualquer outro trabalho.
package sqlguard

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"api-guard/middleware/httperr"
	"api-guard/middleware/metrics"
	"api-guard/middleware/sqlguard/application"
	"api-guard/middleware/sqlguard/domain"

	"go.uber.org/zap"
)

const DefaultBodyLimit = 4 << 10

type Options struct {
	Signatures *domain.SignatureSet
	// ScanBody liga a leitura de até BodyLimit bytes de bodies textuais.
	// O body é devolvido intacto para o handler.
	ScanBody  bool
	BodyLimit int64

	Logger  *zap.Logger
	Metrics *metrics.Pipeline
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}
	screen := application.NewScreen(opts.Signatures)
	log := opts.Logger.Named("sqlguard")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			candidates := queryCandidates(r.URL.RawQuery)

			if opts.ScanBody && scannableBody(r) {
				prefix, err := peekBody(r, opts.BodyLimit)
				if err != nil {
					httperr.Write(w, http.StatusBadRequest, httperr.MsgMalformedRequest)
					return
				}
				candidates = append(candidates, application.Candidate{Source: "body", Value: string(prefix)})
			}

			if m, hit := screen.Scan(candidates...); hit {
				opts.Metrics.Rejected(metrics.StageInjection)
				// sem query/body no log: podem carregar segredos.
				log.Warn("suspicious input detected, blocking",
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("source", m.Source),
					zap.String("signature", m.Signature),
				)
				httperr.Write(w, http.StatusBadRequest, httperr.MsgMalformedRequest)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func queryCandidates(raw string) []application.Candidate {
	if raw == "" {
		return nil
	}
	out := []application.Candidate{{Source: "query", Value: raw}}
	if dec, err := url.QueryUnescape(raw); err == nil && dec != raw {
		out = append(out, application.Candidate{Source: "query", Value: dec})
	}
	return out
}

func scannableBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return false
	}
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return strings.HasPrefix(ct, "text/") ||
		ct == "application/json" ||
		ct == "application/x-www-form-urlencoded" ||
		strings.HasSuffix(ct, "+json")
}

// peekBody lê no máximo limit bytes e recoloca o que foi lido na frente do body.
func peekBody(r *http.Request, limit int64) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		return nil, err
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}
	return buf, nil
}
