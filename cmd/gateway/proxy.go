package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"api-guard/middleware/auth"
	"api-guard/middleware/httperr"

	"go.uber.org/zap"
)

const (
	headerAuthSubject = "X-Auth-Subject"
	headerAuthRole    = "X-Auth-Role"
)

// forwardIdentity descarta cópias enviadas pelo cliente e repassa ao upstream
// a identidade verificada pelo pipeline (se houver).
func forwardIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(headerAuthSubject)
		r.Header.Del(headerAuthRole)
		if id, ok := auth.IdentityFromContext(r.Context()); ok {
			r.Header.Set(headerAuthSubject, id.Subject)
			r.Header.Set(headerAuthRole, string(id.Role))
		}
		next.ServeHTTP(w, r)
	})
}

func newProxy(target *url.URL, log *zap.Logger) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("proxy error", zap.String("path", r.URL.Path), zap.Error(err))
		httperr.Write(w, http.StatusBadGateway, httperr.MsgBadGateway)
	}
	return proxy
}
