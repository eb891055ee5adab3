// upstream-echo é o upstream de validação manual do gateway: responde com a
// identidade que o gateway repassou nos headers X-Auth-*.
package main

import (
	"encoding/json"
	"net/http"
	"os"

	"api-guard/logging"

	"go.uber.org/zap"
)

type echo struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Subject string `json:"subject,omitempty"`
	Role    string `json:"role,omitempty"`
}

func handler(log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := echo{
			Method:  r.Method,
			Path:    r.URL.Path,
			Subject: r.Header.Get("X-Auth-Subject"),
			Role:    r.Header.Get("X-Auth-Role"),
		}
		log.Info("request received", zap.String("path", e.Path), zap.String("subject", e.Subject))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(e)
	})
}

func main() {
	log := logging.New("info", "console")
	defer func() { _ = log.Sync() }()

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	log.Info("upstream echo listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler(log)); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
