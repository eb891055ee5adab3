// Package httperr escreve as respostas terminais do pipeline no formato
// {"error": "<mensagem>"}.
package httperr

import (
	"encoding/json"
	"net/http"
)

const (
	MsgMalformedRequest = "Malformed request"
	MsgTooManyRequests  = "Too many requests"
	MsgUnauthorized     = "Unauthorized"
	MsgForbidden        = "Forbidden"
	MsgUnavailable      = "Service unavailable"
	MsgBadGateway       = "Bad gateway"
)

type body struct {
	Error string `json:"error"`
}

// Write substitui http.Error para manter o corpo estruturado.
func Write(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body{Error: msg})
}
