// Package responder concentra o formato das respostas JSON do mock backend.
package responder

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrorBody é o corpo padronizado de erro: {"error": "..."}.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON grava body com o status informado.
func JSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Erro ao encode response")
	}
}

// Error grava {"error": msg}.
func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, ErrorBody{Error: msg})
}

// Empty grava {} (resposta do json-server para 404 e DELETE).
func Empty(w http.ResponseWriter, r *http.Request, status int) {
	JSON(w, r, status, struct{}{})
}

// NoCache desliga o cache HTTP para respostas montadas a cada requisição.
func NoCache(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
