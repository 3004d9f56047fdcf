// Package respond padroniza as respostas JSON da API, de sucesso e de erro.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
)

// JSON escreve data com o status informado. data nil gera corpo vazio.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	if data == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error traduz err pela taxonomia de apperror e escreve {code, category, message}.
// 5xx é logado como Error com a causa; 4xx apenas em Debug.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if log != nil {
		if status >= http.StatusInternalServerError {
			log.Error(fmt.Sprintf("Erro de Servidor em %s %s: %s", r.Method, r.URL.Path, category), err)
		} else {
			log.Debug(fmt.Sprintf("Requisição rejeitada com status %d.", status), map[string]interface{}{
				"path":     r.URL.Path,
				"category": category,
			})
		}
	}

	JSON(w, status, domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// Handle é o atalho usado pelos handlers: erro ou sucesso com successStatus.
func Handle(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err != nil {
		Error(w, r, log, err)
		return
	}
	JSON(w, successStatus, data)
}

// Decode lê o corpo JSON (limite de 1 MiB).
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("payload JSON inválido.")
	}
	return nil
}
