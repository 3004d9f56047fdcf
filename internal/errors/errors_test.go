package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "brasero/internal/errors"
)

func TestMapToHTTPStatus_TypedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		category string
	}{
		{"validation", apperror.NewValidationError("email"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"business rule", apperror.NewBusinessRuleError("anulado"), http.StatusBadRequest, "BUSINESS_RULE"},
		{"unauthorized", apperror.NewUnauthorizedError("token"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid session", apperror.NewInvalidSessionError("revogada"), http.StatusUnauthorized, "INVALID_SESSION"},
		{"account disabled", apperror.NewAccountDisabledError("conta"), http.StatusForbidden, "ACCOUNT_DISABLED"},
		{"forbidden", apperror.NewForbiddenError("admin"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", apperror.NewNotFoundError("pedido"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", apperror.NewConflictError("email"), http.StatusConflict, "CONFLICT"},
		{"rate limited", apperror.NewTooManyRequestsError("calma"), http.StatusTooManyRequests, "RATE_LIMITED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, category, message := apperror.MapToHTTPStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.err.Error(), message)
		})
	}
}

func TestMapToHTTPStatus_WrappedErrorKeepsStatus(t *testing.T) {
	err := fmt.Errorf("camada de serviço: %w", apperror.NewNotFoundError("produto"))

	status, category, _ := apperror.MapToHTTPStatus(err)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", category)
}

func TestMapToHTTPStatus_InternalHidesDetails(t *testing.T) {
	err := apperror.NewDBError("falha ao inserir pedido", errors.New("pq: connection refused"))

	status, category, message := apperror.MapToHTTPStatus(err)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", category)
	assert.Equal(t, apperror.GenericInternalMessage, message)
	assert.NotContains(t, message, "connection refused")
}

func TestMapToHTTPStatus_UntypedError(t *testing.T) {
	status, category, message := apperror.MapToHTTPStatus(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "UNKNOWN_ERROR", category)
	assert.Equal(t, apperror.GenericInternalMessage, message)
}

func TestIsNotFoundAndIsConflict(t *testing.T) {
	assert.True(t, apperror.IsNotFound(fmt.Errorf("x: %w", apperror.NewNotFoundError("a"))))
	assert.False(t, apperror.IsNotFound(apperror.NewConflictError("a")))
	assert.True(t, apperror.IsConflict(apperror.NewConflictError("a")))
}
