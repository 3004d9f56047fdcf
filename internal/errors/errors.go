package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do Brasero.
// Ela permite que o Handler acesse a Categoria, o Status HTTP e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes
}

// --- Erros de Entrada e de Regra de Negócio ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// BusinessRuleError representa uma operação bem formada que viola uma regra
// do negócio (transição de estado ilegal, produto indisponível, quantidade fora do limite).
type BusinessRuleError struct {
	Msg string
}

func (e *BusinessRuleError) Error() string    { return fmt.Sprintf("Regra de negócio violada: %s", e.Msg) }
func (e *BusinessRuleError) Category() string { return "BUSINESS_RULE" }
func (e *BusinessRuleError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *BusinessRuleError) Unwrap() error    { return nil }

func NewBusinessRuleError(msg string) AppError {
	return &BusinessRuleError{Msg: msg}
}

// --- Erros de Autenticação e Autorização ---

// UnauthorizedError representa credenciais ausentes, inválidas ou expiradas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autenticado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro 401.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// InvalidSessionError indica que o refresh token (ou a sessão como um todo)
// foi revogado, expirou ou não existe.
type InvalidSessionError struct {
	Msg string
}

func (e *InvalidSessionError) Error() string    { return fmt.Sprintf("Sessão inválida: %s", e.Msg) }
func (e *InvalidSessionError) Category() string { return "INVALID_SESSION" }
func (e *InvalidSessionError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *InvalidSessionError) Unwrap() error    { return nil }

func NewInvalidSessionError(msg string) AppError {
	return &InvalidSessionError{Msg: msg}
}

// AccountDisabledError é retornado no login de uma conta com active=false.
type AccountDisabledError struct {
	Msg string
}

func (e *AccountDisabledError) Error() string    { return fmt.Sprintf("Conta desativada: %s", e.Msg) }
func (e *AccountDisabledError) Category() string { return "ACCOUNT_DISABLED" }
func (e *AccountDisabledError) HTTPStatus() int  { return http.StatusForbidden }
func (e *AccountDisabledError) Unwrap() error    { return nil }

func NewAccountDisabledError(msg string) AppError {
	return &AccountDisabledError{Msg: msg}
}

// ForbiddenError representa um usuário autenticado sem a role necessária.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden }
func (e *ForbiddenError) Unwrap() error    { return nil }

func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// --- Erros de Recurso ---

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um campo único duplicado ou uma atualização concorrente perdida.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// TooManyRequestsError é usado pelo rate limiter.
type TooManyRequestsError struct {
	Msg string
}

func (e *TooManyRequestsError) Error() string    { return e.Msg }
func (e *TooManyRequestsError) Category() string { return "RATE_LIMITED" }
func (e *TooManyRequestsError) HTTPStatus() int  { return http.StatusTooManyRequests }
func (e *TooManyRequestsError) Unwrap() error    { return nil }

func NewTooManyRequestsError(msg string) AppError {
	return &TooManyRequestsError{Msg: msg}
}

// --- Erros de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor.
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %v", msg, err), err)
}

// --- Helpers ---

// GenericInternalMessage é o único texto exposto ao cliente em respostas 5xx.
const GenericInternalMessage = "Ocorreu um erro inesperado."

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP, a categoria
// e a mensagem exposta ao cliente. Erros encapsulados com %w mantêm o status original.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		status := appErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			return status, appErr.Category(), GenericInternalMessage
		}
		return status, appErr.Category(), appErr.Error()
	}

	return http.StatusInternalServerError, "UNKNOWN_ERROR", GenericInternalMessage
}

// Is* são atalhos usados pelos serviços para traduzir erros vindos do repositório.

func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return stderrors.As(err, &target)
}
