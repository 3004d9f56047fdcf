package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"400"`
	Category string `json:"category" example:"VALIDATION_ERROR"`
	Message  string `json:"message" example:"Erro de Validação: o campo 'email' é obrigatório."`
}

// MessageResponse é usada nas respostas que só carregam uma mensagem.
type MessageResponse struct {
	Message string `json:"message" example:"Operação realizada com sucesso."`
}
