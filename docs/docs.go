// Package docs registra o documento OpenAPI da API El Brasero no swag,
// servido pelo http-swagger em /swagger/*. Os comentários @Router dos
// handlers descrevem as mesmas rotas.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Registra um novo cliente",
            "parameters": [{"in": "body", "name": "registration", "required": true, "schema": {"$ref": "#/definitions/domain.UserRegistration"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}},
                "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Autentica e abre uma sessão",
            "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.LoginResult"}},
                "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Emite um novo access token",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RefreshRequest"}}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Encerra a sessão do refresh token informado",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RefreshRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.MessageResponse"}}}}},
        "/auth/logout-all": {"post": {"tags": ["auth"], "summary": "Encerra todas as sessões", "security": [{"BearerAuth": []}],
            "responses": {"200": {"description": "OK"}}}},
        "/auth/status": {"get": {"tags": ["auth"], "summary": "Estado da sessão atual", "security": [{"BearerAuth": []}],
            "responses": {"200": {"description": "OK"}}}},
        "/auth/perfil": {
            "get": {"tags": ["perfil"], "summary": "Perfil do usuário autenticado", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}}}},
            "put": {"tags": ["perfil"], "summary": "Atualiza o perfil", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "profile", "required": true, "schema": {"$ref": "#/definitions/domain.Profile"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}}}}},
        "/auth/recovery/request": {"post": {"tags": ["recovery"], "summary": "Solicita um código de recuperação",
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.MessageResponse"}}}}},
        "/auth/recovery/validate": {"post": {"tags": ["recovery"], "summary": "Verifica um código sem consumi-lo",
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}},
        "/auth/recovery/reset": {"post": {"tags": ["recovery"], "summary": "Define uma nova senha",
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}},
        "/productos": {"get": {"tags": ["productos"], "summary": "Lista o catálogo",
            "parameters": [{"in": "query", "name": "q", "type": "string"}, {"in": "query", "name": "categoria", "type": "string"},
                {"in": "query", "name": "min", "type": "integer"}, {"in": "query", "name": "max", "type": "integer"},
                {"in": "query", "name": "page", "type": "integer"}, {"in": "query", "name": "limit", "type": "integer"}],
            "responses": {"200": {"description": "OK"}}}},
        "/productos/{id}": {"get": {"tags": ["productos"], "summary": "Busca um produto",
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}},
        "/carrito": {
            "get": {"tags": ["carrito"], "summary": "Carrinho do usuário", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["carrito"], "summary": "Esvazia o carrinho", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/carrito/resumen": {"get": {"tags": ["carrito"], "summary": "Quantidade total de itens", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/carrito/items": {"post": {"tags": ["carrito"], "summary": "Define a quantidade de um produto", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/carrito/items/{productId}": {"delete": {"tags": ["carrito"], "summary": "Remove um produto do carrinho", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "path", "name": "productId", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/pedidos": {"get": {"tags": ["pedidos"], "summary": "Pedidos do usuário", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/pedidos/confirmar": {"post": {"tags": ["pedidos"], "summary": "Confirma o carrinho como pedido", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "body", "name": "customer", "required": true, "schema": {"$ref": "#/definitions/domain.Profile"}}],
            "responses": {"201": {"description": "Created"}, "404": {"description": "Carrinho vazio", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}},
        "/pedidos/confirmacion/{id}": {"get": {"tags": ["pedidos"], "summary": "Página de confirmação", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/pagos/iniciar": {"post": {"tags": ["pagos"], "summary": "Inicia o pagamento no Webpay Plus", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/pagos/confirmar-webpay": {
            "get": {"tags": ["pagos"], "summary": "Retorno do Webpay", "responses": {"303": {"description": "See Other"}}},
            "post": {"tags": ["pagos"], "summary": "Retorno do Webpay", "responses": {"303": {"description": "See Other"}}}},
        "/pagos/simular": {"post": {"tags": ["pagos"], "summary": "Simula o resultado do pagamento", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/productos": {
            "get": {"tags": ["admin"], "summary": "Catálogo completo", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["admin"], "summary": "Cria um produto", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "product", "required": true, "schema": {"$ref": "#/definitions/domain.ProductInput"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Product"}}}}},
        "/admin/productos/{id}": {
            "put": {"tags": ["admin"], "summary": "Atualiza um produto", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "product", "required": true, "schema": {"$ref": "#/definitions/domain.ProductInput"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}}}},
            "delete": {"tags": ["admin"], "summary": "Remove um produto", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}},
        "/admin/pedidos": {"get": {"tags": ["admin"], "summary": "Todos os pedidos", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "query", "name": "estado", "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/admin/pedidos/{id}": {"get": {"tags": ["admin"], "summary": "Pedido com histórico de pagamento", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/admin/pedidos/{id}/estado": {"put": {"tags": ["admin"], "summary": "Altera o estado de um pedido", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Transição inválida"}, "409": {"description": "Conflito"}}}},
        "/admin/usuarios/admin": {"post": {"tags": ["admin"], "summary": "Cria um administrador", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "body", "name": "registration", "required": true, "schema": {"$ref": "#/definitions/domain.UserRegistration"}}],
            "responses": {"201": {"description": "Created"}}}},
        "/admin/usuarios/{id}/activo": {"put": {"tags": ["admin"], "summary": "Ativa ou desativa uma conta", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "domain.ErrorResponse": {"type": "object", "properties": {
            "code": {"type": "integer", "example": 400},
            "category": {"type": "string", "example": "VALIDATION_ERROR"},
            "message": {"type": "string"}}},
        "domain.MessageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "domain.UserRegistration": {"type": "object", "properties": {
            "email": {"type": "string", "example": "user@test.cl"},
            "password": {"type": "string", "example": "Passw0rd!"}}},
        "auth.LoginRequest": {"type": "object", "properties": {
            "email": {"type": "string"}, "password": {"type": "string"}}},
        "auth.RefreshRequest": {"type": "object", "properties": {"refresh_token": {"type": "string"}}},
        "domain.LoginResult": {"type": "object", "properties": {
            "access_token": {"type": "string"}, "refresh_token": {"type": "string"},
            "role": {"type": "string"}, "profile_complete": {"type": "boolean"}}},
        "domain.Profile": {"type": "object", "properties": {
            "name": {"type": "string"}, "phone": {"type": "string"},
            "address": {"type": "string"}, "commune": {"type": "string"}}},
        "domain.User": {"type": "object", "properties": {
            "id": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"},
            "active": {"type": "boolean"}, "name": {"type": "string"}, "phone": {"type": "string"},
            "address": {"type": "string"}, "commune": {"type": "string"}}},
        "domain.Product": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "description": {"type": "string"},
            "price": {"type": "integer"}, "category": {"type": "string"}, "image_url": {"type": "string"},
            "available": {"type": "boolean"}}},
        "domain.ProductInput": {"type": "object", "properties": {
            "name": {"type": "string"}, "description": {"type": "string"}, "price": {"type": "integer"},
            "category": {"type": "string"}, "image_url": {"type": "string"}, "available": {"type": "boolean"}}}
    }
}`

// SwaggerInfo guarda os metadados exportados do documento.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "El Brasero API",
	Description:      "API da loja El Brasero: catálogo, carrinho, pedidos e pagamentos Webpay.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
