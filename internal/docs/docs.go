// Package docs registra la definición OpenAPI servida en /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Estado del servicio", "responses": {"200": {"description": "ok"}}}
        },
        "/auth/register": {
            "post": {"tags": ["auth"], "summary": "Registrar usuario", "responses": {"201": {"description": "sesión"}, "400": {"description": "input inválido"}, "409": {"description": "usuario o email en uso"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Iniciar sesión", "responses": {"200": {"description": "sesión"}, "401": {"description": "credenciales inválidas"}}}
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Cerrar sesión", "responses": {"200": {"description": "ok"}}}
        },
        "/me": {
            "get": {"tags": ["auth"], "security": [{"BearerAuth": []}], "summary": "Perfil propio", "responses": {"200": {"description": "usuario"}}},
            "patch": {"tags": ["auth"], "security": [{"BearerAuth": []}], "summary": "Editar perfil", "responses": {"200": {"description": "usuario"}}}
        },
        "/pets": {
            "get": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Listar mascotas", "responses": {"200": {"description": "mascotas con edad"}}},
            "post": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Crear mascota", "responses": {"201": {"description": "mascota"}, "409": {"description": "límite de mascotas alcanzado"}}}
        },
        "/pets/{petID}": {
            "get": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Obtener mascota", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "mascota"}, "403": {"description": "prohibido"}, "404": {"description": "no encontrada"}}},
            "patch": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Editar mascota", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "mascota"}}},
            "delete": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Eliminar mascota", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"204": {"description": "sin contenido"}}}
        },
        "/pets/{petID}/photo": {
            "get": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Foto de la mascota", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "imagen"}, "404": {"description": "sin foto"}}},
            "put": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Subir foto de la mascota", "consumes": ["multipart/form-data"], "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}, {"type": "file", "name": "photo", "in": "formData", "required": true}], "responses": {"200": {"description": "mascota"}, "413": {"description": "foto muy grande"}, "415": {"description": "tipo no soportado"}}},
            "delete": {"tags": ["pets"], "security": [{"BearerAuth": []}], "summary": "Quitar foto de la mascota", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"204": {"description": "sin contenido"}, "404": {"description": "sin foto"}}}
        },
        "/pets/{petID}/activities": {
            "get": {"tags": ["activities"], "security": [{"BearerAuth": []}], "summary": "Listar actividades", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}, {"type": "string", "name": "kinds", "in": "query"}, {"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "actividades"}}},
            "post": {"tags": ["activities"], "security": [{"BearerAuth": []}], "summary": "Crear actividad y programar recordatorio", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"201": {"description": "actividad y recordatorio"}}}
        },
        "/pets/{petID}/activities/{activityID}": {
            "get": {"tags": ["activities"], "security": [{"BearerAuth": []}], "summary": "Obtener actividad", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}, {"type": "string", "name": "activityID", "in": "path", "required": true}], "responses": {"200": {"description": "actividad"}}},
            "delete": {"tags": ["activities"], "security": [{"BearerAuth": []}], "summary": "Eliminar actividad", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}, {"type": "string", "name": "activityID", "in": "path", "required": true}], "responses": {"204": {"description": "sin contenido"}}}
        },
        "/pets/{petID}/documents": {
            "get": {"tags": ["documents"], "security": [{"BearerAuth": []}], "summary": "Listar documentos", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "documentos"}}},
            "post": {"tags": ["documents"], "security": [{"BearerAuth": []}], "summary": "Subir documento", "consumes": ["multipart/form-data"], "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}, {"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"201": {"description": "documento"}, "413": {"description": "archivo muy grande"}, "415": {"description": "tipo no soportado"}}}
        },
        "/pets/{petID}/documents/{documentID}": {
            "get": {"tags": ["documents"], "security": [{"BearerAuth": []}], "summary": "Descargar documento", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}, {"type": "string", "name": "documentID", "in": "path", "required": true}], "responses": {"200": {"description": "archivo"}}},
            "delete": {"tags": ["documents"], "security": [{"BearerAuth": []}], "summary": "Eliminar documento", "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}, {"type": "string", "name": "documentID", "in": "path", "required": true}], "responses": {"204": {"description": "sin contenido"}}}
        }
    }
}`

// SwaggerInfo contiene la info exportada de la API.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PetLink API",
	Description:      "Mascotas, actividades con recordatorios por mail y documentos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
