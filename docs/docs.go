// Package docs holds the OpenAPI description served at /docs.
// Regenerate with: swag init -g cmd/unify-dashboard/serve.go
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
    "paths": {
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Get version",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/servers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["servers"],
                "summary": "List administered servers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.serversResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/servers/{serverId}/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["servers"],
                "summary": "Get server configuration",
                "parameters": [
                    {"type": "string", "description": "Guild ID", "name": "serverId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.configResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/servers/{serverId}/welcome": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["servers"],
                "summary": "Update welcome configuration",
                "parameters": [
                    {"type": "string", "description": "Guild ID", "name": "serverId", "in": "path", "required": true},
                    {"description": "Welcome fields", "name": "welcome", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.configResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/servers/{serverId}/channels": {
            "get": {
                "produces": ["application/json"],
                "tags": ["servers"],
                "summary": "List text channels",
                "parameters": [
                    {"type": "string", "description": "Guild ID", "name": "serverId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/servers/{serverId}/test-welcome": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["servers"],
                "summary": "Send a test welcome message",
                "parameters": [
                    {"type": "string", "description": "Guild ID", "name": "serverId", "in": "path", "required": true},
                    {"description": "Test message", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/dashboard/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["servers"],
                "summary": "Refresh the user's server list",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "handlers.configResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "config": {"type": "object"},
                "message": {"type": "string"}
            }
        },
        "handlers.serversResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "servers": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3002",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Unify Dashboard API",
	Description:      "Welcome-message configuration API for the Unify Discord bot",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
