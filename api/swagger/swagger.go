package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tenant Config API",
        "description": "Tenant and user settings resolution plus host-personalised SPA pages",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Config", "description": "Tenant defaults and user overrides"},
        {"name": "Domains", "description": "Per-domain config injected into served pages"}
    ],
    "paths": {
        "/config/tenant/{tenantId}": {
            "get": {
                "tags": ["Config"],
                "summary": "Get tenant settings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tenantId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Config"],
                "summary": "Save tenant settings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tenantId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AppSettings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Config"],
                "summary": "Save tenant settings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tenantId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AppSettings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/tenant/{tenantId}/permissions": {
            "get": {
                "tags": ["Config"],
                "summary": "Get tenant user permissions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tenantId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Config"],
                "summary": "Save tenant user permissions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tenantId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UserPermissions"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/user": {
            "get": {
                "tags": ["Config"],
                "summary": "Get the caller's effective settings",
                "description": "Tenant defaults merged with the caller's overrides, or null when neither exists.",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Config"],
                "summary": "Save the caller's settings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AppSettings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Config"],
                "summary": "Reset the caller's settings",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/user/only": {
            "get": {
                "tags": ["Config"],
                "summary": "Get the caller's own settings",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/user/merged": {
            "get": {
                "tags": ["Config"],
                "summary": "Get merged settings and permissions",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/user/{id}": {
            "put": {
                "tags": ["Config"],
                "summary": "Save settings for a user",
                "description": "ADMIN callers are not restricted to users of their own tenant.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AppSettings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/config/domains/{domain}": {
            "get": {
                "tags": ["Domains"],
                "summary": "Get domain config",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "domain", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Domains"],
                "summary": "Create or replace domain config",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "domain", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DomainConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Domains"],
                "summary": "Delete domain config",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "domain", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LayoutSettings": {
            "type": "object",
            "properties": {
                "sidebarCollapsed": {"type": "boolean"},
                "sidebarPosition": {"type": "string", "enum": ["left", "right"]},
                "headerFixed": {"type": "boolean"},
                "footerVisible": {"type": "boolean"}
            }
        },
        "ThemeSettings": {
            "type": "object",
            "properties": {
                "colorScheme": {"type": "string", "enum": ["light", "dark"]},
                "primaryColor": {"type": "string"},
                "fontSize": {"type": "string", "enum": ["small", "medium", "large"]}
            }
        },
        "AppSettings": {
            "type": "object",
            "properties": {
                "layout": {"$ref": "#/definitions/LayoutSettings"},
                "theme": {"$ref": "#/definitions/ThemeSettings"}
            }
        },
        "UserPermissions": {
            "type": "object",
            "properties": {
                "canChangeLayout": {"type": "boolean"},
                "canChangeTheme": {"type": "boolean"}
            }
        },
        "ConfigValue": {
            "type": "object",
            "properties": {
                "value": {"$ref": "#/definitions/AppSettings"},
                "source": {"type": "string", "enum": ["tenant", "user"]},
                "isOverridden": {"type": "boolean"}
            }
        },
        "DomainConfigRequest": {
            "type": "object",
            "required": ["tenantId", "config"],
            "properties": {
                "tenantId": {"type": "string"},
                "config": {"type": "object"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
