// Package docs registers the Swagger document served under /swagger/.
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
                "tags": ["health"],
                "summary": "Backend health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/repo.HealthStatus"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/repo.HealthStatus"}}
                }
            }
        },
        "/api/metrics": {
            "get": {
                "description": "Product count, low-stock count, total quantity and inventory value",
                "produces": ["application/json"],
                "tags": ["metrics"],
                "summary": "Dashboard metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/repo.Metrics"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/products": {
            "get": {
                "description": "Newest first on backends that order by creation time",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List all products",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handlers.ProductResponse"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Adds a product to the inventory. Price and quantity may be sent as numbers or numeric strings.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create a new product",
                "parameters": [
                    {"description": "Product to add", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.ProductResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/products/import": {
            "post": {
                "description": "Header row must contain name, price and quantity; category is optional. Every valid row is created as a new product.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Import products via CSV",
                "parameters": [
                    {"type": "file", "description": "CSV file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ImportProductsResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/products/search/{keyword}": {
            "get": {
                "description": "Case-insensitive substring match on name (and category on most backends)",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Search products",
                "parameters": [
                    {"type": "string", "description": "Keyword", "name": "keyword", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handlers.ProductResponse"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/products/{id}": {
            "put": {
                "description": "Partial update: fields left out of the body keep their values",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Update a product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProductResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Succeeds whether or not the product exists",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Delete a product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/handlers.ProductValidationError"}}
            }
        },
        "handlers.ImportProductsResult": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"$ref": "#/definitions/handlers.ProductValidationError"}},
                "imported": {"type": "integer"}
            }
        },
        "handlers.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handlers.ProductRequest": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "quantity": {"type": "integer"}
            }
        },
        "handlers.ProductResponse": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "createdAt": {"type": "string"},
                "id": {"description": "integer on counter-based backends, string otherwise"},
                "lowStock": {"type": "boolean"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "quantity": {"type": "integer"},
                "updatedAt": {"type": "string"}
            }
        },
        "handlers.ProductValidationError": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "field": {"type": "string"}
            }
        },
        "repo.HealthStatus": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "endpoint": {"type": "string"},
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "repo.Metrics": {
            "type": "object",
            "properties": {
                "inventoryValue": {"type": "number"},
                "lowStockCount": {"type": "integer"},
                "totalProducts": {"type": "integer"},
                "totalQuantity": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Inventory API",
	Description:      "REST API for managing inventory products over a pluggable store.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
