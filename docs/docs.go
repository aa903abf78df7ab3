// Package docs registers the Swagger document served at /api-docs.
// The template is maintained by hand alongside the godoc annotations in
// internal/api; keep both in step when routes change.
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
        "/api/customers": {
            "get": {"produces": ["application/json"], "tags": ["customers"], "summary": "List customers",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Customer"}}}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["customers"], "summary": "Create a customer",
                "parameters": [{"description": "Customer", "name": "customer", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CustomerRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Customer"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/api/customers/{id}": {
            "get": {"produces": ["application/json"], "tags": ["customers"], "summary": "Get a customer",
                "parameters": [{"type": "string", "description": "Customer ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Customer"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}},
            "put": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["customers"], "summary": "Update a customer",
                "parameters": [{"type": "string", "description": "Customer ID", "name": "id", "in": "path", "required": true}, {"description": "Customer", "name": "customer", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CustomerRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Customer"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}},
            "delete": {"produces": ["application/json"], "tags": ["customers"], "summary": "Delete a customer",
                "parameters": [{"type": "string", "description": "Customer ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MessageResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/api/products": {
            "get": {"produces": ["application/json"], "tags": ["products"], "summary": "List products",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}}}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["products"], "summary": "Create a product",
                "parameters": [{"description": "Product", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ProductRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Product"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/api/products/{id}": {
            "get": {"produces": ["application/json"], "tags": ["products"], "summary": "Get a product",
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Product"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}},
            "put": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["products"], "summary": "Update a product",
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}, {"description": "Product", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ProductRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Product"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}},
            "delete": {"produces": ["application/json"], "tags": ["products"], "summary": "Delete a product",
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MessageResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/api/invoices": {
            "get": {"produces": ["application/json"], "tags": ["invoices"], "summary": "List invoices, newest first",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Invoice"}}}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["invoices"], "summary": "Create an invoice from catalog products",
                "parameters": [{"description": "Invoice", "name": "invoice", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateInvoiceRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Invoice"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/api/invoices/{id}": {
            "get": {"produces": ["application/json"], "tags": ["invoices"], "summary": "Get an invoice with customer and products",
                "parameters": [{"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Invoice"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/api/invoices/{id}/pdf": {
            "get": {"produces": ["application/pdf"], "tags": ["invoices"], "summary": "Download the invoice PDF",
                "parameters": [{"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}, "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/api/invoices/{id}/send": {
            "post": {"description": "With async=true the delivery is queued and 202 is returned.", "produces": ["application/json"], "tags": ["invoices"], "summary": "Email the invoice PDF to the customer",
                "parameters": [{"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true}, {"type": "boolean", "description": "Queue the delivery", "name": "async", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MessageResponse"}}, "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/models.MessageResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/api/invoices/{id}/status": {
            "patch": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["invoices"], "summary": "Change the invoice status",
                "parameters": [{"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true}, {"description": "Status", "name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateStatusRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Invoice"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}}
        },
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Liveness and dependency check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}, "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}}}
        }
    },
    "definitions": {
        "models.Address": {"type": "object", "properties": {"city": {"type": "string"}, "country": {"type": "string"}, "street": {"type": "string"}, "zipCode": {"type": "string"}}},
        "models.Customer": {"type": "object", "properties": {"address": {"$ref": "#/definitions/models.Address"}, "createdAt": {"type": "string"}, "email": {"type": "string"}, "fiscalCode": {"type": "string"}, "id": {"type": "string"}, "name": {"type": "string"}, "phone": {"type": "string"}, "updatedAt": {"type": "string"}, "vatNumber": {"type": "string"}}},
        "models.CustomerRequest": {"type": "object", "required": ["email", "name"], "properties": {"address": {"$ref": "#/definitions/models.Address"}, "email": {"type": "string"}, "fiscalCode": {"type": "string"}, "name": {"type": "string"}, "phone": {"type": "string"}, "vatNumber": {"type": "string"}}},
        "models.Product": {"type": "object", "properties": {"createdAt": {"type": "string"}, "description": {"type": "string"}, "id": {"type": "string"}, "name": {"type": "string"}, "type": {"type": "string", "enum": ["good", "service"]}, "unit": {"type": "string", "enum": ["piece", "hour", "kilogram"]}, "unitPrice": {"type": "number"}, "updatedAt": {"type": "string"}, "vatRate": {"type": "number"}}},
        "models.ProductRequest": {"type": "object", "required": ["name", "type"], "properties": {"description": {"type": "string"}, "name": {"type": "string"}, "type": {"type": "string", "enum": ["good", "service"]}, "unit": {"type": "string", "enum": ["piece", "hour", "kilogram"]}, "unitPrice": {"type": "number"}, "vatRate": {"type": "number"}}},
        "models.ProductSummary": {"type": "object", "properties": {"description": {"type": "string"}, "id": {"type": "string"}, "name": {"type": "string"}, "type": {"type": "string"}}},
        "models.InvoiceItem": {"type": "object", "properties": {"product": {"$ref": "#/definitions/models.ProductSummary"}, "productId": {"type": "string"}, "quantity": {"type": "number"}, "subtotal": {"type": "number"}, "total": {"type": "number"}, "unitPrice": {"type": "number"}, "vatAmount": {"type": "number"}, "vatRate": {"type": "number"}}},
        "models.Invoice": {"type": "object", "properties": {"createdAt": {"type": "string"}, "customer": {"$ref": "#/definitions/models.Customer"}, "customerId": {"type": "string"}, "emailSent": {"type": "boolean"}, "id": {"type": "string"}, "invoiceNumber": {"type": "string"}, "items": {"type": "array", "items": {"$ref": "#/definitions/models.InvoiceItem"}}, "status": {"type": "string", "enum": ["draft", "sent", "paid"]}, "subtotal": {"type": "number"}, "total": {"type": "number"}, "totalVat": {"type": "number"}, "updatedAt": {"type": "string"}}},
        "models.InvoiceItemInput": {"type": "object", "properties": {"productId": {"type": "string"}, "quantity": {"type": "number"}}},
        "models.CreateInvoiceRequest": {"type": "object", "properties": {"customerId": {"type": "string"}, "items": {"type": "array", "items": {"$ref": "#/definitions/models.InvoiceItemInput"}}}},
        "models.UpdateStatusRequest": {"type": "object", "required": ["status"], "properties": {"status": {"type": "string", "enum": ["draft", "sent", "paid"]}}},
        "models.MessageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "models.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Fattura Service API",
	Description:      "Customers, products and invoices with PDF rendering and email delivery.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
