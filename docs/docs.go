// Package docs holds the OpenAPI description served at /swagger.
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
        "/messages/ingest": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Stores messages for a user, skipping duplicates. Progress is streamed as NDJSON events ending in a complete or error event; pass stream=false for a single JSON response.",
                "consumes": ["application/json"],
                "produces": ["application/x-ndjson"],
                "tags": ["messages"],
                "summary": "Ingest a batch of SMS messages",
                "parameters": [
                    {"description": "Messages", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.IngestRequest"}},
                    {"type": "boolean", "default": true, "description": "Stream progress events", "name": "stream", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.IngestCompleteEvent"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/messages/process": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Classifies unprocessed messages, extracts transactions and marks the messages processed",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Run a processing pass",
                "parameters": [
                    {"description": "Limit and optional user scope", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.ProcessRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProcessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/messages/processing-status": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Processing progress",
                "parameters": [
                    {"type": "string", "description": "Restrict to one user", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProcessingStatus"}}
                }
            }
        },
        "/messages/unprocessed": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "List unprocessed messages",
                "parameters": [
                    {"type": "integer", "default": 1000, "description": "Limit", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Restrict to one user", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UnprocessedResponse"}}
                }
            }
        },
        "/transactions/bulk-create": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Inserts transactions whose reference id is not stored yet and marks the listed messages processed, atomically",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Store extracted transactions",
                "parameters": [
                    {"description": "Transactions and processed message ids", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.BulkCreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.BulkCreateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/transactions/user/{user_id}": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List a user's transactions",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "default": 50, "description": "Limit", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TransactionListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/users/{id}/balance": {
            "get": {
                "security": [{"Bearer": []}],
                "description": "Stored balance, or one recovered from the latest transaction SMS quoting it",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Account balance",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "dto.IngestMessage": {
            "type": "object",
            "properties": {
                "sender": {"type": "string"},
                "message_body": {"type": "string"},
                "status": {"type": "string"},
                "received_at": {"type": "string"}
            }
        },
        "dto.IngestRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/dto.IngestMessage"}},
                "sender": {"type": "string"},
                "message_body": {"type": "string"},
                "status": {"type": "string"},
                "received_at": {"type": "string"}
            }
        },
        "dto.IngestCompleteEvent": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "inserted_count": {"type": "integer"},
                "duplicates": {"type": "integer"},
                "skipped": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "dto.ProcessRequest": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "user_id": {"type": "string"}
            }
        },
        "dto.ProcessResponse": {
            "type": "object",
            "properties": {
                "processed": {"type": "integer"},
                "transactions_created": {"type": "integer"},
                "duplicates_filtered": {"type": "integer"},
                "categories": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "dto.ProcessingStatus": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "processed": {"type": "integer"},
                "unprocessed": {"type": "integer"},
                "percentage": {"type": "integer"}
            }
        },
        "dto.MessageResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "sender": {"type": "string"},
                "message_body": {"type": "string"},
                "status": {"type": "string"},
                "received_at": {"type": "string"},
                "processed": {"type": "boolean"},
                "category": {"type": "string"}
            }
        },
        "dto.UnprocessedResponse": {
            "type": "object",
            "properties": {
                "messages": {"type": "array", "items": {"$ref": "#/definitions/dto.MessageResponse"}},
                "count": {"type": "integer"}
            }
        },
        "dto.BulkTransaction": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "account_number": {"type": "string"},
                "transaction_type": {"type": "string"},
                "category": {"type": "string"},
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "transaction_date": {"type": "string"},
                "description": {"type": "string"},
                "reference_id": {"type": "string"},
                "source_message_id": {"type": "string"}
            }
        },
        "dto.BulkCreateRequest": {
            "type": "object",
            "properties": {
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/dto.BulkTransaction"}},
                "processed_message_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.BulkCreateResponse": {
            "type": "object",
            "properties": {
                "transactions_created": {"type": "integer"},
                "duplicates_filtered": {"type": "integer"},
                "messages_processed": {"type": "integer"}
            }
        },
        "dto.TransactionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "account_number": {"type": "string"},
                "transaction_type": {"type": "string"},
                "category": {"type": "string"},
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "transaction_date": {"type": "string"},
                "description": {"type": "string"},
                "reference_id": {"type": "string"},
                "source_message_id": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "dto.TransactionListResponse": {
            "type": "object",
            "properties": {
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}},
                "count": {"type": "integer"}
            }
        },
        "dto.BalanceResponse": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "balance": {"type": "number"},
                "source": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Money Mate API",
	Description:      "SMS ingestion and transaction extraction for the Money Mate finance app",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
