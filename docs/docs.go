// Package docs registers the OpenAPI document served under /swagger.
// Keep it in step with the swag annotations on the handlers.
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
        "/kiosk/check-status": {
            "get": {
                "description": "Returns \"<status>|id:<dev_id>\" or a bare NotFound/NotReg token",
                "produces": ["text/plain"],
                "tags": ["Kiosk"],
                "summary": "Card attendance status",
                "parameters": [
                    {"type": "string", "description": "Card ID", "name": "card_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}}
                }
            }
        },
        "/kiosk/time-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["text/plain"],
                "tags": ["Kiosk"],
                "summary": "Kiosk time-in",
                "parameters": [
                    {"description": "Card tap", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TapRequest"}}
                ],
                "responses": {
                    "200": {"description": "In|<full_name>", "schema": {"type": "string"}},
                    "400": {"description": "NoIDs", "schema": {"type": "string"}},
                    "403": {"description": "AlreadyIn", "schema": {"type": "string"}}
                }
            }
        },
        "/kiosk/request-logout": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["text/plain"],
                "tags": ["Kiosk"],
                "summary": "Kiosk logout request",
                "parameters": [
                    {"description": "Card tap", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TapRequest"}}
                ],
                "responses": {
                    "200": {"description": "Out|<full_name>", "schema": {"type": "string"}},
                    "400": {"description": "NoRec, NoPay or NoIDs", "schema": {"type": "string"}},
                    "408": {"description": "Timeout", "schema": {"type": "string"}}
                }
            }
        },
        "/kiosk/get-device": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["Kiosk"],
                "summary": "Device awaiting card registration",
                "responses": {
                    "200": {"description": "<dev_id> or NoDevice", "schema": {"type": "string"}}
                }
            }
        },
        "/kiosk/register-rfid": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["text/plain"],
                "tags": ["Kiosk"],
                "summary": "Register RFID card",
                "parameters": [
                    {"description": "Card and device", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TapRequest"}}
                ],
                "responses": {
                    "200": {"description": "Registered", "schema": {"type": "string"}},
                    "400": {"description": "NotFound or CardAlreadyExist", "schema": {"type": "string"}},
                    "404": {"description": "NoCardFound", "schema": {"type": "string"}}
                }
            }
        },
        "/attendance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Records created today or still open, newest first, 10 per page",
                "produces": ["application/json"],
                "tags": ["Attendance"],
                "summary": "Attendance dashboard",
                "parameters": [
                    {"type": "integer", "description": "Page", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/attendance/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Today's attendance, butaw, boundary and paid counts plus live drivers",
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Dashboard counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/attendance/analytics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Attendance analytics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/attendance/transactions/{driver_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Sums every unpaid record of the driver",
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Driver transaction summary",
                "parameters": [
                    {"type": "string", "description": "Driver ID", "name": "driver_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/attendance/complete-logout": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "Closes the driver's latest paid record and answers the waiting kiosk",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Attendance"],
                "summary": "Complete logout",
                "parameters": [
                    {"description": "Record", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/payments/both": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "Pay both dues",
                "parameters": [
                    {"description": "Record", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Server-sent events: connected, then every published event",
                "produces": ["text/event-stream"],
                "tags": ["Events"],
                "summary": "Real-time events",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.RecordRequest": {
            "type": "object",
            "properties": {
                "driver_id": {"type": "string"},
                "id": {"type": "integer"}
            }
        },
        "handlers.TapRequest": {
            "type": "object",
            "properties": {
                "card_id": {"type": "string"},
                "device_id": {"type": "string"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "RFID Attendance API",
	Description:      "Kiosk card-tap attendance with payment-gated, admin-confirmed logout.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
