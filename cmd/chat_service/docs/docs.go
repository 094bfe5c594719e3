// Package docs swagger document of chat_service, written to match the handler annotations
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
        "/": {
            "get": {
                "description": "Returns a simple confirmation message",
                "tags": ["Shared"],
                "summary": "Check chat service status",
                "responses": {"200": {"description": "chat service start!", "schema": {"type": "string"}}}
            }
        },
        "/debug": {
            "post": {
                "description": "Enable or disable debug logging",
                "tags": ["Shared"],
                "summary": "Toggle Debug Log Flag",
                "parameters": [{"type": "boolean", "description": "Debug status", "name": "status", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "debug mode updated", "schema": {"type": "string"}},
                    "400": {"description": "Invalid status value", "schema": {"type": "string"}}
                }
            }
        },
        "/api/presence": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Presence"],
                "summary": "Online users",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/app.PresenceResponse"}}}
            }
        },
        "/api/messages/users": {
            "get": {
                "description": "Every known user except the requester, with online flag",
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "List contacts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Contact"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/app.ErrorResponse"}}
                }
            }
        },
        "/api/messages/{id}": {
            "get": {
                "description": "Messages between the requester and :id, oldest first",
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "List messages",
                "parameters": [{"type": "string", "description": "peer user id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Message"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/app.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/app.ErrorResponse"}}
                }
            }
        },
        "/api/messages/send/{id}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "Send message",
                "parameters": [
                    {"type": "string", "description": "recipient user id", "name": "id", "in": "path", "required": true},
                    {"description": "text, image data url or imageUrl", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/app.SendMessageRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Message"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/app.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/app.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/app.ErrorResponse"}}
                }
            }
        },
        "/api/messages/edit/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "Edit message",
                "parameters": [
                    {"type": "string", "description": "message id", "name": "id", "in": "path", "required": true},
                    {"description": "new text", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/app.EditMessageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Message"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/app.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/app.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/app.ErrorResponse"}}
                }
            }
        },
        "/api/messages/delete/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "Delete message",
                "parameters": [{"type": "string", "description": "message id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.DeleteMessageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/app.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/app.ErrorResponse"}}
                }
            }
        },
        "/api/messages/chat/{userId}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "Delete chat",
                "parameters": [{"type": "string", "description": "peer user id", "name": "userId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.DeleteChatResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/app.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "app.DeleteChatResponse": {"type": "object", "properties": {"deleted": {"type": "integer"}}},
        "app.DeleteMessageResponse": {"type": "object", "properties": {"messageId": {"type": "string"}}},
        "app.EditMessageRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "app.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "app.PresenceResponse": {"type": "object", "properties": {"onlineUsers": {"type": "array", "items": {"type": "string"}}}},
        "app.SendMessageRequest": {
            "type": "object",
            "properties": {"image": {"type": "string"}, "imageUrl": {"type": "string"}, "text": {"type": "string"}}
        },
        "domain.Contact": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "id": {"type": "string"},
                "online": {"type": "boolean"},
                "profilePic": {"type": "string"}
            }
        },
        "domain.Message": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "edited": {"type": "boolean"},
                "editedAt": {"type": "string"},
                "id": {"type": "string"},
                "imageUrl": {"type": "string"},
                "recipientId": {"type": "string"},
                "senderId": {"type": "string"},
                "text": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5001",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Chat Presence Service API",
	Description:      "Presence and message delivery for one-to-one chat",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
