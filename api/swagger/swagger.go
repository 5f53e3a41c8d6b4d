package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Supplenze API",
        "description": "Timetable import and substitute teacher matching",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Account and session management"},
        {"name": "Imports", "description": "Timetable document ingestion"},
        {"name": "Absences", "description": "Absence declaration and resolution"},
        {"name": "Teachers", "description": "Substitute matching and rosters"},
        {"name": "Exports", "description": "Downloadable substitution plans"}
    ],
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignUpRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/imports": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import a timetable document",
                "consumes": ["application/xml"],
                "parameters": [
                    {"name": "mode", "in": "query", "type": "string", "enum": ["dry_run", "write"], "default": "dry_run"},
                    {"name": "file_name", "in": "query", "type": "string", "required": true},
                    {"name": "begin_ts", "in": "query", "type": "string", "required": true, "description": "RFC3339"},
                    {"name": "end_ts", "in": "query", "type": "string", "required": true, "description": "RFC3339"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ImportResult"}},
                    "400": {"description": "Malformed or invalid document"},
                    "409": {"description": "Store constraint violated"}
                }
            },
            "get": {
                "tags": ["Imports"],
                "summary": "List imports",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/{id}": {
            "patch": {
                "tags": ["Imports"],
                "summary": "Patch an import's validity window",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateWindowRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Import not found"}
                }
            },
            "delete": {
                "tags": ["Imports"],
                "summary": "Delete an import and its scoped entities",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Import not found"}
                }
            }
        },
        "/imports/{id}/archive-link": {
            "get": {
                "tags": ["Imports"],
                "summary": "Issue a signed archive download link",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Import not found or archive disabled"}
                }
            }
        },
        "/archives/{token}": {
            "get": {
                "tags": ["Imports"],
                "summary": "Download an archived import document",
                "produces": ["application/xml"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Archived document"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/absences": {
            "post": {
                "tags": ["Absences"],
                "summary": "Declare a teacher absent",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeclareAbsenceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid declaration"}
                }
            },
            "get": {
                "tags": ["Absences"],
                "summary": "Daily absence dashboard",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true, "description": "YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/absences/{id}": {
            "patch": {
                "tags": ["Absences"],
                "summary": "Resolve an absence",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAbsenceRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Invalid resolution"},
                    "404": {"description": "Absence not found"}
                }
            },
            "delete": {
                "tags": ["Absences"],
                "summary": "Delete an absence",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Absence not found"}
                }
            }
        },
        "/teachers/available/{absence_id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Substitute candidates for an absence",
                "parameters": [
                    {"name": "absence_id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/can_be_absent": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Teachers eligible for absence declaration",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true, "description": "YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/daily-plan": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the daily substitution plan",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true, "description": "YYYY-MM-DD"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Rendered plan"},
                    "400": {"description": "Unknown format"}
                }
            }
        }
    },
    "definitions": {
        "SignUpRequest": {
            "type": "object",
            "required": ["email", "password", "full_name"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "full_name": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "UpdateWindowRequest": {
            "type": "object",
            "properties": {
                "begin_ts": {"type": "string", "format": "date-time"},
                "end_ts": {"type": "string", "format": "date-time"}
            }
        },
        "DeclareAbsenceRequest": {
            "type": "object",
            "required": ["teacher_id", "date", "begin_time", "end_time"],
            "properties": {
                "teacher_id": {"type": "string"},
                "date": {"type": "string", "description": "YYYY-MM-DD"},
                "begin_time": {"type": "string", "description": "HH:MM"},
                "end_time": {"type": "string", "description": "HH:MM"}
            }
        },
        "UpdateAbsenceRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["UNCOVERED", "CLASS_DELAYED", "CLASS_CANCELLED", "SUBSTITUTE_FOUND"]},
                "substitute_availability_id": {"type": "string"}
            }
        },
        "ImportResult": {
            "type": "object",
            "properties": {
                "import_id": {"type": "string"},
                "mode": {"type": "string"},
                "lessons": {"type": "integer"},
                "availabilities": {"type": "integer"},
                "rooms": {"type": "integer"},
                "groups": {"type": "integer"},
                "teachers": {"type": "integer"}
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
                "pagination": {"type": "object"},
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
