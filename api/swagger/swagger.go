package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Planner API",
        "description": "Multi-term course planning, saved plans and catalog management",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Planner", "description": "Plan generation, saved plans and exports"},
        {"name": "Catalog", "description": "Course catalog"},
        {"name": "Metrics", "description": "Service instrumentation"}
    ],
    "paths": {
        "/courses": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List catalog courses",
                "parameters": [
                    {"name": "major", "in": "query", "type": "string"},
                    {"name": "term", "in": "query", "type": "string", "enum": ["Fall", "Winter", "Spring", "Summer"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/import": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Import a catalog CSV",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/generate": {
            "post": {
                "tags": ["Planner"],
                "summary": "Generate a multi-term plan",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GeneratePlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or constraints", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans": {
            "get": {
                "tags": ["Planner"],
                "summary": "List saved plans for a student",
                "parameters": [
                    {"name": "studentId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Planner"],
                "summary": "Save a generated plan",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SavePlanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Proposal expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Concurrent save, retry", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}": {
            "get": {
                "tags": ["Planner"],
                "summary": "Get a saved plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Planner"],
                "summary": "Delete a draft plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Plan is not a draft", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}/activate": {
            "post": {
                "tags": ["Planner"],
                "summary": "Activate a saved plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}/export": {
            "post": {
                "tags": ["Planner"],
                "summary": "Export a saved plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/score": {
            "post": {
                "tags": ["Planner"],
                "summary": "Explain a course score",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/conflicts": {
            "post": {
                "tags": ["Planner"],
                "summary": "Detect time conflicts",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/validate": {
            "post": {
                "tags": ["Planner"],
                "summary": "Validate a hand-edited plan",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidatePlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Planner"],
                "summary": "Download a plan export",
                "security": [],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Expired or invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Aggregated service metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Term": {
            "type": "object",
            "properties": {
                "season": {"type": "string", "enum": ["Fall", "Winter", "Spring", "Summer"]},
                "year": {"type": "integer"}
            },
            "required": ["season", "year"]
        },
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "units": {"type": "integer"},
                "difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]},
                "type": {"type": "string", "enum": ["core", "math", "science", "elective", "general-education"]},
                "prerequisites": {"type": "array", "items": {"type": "string"}},
                "offeredTerms": {"type": "array", "items": {"type": "string"}},
                "majors": {"type": "array", "items": {"type": "string"}},
                "defaultTime": {"type": "string"},
                "instructor": {"type": "string"}
            },
            "required": ["id", "units"]
        },
        "ScheduledCourse": {
            "allOf": [
                {"$ref": "#/definitions/Course"},
                {
                    "type": "object",
                    "properties": {
                        "days": {"type": "array", "items": {"type": "string"}},
                        "startTime": {"type": "string", "example": "08:00"},
                        "endTime": {"type": "string", "example": "09:50"},
                        "location": {"type": "string"}
                    }
                }
            ]
        },
        "ScheduleConstraints": {
            "type": "object",
            "properties": {
                "maxUnits": {"type": "integer"},
                "minUnits": {"type": "integer"},
                "optimalUnits": {"type": "integer"},
                "preferredTimes": {"type": "array", "items": {"type": "string"}},
                "requiredCourses": {"type": "array", "items": {"type": "string"}},
                "avoidedCourses": {"type": "array", "items": {"type": "string"}},
                "balanceWorkload": {"type": "boolean"},
                "maxDifficulty": {"type": "string", "enum": ["easy", "medium", "hard"]}
            }
        },
        "StudentStateInput": {
            "type": "object",
            "properties": {
                "completed": {"type": "array", "items": {"type": "string"}},
                "currentTerm": {"$ref": "#/definitions/Term"},
                "gpa": {"type": "number"},
                "major": {"type": "string"}
            },
            "required": ["currentTerm"]
        },
        "GeneratePlanRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "student": {"$ref": "#/definitions/StudentStateInput"},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/Course"}},
                "constraints": {"$ref": "#/definitions/ScheduleConstraints"},
                "maxTerms": {"type": "integer"},
                "autoSave": {"type": "boolean"},
                "name": {"type": "string"}
            }
        },
        "SavePlanRequest": {
            "type": "object",
            "properties": {
                "proposalId": {"type": "string"},
                "name": {"type": "string"}
            },
            "required": ["proposalId"]
        },
        "ScoreRequest": {
            "type": "object",
            "properties": {
                "courseId": {"type": "string"},
                "course": {"$ref": "#/definitions/Course"},
                "student": {
                    "type": "object",
                    "properties": {
                        "completed": {"type": "array", "items": {"type": "string"}},
                        "gpa": {"type": "number"},
                        "major": {"type": "string"}
                    }
                },
                "constraints": {"$ref": "#/definitions/ScheduleConstraints"}
            }
        },
        "ConflictsRequest": {
            "type": "object",
            "properties": {
                "courses": {"type": "array", "items": {"$ref": "#/definitions/ScheduledCourse"}}
            },
            "required": ["courses"]
        },
        "ValidatePlanRequest": {
            "type": "object",
            "properties": {
                "completed": {"type": "array", "items": {"type": "string"}},
                "terms": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "term": {"$ref": "#/definitions/Term"},
                            "courses": {"type": "array", "items": {"$ref": "#/definitions/ScheduledCourse"}}
                        }
                    }
                },
                "constraints": {"$ref": "#/definitions/ScheduleConstraints"}
            },
            "required": ["terms"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
