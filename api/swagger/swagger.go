package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Management API",
        "description": "Role-aware course management platform: cohorts, classes, modules, offerings, weekly activity logs, grades and notifications.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Registration, login and identity"},
        {"name": "Users", "description": "User administration"},
        {"name": "Cohorts", "description": "Intake cohorts"},
        {"name": "Classes", "description": "Teaching groups"},
        {"name": "Modules", "description": "Units of study"},
        {"name": "Offerings", "description": "Scheduled course offerings"},
        {"name": "ActivityLogs", "description": "Weekly facilitator reports"},
        {"name": "Grades", "description": "Assessment scores and publishing"},
        {"name": "Notifications", "description": "In-app notifications and delivery jobs"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failure or conflict"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by username and password",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current identity",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Flattened identity"},
                    "401": {"description": "Missing or expired token"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users (manager only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Paginated users"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user (manager or self)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "User"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update user (manager or self)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated user"},
                    "403": {"description": "Forbidden"}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete user (manager only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "400": {"description": "Deletion guard"}
                }
            }
        },
        "/users/{id}/class": {
            "put": {
                "tags": ["Users"],
                "summary": "Assign a student to a class (manager only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated user"},
                    "400": {"description": "Not a student"}
                }
            }
        },
        "/cohorts": {
            "get": {
                "tags": ["Cohorts"],
                "summary": "List cohorts",
                "responses": {"200": {"description": "Cohorts"}}
            },
            "post": {
                "tags": ["Cohorts"],
                "summary": "Create cohort (manager only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "responses": {"200": {"description": "Paginated classes"}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create class (manager only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/modules": {
            "get": {
                "tags": ["Modules"],
                "summary": "List modules",
                "responses": {"200": {"description": "Modules"}}
            },
            "post": {
                "tags": ["Modules"],
                "summary": "Create module (manager only)",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/course-offerings": {
            "get": {
                "tags": ["Offerings"],
                "summary": "List course offerings",
                "responses": {"200": {"description": "Paginated offerings"}}
            },
            "post": {
                "tags": ["Offerings"],
                "summary": "Create course offering (staff only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/activity-logs": {
            "get": {
                "tags": ["ActivityLogs"],
                "summary": "List weekly reports (staff only)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Activity logs"}}
            },
            "post": {
                "tags": ["ActivityLogs"],
                "summary": "Submit weekly report (staff only)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List grades (students see own published only)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Grades"}}
            },
            "post": {
                "tags": ["Grades"],
                "summary": "Create draft grade (staff only)",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/grades/{id}/publish": {
            "post": {
                "tags": ["Grades"],
                "summary": "Publish grade (staff only, one-way)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Published"},
                    "400": {"description": "Already published"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List own notifications",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Notifications"}}
            },
            "post": {
                "tags": ["Notifications"],
                "summary": "Enqueue delivery job (manager only)",
                "security": [{"BearerAuth": []}],
                "responses": {"202": {"description": "Job accepted"}}
            }
        },
        "/notifications/{id}/read": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark own notification as read",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated"},
                    "403": {"description": "Not the recipient"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "object"},
                "hint": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
