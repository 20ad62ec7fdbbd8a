package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Anjab API",
        "description": "Job-analysis registry for the education office: employee records, review workflow, and bulk import.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Employees", "description": "Employee registry"},
        {"name": "Changes", "description": "Edit proposals and review decisions"},
        {"name": "Import", "description": "Bulk spreadsheet import"},
        {"name": "Export", "description": "Registry snapshots"},
        {"name": "Dashboard", "description": "Statistics and notifications"},
        {"name": "Admin", "description": "Accounts and audit trail"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with username and password",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/employees": {
            "get": {
                "tags": ["Employees"],
                "summary": "List employee records",
                "responses": {"200": {"description": "Page of records"}}
            },
            "post": {
                "tags": ["Employees"],
                "summary": "Create an employee record",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/employees/options": {
            "get": {
                "tags": ["Employees"],
                "summary": "Distinct filter values",
                "responses": {"200": {"description": "Filter options"}}
            }
        },
        "/employees/{id}": {
            "get": {
                "tags": ["Employees"],
                "summary": "Get one record",
                "responses": {"200": {"description": "Record"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Employees"],
                "summary": "Update a record or file a change request",
                "responses": {
                    "200": {"description": "Updated directly"},
                    "201": {"description": "Change request filed"},
                    "409": {"description": "Pending request already exists"}
                }
            },
            "delete": {
                "tags": ["Employees"],
                "summary": "Delete a record",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/changes": {
            "post": {
                "tags": ["Changes"],
                "summary": "Propose field edits for a record",
                "responses": {
                    "201": {"description": "Request submitted"},
                    "403": {"description": "Not the record owner"},
                    "409": {"description": "A pending request already exists"}
                }
            },
            "get": {
                "tags": ["Changes"],
                "summary": "List change requests by status",
                "responses": {"200": {"description": "Open requests"}}
            }
        },
        "/changes/{id}": {
            "get": {
                "tags": ["Changes"],
                "summary": "Field-by-field review view",
                "responses": {"200": {"description": "Diff"}}
            }
        },
        "/changes/{id}/decide": {
            "post": {
                "tags": ["Changes"],
                "summary": "Approve or reject a change request",
                "responses": {
                    "200": {"description": "Decision applied"},
                    "409": {"description": "Already processed"}
                }
            }
        },
        "/employees/{id}/history": {
            "get": {
                "tags": ["Changes"],
                "summary": "Submission and decision timeline",
                "responses": {"200": {"description": "Timeline events"}}
            }
        },
        "/employees/{id}/mark-read": {
            "put": {
                "tags": ["Changes"],
                "summary": "Mark decided requests as seen",
                "responses": {"200": {"description": "Marked"}}
            }
        },
        "/import": {
            "post": {
                "tags": ["Import"],
                "summary": "Import records from an Excel workbook",
                "responses": {"200": {"description": "Import summary"}}
            }
        },
        "/import/template": {
            "get": {
                "tags": ["Import"],
                "summary": "Download the blank import template",
                "responses": {"200": {"description": "Workbook"}}
            }
        },
        "/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Download the registry snapshot",
                "responses": {"200": {"description": "File"}}
            }
        },
        "/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Landing-page statistics",
                "responses": {"200": {"description": "Aggregates"}}
            }
        },
        "/dashboard/pension-detail/{year}": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Employees retiring in a given year",
                "responses": {"200": {"description": "Employees"}}
            }
        },
        "/dashboard/notifications": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Per-role badge counters",
                "responses": {"200": {"description": "Counters"}}
            }
        },
        "/admin/users": {
            "get": {
                "tags": ["Admin"],
                "summary": "List accounts",
                "responses": {"200": {"description": "Accounts"}}
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Provision an account",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/admin/logs": {
            "get": {
                "tags": ["Admin"],
                "summary": "Recent audit trail entries",
                "responses": {"200": {"description": "Entries"}}
            }
        }
    },
    "definitions": {
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
