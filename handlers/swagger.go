package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>docflow — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document for the document workflow API.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docflow", "version": "v0.1.0" },
  "paths": {
    "/document-approvals": {
      "post": { "summary": "Submit a document for review (draft:true creates a draft)", "responses": { "201": { "description": "record created" }, "400": { "description": "validation failed" } } },
      "get": { "summary": "List records, filterable by status and track", "responses": { "200": { "description": "record list" } } }
    },
    "/document-approvals/stats": {
      "get": { "summary": "Workload statistics snapshot", "responses": { "200": { "description": "stats" } } }
    },
    "/document-approvals/my": {
      "get": { "summary": "Records submitted by the caller", "responses": { "200": { "description": "record list" } } }
    },
    "/document-approvals/assigned": {
      "get": { "summary": "Records assigned to the caller", "responses": { "200": { "description": "record list" } } }
    },
    "/document-approvals/{id}": {
      "get": { "summary": "Record with its audit trail", "responses": { "200": { "description": "record + trail" }, "404": { "description": "unknown record" } } },
      "put": { "summary": "Edit a draft or revision-requested record", "responses": { "200": { "description": "updated record" }, "409": { "description": "not editable in current status" } } },
      "delete": { "summary": "Hard-delete a record", "responses": { "204": { "description": "deleted" }, "403": { "description": "not permitted" } } }
    },
    "/document-approvals/{id}/submit": { "put": { "summary": "Promote a draft into review", "responses": { "200": { "description": "submitted" } } } },
    "/document-approvals/{id}/review": { "put": { "summary": "Start review", "responses": { "200": { "description": "under review" } } } },
    "/document-approvals/{id}/approve": { "put": { "summary": "Approve", "responses": { "200": { "description": "approved" }, "409": { "description": "invalid transition or lost race" } } } },
    "/document-approvals/{id}/reject": { "put": { "summary": "Reject with a reason", "responses": { "200": { "description": "rejected" }, "400": { "description": "reason missing" } } } },
    "/document-approvals/{id}/request-revision": { "put": { "summary": "Request a revision with notes", "responses": { "200": { "description": "revision requested" } } } },
    "/document-approvals/{id}/resubmit": { "put": { "summary": "Resubmit after revision, bumps the version", "responses": { "200": { "description": "resubmitted" } } } },
    "/document-approvals/{id}/acknowledge": { "put": { "summary": "Acknowledge an assigned document (idempotent)", "responses": { "200": { "description": "acknowledged" }, "403": { "description": "caller is not the assignee" } } } },
    "/document-approvals/{id}/comment": { "post": { "summary": "Add a comment to the trail", "responses": { "201": { "description": "comment added" } } } },
    "/document-approvals/assign": { "post": { "summary": "Assign a document to one or more employees", "responses": { "201": { "description": "per-recipient results" } } } },
    "/document-templates": {
      "post": { "summary": "Create a document template", "responses": { "201": { "description": "template created" } } },
      "get": { "summary": "List templates", "responses": { "200": { "description": "template list" } } }
    },
    "/document-templates/{id}": {
      "get": { "summary": "Get a template", "responses": { "200": { "description": "template" } } },
      "put": { "summary": "Update a template (active flag included)", "responses": { "200": { "description": "updated template" } } },
      "delete": { "summary": "Delete a template", "responses": { "204": { "description": "deleted" } } }
    },
    "/document-templates/{id}/assign": { "post": { "summary": "Fan a template out to employees", "responses": { "201": { "description": "per-recipient results" }, "404": { "description": "missing or inactive template" } } } },
    "/documents/upload": { "post": { "summary": "Upload a document file (10 MB cap)", "responses": { "201": { "description": "file descriptor" }, "413": { "description": "file too large" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
