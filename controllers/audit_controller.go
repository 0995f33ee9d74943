package controllers

import (
	"net/http"

	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/services"
	"github.com/blogem/admin-console/userctx"
)

// AuditController handles audit log requests
type AuditController struct {
	services *services.Services
}

// NewAuditController creates a new audit controller
func NewAuditController(services *services.Services) *AuditController {
	return &AuditController{
		services: services,
	}
}

// List handles GET /api/audit
func (c *AuditController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.AuditFilter{
		ResourceKind: models.ResourceKind(q.Get("resource_kind")),
		ResourceID:   q.Get("resource_id"),
		ActorID:      q.Get("actor_id"),
	}
	if filter.ResourceKind != "" && !filter.ResourceKind.IsValid() {
		writeError(w, r, apperr.Field(apperr.CodeValidation, "resource_kind", "unknown resource kind"))
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.Limit = limit

	entries, err := c.services.Audit.List(r.Context(), userctx.GetActor(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
