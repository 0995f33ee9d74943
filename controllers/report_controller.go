package controllers

import (
	"net/http"

	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/services"
	"github.com/blogem/admin-console/userctx"
)

// ReportController handles report moderation requests
type ReportController struct {
	services *services.Services
}

// NewReportController creates a new report controller
func NewReportController(services *services.Services) *ReportController {
	return &ReportController{
		services: services,
	}
}

// List handles GET /api/reports
func (c *ReportController) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reports, err := c.services.Reports.ListReports(r.Context(), userctx.GetActor(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// Get handles GET /api/reports/{key}
func (c *ReportController) Get(w http.ResponseWriter, r *http.Request) {
	report, err := c.services.Reports.GetReport(r.Context(), userctx.GetActor(r.Context()), keyParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// History handles GET /api/reports/{key}/history
func (c *ReportController) History(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.Reports.GetHistory(r.Context(), userctx.GetActor(r.Context()), keyParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// Assign handles POST /api/reports/{key}/assign
func (c *ReportController) Assign(w http.ResponseWriter, r *http.Request) {
	var req models.AssignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := c.services.Reports.Assign(r.Context(), userctx.GetActor(r.Context()), keyParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ChangeStatus handles POST /api/reports/{key}/status
func (c *ReportController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req models.ChangeStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := c.services.Reports.ChangeStatus(r.Context(), userctx.GetActor(r.Context()), keyParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Resolve handles POST /api/reports/{key}/resolve
func (c *ReportController) Resolve(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := c.services.Reports.Resolve(r.Context(), userctx.GetActor(r.Context()), keyParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
