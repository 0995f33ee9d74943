package controllers

import (
	"net/http"

	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/services"
	"github.com/blogem/admin-console/userctx"
)

// JobController handles background job control requests
type JobController struct {
	services *services.Services
}

// NewJobController creates a new job controller
func NewJobController(services *services.Services) *JobController {
	return &JobController{
		services: services,
	}
}

// List handles GET /api/jobs
func (c *JobController) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jobs, err := c.services.Jobs.ListJobs(r.Context(), userctx.GetActor(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// Get handles GET /api/jobs/{key}
func (c *JobController) Get(w http.ResponseWriter, r *http.Request) {
	job, err := c.services.Jobs.GetJob(r.Context(), userctx.GetActor(r.Context()), keyParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// History handles GET /api/jobs/{key}/history
func (c *JobController) History(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.Jobs.GetHistory(r.Context(), userctx.GetActor(r.Context()), keyParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// Retry handles POST /api/jobs/{key}/retry
func (c *JobController) Retry(w http.ResponseWriter, r *http.Request) {
	var req models.ControlRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := c.services.Jobs.Retry(r.Context(), userctx.GetActor(r.Context()), keyParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Cancel handles POST /api/jobs/{key}/cancel
func (c *JobController) Cancel(w http.ResponseWriter, r *http.Request) {
	var req models.ControlRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := c.services.Jobs.Cancel(r.Context(), userctx.GetActor(r.Context()), keyParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
