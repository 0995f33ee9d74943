package controllers

import (
	"net/http"

	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/services"
	"github.com/blogem/admin-console/userctx"
)

// SettingController handles configuration setting requests
type SettingController struct {
	services *services.Services
}

// NewSettingController creates a new setting controller
func NewSettingController(services *services.Services) *SettingController {
	return &SettingController{
		services: services,
	}
}

// List handles GET /api/settings
func (c *SettingController) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	settings, err := c.services.Settings.ListSettings(r.Context(), userctx.GetActor(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// Get handles GET /api/settings/{key}
func (c *SettingController) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := c.services.Settings.GetSetting(r.Context(), userctx.GetActor(r.Context()), keyParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

// History handles GET /api/settings/{key}/history
func (c *SettingController) History(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.Settings.GetHistory(r.Context(), userctx.GetActor(r.Context()), keyParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// UpdateValue handles PUT /api/settings/{key}/value
func (c *SettingController) UpdateValue(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateValueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := c.services.Settings.UpdateValue(r.Context(), userctx.GetActor(r.Context()), keyParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Rollback handles POST /api/settings/{key}/rollback
func (c *SettingController) Rollback(w http.ResponseWriter, r *http.Request) {
	var req models.RollbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := c.services.Settings.Rollback(r.Context(), userctx.GetActor(r.Context()), keyParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
