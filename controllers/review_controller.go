package controllers

import (
	"net/http"

	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/services"
	"github.com/blogem/admin-console/userctx"
)

// ReviewController handles review moderation requests
type ReviewController struct {
	services *services.Services
}

// NewReviewController creates a new review controller
func NewReviewController(services *services.Services) *ReviewController {
	return &ReviewController{
		services: services,
	}
}

// List handles GET /api/reviews
func (c *ReviewController) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reviews, err := c.services.Reviews.ListReviews(r.Context(), userctx.GetActor(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// Get handles GET /api/reviews/{key}
func (c *ReviewController) Get(w http.ResponseWriter, r *http.Request) {
	review, err := c.services.Reviews.GetReview(r.Context(), userctx.GetActor(r.Context()), keyParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// History handles GET /api/reviews/{key}/history
func (c *ReviewController) History(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.Reviews.GetHistory(r.Context(), userctx.GetActor(r.Context()), keyParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// Moderate handles POST /api/reviews/{key}/moderate
func (c *ReviewController) Moderate(w http.ResponseWriter, r *http.Request) {
	var req models.ModerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := c.services.Reviews.Moderate(r.Context(), userctx.GetActor(r.Context()), keyParam(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
