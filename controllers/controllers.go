package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/apperr"
	"github.com/blogem/admin-console/models"
	"github.com/blogem/admin-console/services"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
}

// writeJSON writes v with status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps a coded error onto its HTTP status. Internal causes are
// logged and never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	coded := apperr.As(err)
	message := coded.Message
	if coded.Code == apperr.CodeInternal {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "internal error"
	}
	writeJSON(w, apperr.HTTPStatus(coded.Code), errorBody{Error: errorDetail{
		Code:    coded.Code,
		Message: message,
		Field:   coded.Field,
	}})
}

// decodeJSON decodes and validates a request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.CodeValidation, "request body is not valid JSON for this operation", err)
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperr.Field(apperr.CodeValidation, fe.Field(), fe.Field()+" failed the "+fe.Tag()+" check")
		}
		return apperr.Wrap(apperr.CodeValidation, "invalid request", err)
	}
	return nil
}

// listFilter reads list parameters from the query string
func listFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	filter := models.ListFilter{
		Category:   q.Get("category"),
		Status:     q.Get("status"),
		KeyPrefix:  q.Get("search"),
		SortBy:     models.SortField(q.Get("sort")),
		Descending: q.Get("order") == "desc",
	}

	switch filter.SortBy {
	case "", models.SortByKey, models.SortByUpdatedAt:
	default:
		return filter, apperr.Field(apperr.CodeValidation, "sort", "sort must be key or updated_at")
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		return filter, err
	}
	filter.Limit = limit
	return filter, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Field(apperr.CodeValidation, name, name+" must be a non-negative integer")
	}
	return n, nil
}

func keyParam(r *http.Request) string {
	return chi.URLParam(r, "key")
}

// Controllers holds all controller instances
type Controllers struct {
	Auth     *AuthController
	Settings *SettingController
	Reports  *ReportController
	Reviews  *ReviewController
	Jobs     *JobController
	Audit    *AuditController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, gate *access.Gate) *Controllers {
	return &Controllers{
		Auth:     NewAuthController(gate),
		Settings: NewSettingController(services),
		Reports:  NewReportController(services),
		Reviews:  NewReviewController(services),
		Jobs:     NewJobController(services),
		Audit:    NewAuditController(services),
	}
}

// APIRoutes mounts the JSON API. Callers must resolve the actor first.
func (c *Controllers) APIRoutes(r chi.Router) {
	r.Get("/me", c.Auth.Me)

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", c.Settings.List)
		r.Get("/{key}", c.Settings.Get)
		r.Get("/{key}/history", c.Settings.History)
		r.Put("/{key}/value", c.Settings.UpdateValue)
		r.Post("/{key}/rollback", c.Settings.Rollback)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", c.Reports.List)
		r.Get("/{key}", c.Reports.Get)
		r.Get("/{key}/history", c.Reports.History)
		r.Post("/{key}/assign", c.Reports.Assign)
		r.Post("/{key}/status", c.Reports.ChangeStatus)
		r.Post("/{key}/resolve", c.Reports.Resolve)
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", c.Reviews.List)
		r.Get("/{key}", c.Reviews.Get)
		r.Get("/{key}/history", c.Reviews.History)
		r.Post("/{key}/moderate", c.Reviews.Moderate)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", c.Jobs.List)
		r.Get("/{key}", c.Jobs.Get)
		r.Get("/{key}/history", c.Jobs.History)
		r.Post("/{key}/retry", c.Jobs.Retry)
		r.Post("/{key}/cancel", c.Jobs.Cancel)
	})

	r.Get("/audit", c.Audit.List)
}
