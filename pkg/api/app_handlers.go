package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gatewaykit/portalsync/pkg/edge"
	"github.com/gatewaykit/portalsync/pkg/httputil"
	"github.com/gatewaykit/portalsync/pkg/sync"
)

// AppHandlers provides HTTP handlers for developer apps
type AppHandlers struct {
	service *sync.Service
}

// NewAppHandlers creates new app handlers
func NewAppHandlers(service *sync.Service) *AppHandlers {
	return &AppHandlers{service: service}
}

// RegisterRoutes registers developer app routes
func (h *AppHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/developers/{email}/apps", h.ListApps).Methods("GET")
	router.HandleFunc("/api/v1/developers/{email}/apps", h.CreateApp).Methods("POST")
	router.HandleFunc("/api/v1/developers/{email}/apps/{name}", h.GetApp).Methods("GET")
	router.HandleFunc("/api/v1/developers/{email}/apps/{name}", h.DeleteApp).Methods("DELETE")
}

// ListApps handles GET /api/v1/developers/{email}/apps
func (h *AppHandlers) ListApps(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}

	apps, err := h.service.Apps(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, apps)
}

// GetApp handles GET /api/v1/developers/{email}/apps/{name}
func (h *AppHandlers) GetApp(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}

	app, err := h.service.App(r.Context(), email, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, app)
}

// CreateApp handles POST /api/v1/developers/{email}/apps
func (h *AppHandlers) CreateApp(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}
	var app edge.App
	if !httputil.ParseJSONOrError(w, r, &app) {
		return
	}
	if app.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	created, err := h.service.CreateApp(r.Context(), email, &app)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteCreated(w, created)
}

// DeleteApp handles DELETE /api/v1/developers/{email}/apps/{name}
func (h *AppHandlers) DeleteApp(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}

	if err := h.service.DeleteApp(r.Context(), email, name); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
