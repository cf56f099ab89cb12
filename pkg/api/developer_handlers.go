package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gatewaykit/portalsync/pkg/accounts"
	"github.com/gatewaykit/portalsync/pkg/edge"
	"github.com/gatewaykit/portalsync/pkg/entity"
	"github.com/gatewaykit/portalsync/pkg/httputil"
	"github.com/gatewaykit/portalsync/pkg/observability"
	"github.com/gatewaykit/portalsync/pkg/sync"
)

// DeveloperHandlers provides HTTP handlers for developer management
type DeveloperHandlers struct {
	service *sync.Service
	logger  *observability.Logger
}

// NewDeveloperHandlers creates new developer handlers
func NewDeveloperHandlers(service *sync.Service, logger *observability.Logger) *DeveloperHandlers {
	return &DeveloperHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers developer routes
func (h *DeveloperHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/developers", h.ListDevelopers).Methods("GET")
	router.HandleFunc("/api/v1/developers", h.CreateDeveloper).Methods("POST")
	router.HandleFunc("/api/v1/developers", h.DeleteDevelopers).Methods("DELETE")
	router.HandleFunc("/api/v1/developers/{email}", h.GetDeveloper).Methods("GET")
	router.HandleFunc("/api/v1/developers/{email}", h.UpdateDeveloper).Methods("PUT")
	router.HandleFunc("/api/v1/developers/{email}", h.DeleteDeveloper).Methods("DELETE")
	router.HandleFunc("/api/v1/developers/{email}/companies", h.GetCompanies).Methods("GET")
	router.HandleFunc("/api/v1/developers/{email}/owner", h.GetOwner).Methods("GET")
	router.HandleFunc("/api/v1/developers/{email}/owner", h.AssignOwner).Methods("PUT")
}

// developerView is the JSON representation returned by the developer
// endpoints.
type developerView struct {
	UUID          string `json:"uuid"`
	Email         string `json:"email"`
	OriginalEmail string `json:"original_email"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	UserName      string `json:"user_name,omitempty"`
	Status        string `json:"status"`
}

func newDeveloperView(dev *entity.Developer) developerView {
	return developerView{
		UUID:          dev.UUID(),
		Email:         dev.Email(),
		OriginalEmail: dev.OriginalEmail(),
		FirstName:     dev.FirstName(),
		LastName:      dev.LastName(),
		UserName:      dev.UserName(),
		Status:        string(dev.Status()),
	}
}

// developerRequest is the JSON body accepted by create and update.
type developerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserName  string `json:"user_name"`
	Status    string `json:"status"`
}

func (req *developerRequest) toWire() *edge.Developer {
	return &edge.Developer{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Status:    edge.DeveloperStatus(req.Status),
	}
}

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, edge.ErrNotFound), errors.Is(err, accounts.ErrNotFound):
		httputil.WriteNotFound(w, "resource not found")
	default:
		if apiErr, ok := edge.IsAPIError(err); ok && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			httputil.WriteError(w, http.StatusBadGateway, err)
			return
		}
		httputil.WriteInternalError(w, err)
	}
}

// ListDevelopers handles GET /api/v1/developers
func (h *DeveloperHandlers) ListDevelopers(w http.ResponseWriter, r *http.Request) {
	status := edge.DeveloperStatus(httputil.QueryParam(r, "status", ""))

	devs, err := h.service.List(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]developerView, 0, len(devs))
	for _, dev := range devs {
		views = append(views, newDeveloperView(dev))
	}
	httputil.WriteSuccess(w, views)
}

// GetDeveloper handles GET /api/v1/developers/{email}
func (h *DeveloperHandlers) GetDeveloper(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}

	dev, err := h.service.Get(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, newDeveloperView(dev))
}

// CreateDeveloper handles POST /api/v1/developers
func (h *DeveloperHandlers) CreateDeveloper(w http.ResponseWriter, r *http.Request) {
	var req developerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Email == "" {
		httputil.WriteBadRequest(w, "email is required")
		return
	}

	dev, err := h.service.Create(r.Context(), req.toWire())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteCreated(w, newDeveloperView(dev))
}

// UpdateDeveloper handles PUT /api/v1/developers/{email}
func (h *DeveloperHandlers) UpdateDeveloper(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}
	var req developerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Email == "" {
		req.Email = email
	}

	dev, err := h.service.Update(r.Context(), email, req.toWire())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, newDeveloperView(dev))
}

// DeleteDeveloper handles DELETE /api/v1/developers/{email}
func (h *DeveloperHandlers) DeleteDeveloper(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}

	if err := h.service.DeleteBatch(r.Context(), []string{email}); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// DeleteDevelopers handles DELETE /api/v1/developers, removing a batch
// of developers by email.
func (h *DeveloperHandlers) DeleteDevelopers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Emails []string `json:"emails"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.Emails) == 0 {
		httputil.WriteBadRequest(w, "emails is required")
		return
	}

	if err := h.service.DeleteBatch(r.Context(), req.Emails); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// GetCompanies handles GET /api/v1/developers/{email}/companies
func (h *DeveloperHandlers) GetCompanies(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}

	dev, err := h.service.Get(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string][]string{
		"companies": dev.Companies(r.Context()),
	})
}

// ownerView is the JSON shape of the owner endpoints. A null
// account_id means the developer has no local owner.
type ownerView struct {
	AccountID *int64 `json:"account_id"`
}

// GetOwner handles GET /api/v1/developers/{email}/owner
func (h *DeveloperHandlers) GetOwner(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}

	dev, err := h.service.Get(r.Context(), email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	id, err := dev.OwnerID(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, ownerView{AccountID: id})
}

// AssignOwner handles PUT /api/v1/developers/{email}/owner
func (h *DeveloperHandlers) AssignOwner(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}
	var req ownerView
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	dev, err := h.service.AssignOwner(r.Context(), email, req.AccountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, newDeveloperView(dev))
}
