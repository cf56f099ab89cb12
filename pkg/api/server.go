// Package api exposes the portal sync admin surface over HTTP:
// developer CRUD, company membership, owner assignment, developer
// apps, and API product listing.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gatewaykit/portalsync/pkg/httputil"
	"github.com/gatewaykit/portalsync/pkg/observability"
	"github.com/gatewaykit/portalsync/pkg/sync"
)

// Server wires the sync service into a gorilla/mux router with the
// standard middleware chain.
type Server struct {
	router  *mux.Router
	service *sync.Service
	logger  *observability.Logger
}

// NewServer creates an API server and registers all routes. The
// metrics argument may be nil.
func NewServer(service *sync.Service, logger *observability.Logger, metrics *observability.Metrics) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		logger:  logger,
	}

	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(logger, metrics))
	s.router.Use(httputil.RecoveryMiddleware(logger))

	NewDeveloperHandlers(service, logger).RegisterRoutes(s.router)
	NewAppHandlers(service).RegisterRoutes(s.router)
	NewProductHandlers(service).RegisterRoutes(s.router)

	return s
}

// Router returns the underlying router so callers can mount extra
// routes such as health endpoints.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
