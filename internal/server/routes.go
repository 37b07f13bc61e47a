package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/attest/internal/api/v1"
	"github.com/gosuda/attest/internal/api/ws"
	"github.com/gosuda/attest/internal/auth"
	"github.com/gosuda/attest/internal/records"
	"github.com/gosuda/attest/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, workflowSvc *records.Service) {
	v1.RegisterMeRoute(api)
	v1.RegisterAuditRoutes(api, store, workflowSvc)
	v1.RegisterRecordRoutes(api, workflowSvc)
}

func registerAdminRoutes(api huma.API, store *postgres.Store, workflowSvc *records.Service, authSvc *auth.Service) {
	v1.RegisterAdminRoutes(api, store, workflowSvc, authSvc)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/audits/{auditID}", hub.ServeAudit)
	r.Get("/trail", hub.ServeTrail)
}
