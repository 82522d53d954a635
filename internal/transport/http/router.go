package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vouch/internal/credential/handler"
	"vouch/internal/platform/config"
	"vouch/internal/platform/health"
	"vouch/internal/platform/middleware"
	"vouch/internal/ratelimit"
	adminmw "vouch/pkg/platform/middleware/admin"

	"log/slog"
)

// Role selects which credential endpoints a service instance exposes.
type Role string

const (
	RoleIssuer   Role = "issuer"
	RoleVerifier Role = "verifier"
)

// NewRouter wires the public endpoints with the shared middleware stack.
// The transport is a thin adapter: everything behind it delegates to the
// credential service.
func NewRouter(role Role, h *handler.Handler, healthHandler *health.Handler, limiter ratelimit.Limiter, cfg config.Server, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.AllowedOrigin))
	if limiter != nil {
		r.Use(ratelimit.Middleware(limiter, logger))
	}
	r.Use(middleware.ContentTypeJSON)

	healthHandler.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	switch role {
	case RoleIssuer:
		h.RegisterIssuer(r)
	case RoleVerifier:
		h.RegisterVerifier(r)
	}

	// Diagnostic listing is operational, not part of the credential contract.
	r.Group(func(gr chi.Router) {
		gr.Use(adminmw.RequireAdminToken(cfg.AdminToken, logger))
		h.RegisterDiagnostics(gr)
	})

	return r
}
