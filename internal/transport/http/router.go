// Package httptransport assembles the public and admin HTTP surface. It owns
// routing and middleware only; request handling lives with each feature.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendancehandler "rollcall/internal/attendance/handler"
	identityhandler "rollcall/internal/identity/handler"
	sessionhandler "rollcall/internal/session/handler"
	tokenhandler "rollcall/internal/token/handler"
	verifyhandler "rollcall/internal/verify/handler"
	adminmw "rollcall/pkg/platform/middleware/admin"
	"rollcall/pkg/platform/middleware/metadata"
	"rollcall/pkg/platform/middleware/request"
	"rollcall/pkg/platform/middleware/requesttime"
)

// Deps carries the feature handlers the router mounts.
type Deps struct {
	Verify     *verifyhandler.Handler
	Token      *tokenhandler.Handler
	Attendance *attendancehandler.Handler
	Sessions   *sessionhandler.Handler
	Identity   *identityhandler.Handler

	// AdminToken protects /admin. Empty disables the guard (development
	// mode).
	AdminToken string
	Logger     *slog.Logger

	// Health reports readiness of backing stores. Nil means always healthy.
	Health func(r *http.Request) error
}

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", healthHandler(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	deps.Verify.Register(r)
	deps.Token.Register(r)
	deps.Attendance.Register(r)

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(adminmw.RequireAdminToken(deps.AdminToken, deps.Logger))
		deps.Sessions.RegisterAdmin(admin)
		deps.Identity.RegisterAdmin(admin)
	})

	return r
}

func healthHandler(health func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
