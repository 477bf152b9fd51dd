package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/ccauth/pkg/authsdk"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/aussiebroadwan/ccauth/pkg/promx"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
)

// Router serves the protected resource. Every bearer token is checked with
// Introspector before a handler runs.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time

	Introspector  httpx.Introspector
	RequiredScope string

	// Optional
	HTTPMetrics *promx.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(buildVersion string, in httpx.Introspector, requiredScope string, logger *slog.Logger) *Router {
	return &Router{
		Mux:           http.NewServeMux(),
		middlewares:   []httpx.Middleware{slogx.HTTPMiddleware(logger)},
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		Introspector:  in,
		RequiredScope: requiredScope,
	}
}

func (r *Router) ApplyRoutes() {
	r.Mux.Handle("GET /api/resource", r.HTTPMetrics.Instrument("GET /api/resource",
		httpx.Chain(ResourceHandler(), httpx.RequireBearer(r.Introspector, r.RequiredScope)),
	))

	r.Mux.Handle("GET /livez", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(r.startTime).String(),
			Version: r.buildVersion,
		})
	}))

	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics", promx.Handler(r.Gatherer))
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// ResourceHandler greets the client the guard admitted.
func ResourceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.ResourceResponse{
			Message:  "Hello from the resource server!",
			ClientID: httpx.ClientIDFromContext(r.Context()),
		})
	}
}
