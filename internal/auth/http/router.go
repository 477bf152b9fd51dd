package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/ccauth/internal/auth/service"
	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/aussiebroadwan/ccauth/pkg/httpx"
	"github.com/aussiebroadwan/ccauth/pkg/promx"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/aussiebroadwan/ccauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RequiredScope is the scope every protected route of the authorization
// server demands.
const RequiredScope = "profile"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	ClientService        *service.ClientService
	Grant                *service.ClientCredentialsGrant
	IntrospectionService *service.IntrospectionService

	RateLimits          httpx.RateLimits
	TrustForwardedProto bool

	// Optional: routes are not instrumented and /metrics is not served
	// when unset.
	HTTPMetrics *promx.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		RateLimits:   httpx.DefaultRateLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerClients()
	r.registerResource()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ccauth Authorization Server API
//	@version		0.1.0
//	@description	OAuth2 client credentials authorization server issuing opaque bearer tokens.
//	@description	Tokens are validated by introspection (RFC 7662).
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/ccauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:5003
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern, instrumented when metrics are enabled.
func (r *Router) handle(pattern string, h http.Handler) {
	r.Mux.Handle(pattern, r.HTTPMetrics.Instrument(pattern, h))
}

// requireBearer guards a route with a profile-scoped bearer token checked
// against the local token store.
func (r *Router) requireBearer() httpx.Middleware {
	return httpx.RequireBearer(&localIntrospector{svc: r.IntrospectionService}, RequiredScope)
}

func (r *Router) registerOAuth2() {
	// POST /oauth/token - strict rate limit by IP (credential guessing)
	tokenHandler := &TokenHandler{Grant: r.Grant, TrustForwardedProto: r.TrustForwardedProto}
	r.handle("POST /oauth/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(r.RateLimits.Strict),
		),
	)

	// POST /oauth/introspect - bearer protected, moderate limit per client
	introspectHandler := &IntrospectHandler{IntrospectionService: r.IntrospectionService}
	r.handle("POST /oauth/introspect",
		httpx.Chain(introspectHandler,
			r.requireBearer(),
			httpx.RateLimitByClient(r.RateLimits.Moderate),
		),
	)

	// GET /oauth/authorize - no grant served here involves a user agent
	r.handle("GET /oauth/authorize",
		httpx.Chain(AuthorizeHandler(),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	r.handle("POST /register-client",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			r.requireBearer(),
			httpx.RateLimitByClient(r.RateLimits.Moderate),
		),
	)
}

func (r *Router) registerResource() {
	r.handle("GET /api/resource",
		httpx.Chain(ResourceHandler(),
			r.requireBearer(),
			httpx.RateLimitByClient(r.RateLimits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - public limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.RateLimits.Public),
		),
	)

	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics", promx.Handler(r.Gatherer))
	}
}
