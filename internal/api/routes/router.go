package routes

import (
	"net/http"

	"github.com/medtravel/hospitaldirectory/internal/api/handlers"
	"github.com/medtravel/hospitaldirectory/internal/api/middleware"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
)

// Handlers groups the route handlers. Nil handlers leave their routes
// unregistered.
type Handlers struct {
	Health    *handlers.HealthHandler
	Hospital  *handlers.HospitalHandler
	Directory *handlers.DirectoryHandler
	Lead      *handlers.LeadHandler
	Content   *handlers.ContentHandler
	Webhook   *handlers.CMSWebhookHandler
}

// Router holds all route handlers
type Router struct {
	mux             *http.ServeMux
	handlers        Handlers
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(h Handlers, cacheMiddleware *middleware.CacheMiddleware, metrics *observability.Metrics, allowedOrigins []string) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		handlers:        h,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
		allowedOrigins:  allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	h := r.handlers

	if h.Health != nil {
		r.mux.HandleFunc("GET /health", h.Health.Health)
	}

	if h.Hospital != nil {
		r.mux.HandleFunc("GET /api/hospitals", h.Hospital.ListHospitals)
	}

	if h.Directory != nil {
		r.mux.HandleFunc("GET /api/directory", h.Directory.GetDirectory)
		r.mux.HandleFunc("POST /api/directory/filters", h.Directory.ApplyFilter)
		r.mux.HandleFunc("GET /api/search/suggest", h.Directory.Suggest)
	}

	if h.Lead != nil {
		r.mux.HandleFunc("POST /api/leads", h.Lead.SubmitLead)
	}

	if h.Content != nil {
		r.mux.HandleFunc("GET /api/blogs", h.Content.ListBlogs)
		r.mux.HandleFunc("GET /api/blogs/{slug}", h.Content.GetBlog)
		r.mux.HandleFunc("GET /api/albums", h.Content.ListAlbums)
	}

	if h.Webhook != nil {
		r.mux.HandleFunc("POST /webhooks/cms", h.Webhook.HandleWebhook)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORS(r.allowedOrigins)(handler)

	return handler
}
