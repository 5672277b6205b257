package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mindmapx/application/commands/bus"
	querybus "mindmapx/application/queries/bus"
	"mindmapx/application/session"
	"mindmapx/interfaces/http/rest/handlers"
	"mindmapx/interfaces/http/rest/middleware"
	"mindmapx/interfaces/ws"
	pkgerrors "mindmapx/pkg/errors"
	"mindmapx/pkg/observability"
)

// RouterConfig toggles optional router features
type RouterConfig struct {
	EnableCORS        bool
	AllowedOrigins    []string
	SessionsPerMinute int // per client; zero disables the limit
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	sessions     session.Repository
	events       *ws.Server
	hub          *ws.Hub
	collector    *observability.Collector
	errorHandler *pkgerrors.ErrorHandler
	config       RouterConfig
	logger       *zap.Logger
}

// NewRouter creates a new router instance. events, hub and collector may
// be nil to leave the observer stream or metrics unmounted.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	sessions session.Repository,
	events *ws.Server,
	hub *ws.Hub,
	collector *observability.Collector,
	errorHandler *pkgerrors.ErrorHandler,
	config RouterConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		sessions:     sessions,
		events:       events,
		hub:          hub,
		collector:    collector,
		errorHandler: errorHandler,
		config:       config,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.collector != nil {
		router.Use(observability.MetricsMiddleware(rt.collector))
	}

	if rt.config.EnableCORS {
		origins := rt.config.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000", "http://localhost:5173"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	var onClose func(string)
	if rt.hub != nil {
		onClose = rt.hub.Disconnect
	}
	sessionHandler := handlers.NewSessionHandler(rt.commandBus, rt.queryBus, rt.errorHandler, onClose, rt.logger)
	exportHandler := handlers.NewExportHandler(rt.queryBus, rt.errorHandler, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/suggestions", exportHandler.Suggestions)
		r.Get("/palette", exportHandler.Palette)

		if n := rt.config.SessionsPerMinute; n > 0 {
			limiter := middleware.NewSlidingWindowLimiter(n, time.Minute)
			r.With(middleware.RateLimit(limiter, rt.errorHandler)).Post("/sessions", sessionHandler.CreateSession)
		} else {
			r.Post("/sessions", sessionHandler.CreateSession)
		}
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Delete("/", sessionHandler.CloseSession)

			// Lifecycle
			r.Post("/start", sessionHandler.StartSession)
			r.Post("/reset", sessionHandler.ResetSession)
			r.Post("/finish", sessionHandler.FinishSession)

			// Editing
			r.Post("/select", sessionHandler.SelectNode)
			r.Delete("/select", sessionHandler.ClearSelection)
			r.Post("/children", sessionHandler.AddChild)
			r.Put("/nodes/{nodeID}", sessionHandler.EditNode)

			// Pointer
			r.Post("/drag", sessionHandler.BeginDrag)
			r.Patch("/drag", sessionHandler.ContinueDrag)
			r.Delete("/drag", sessionHandler.EndDrag)

			// View
			r.Put("/zoom", sessionHandler.SetZoom)
			r.Put("/colors/{role}", sessionHandler.SetRoleColor)

			// Export
			r.Get("/export.json", exportHandler.ExportJSON)
			r.Get("/export.png", exportHandler.ExportPNG)
			r.Get("/export.svg", exportHandler.ExportSVG)
			r.Get("/preview", exportHandler.Preview)

			if rt.events != nil {
				r.Get("/events", rt.events.HandleEvents)
			}
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports the number of live sessions
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	body := map[string]interface{}{"status": "ready"}
	if rt.sessions != nil {
		body["sessions"] = rt.sessions.Count()
	}
	if rt.hub != nil {
		body["observers"] = rt.hub.GetMetrics().ActiveConnections
	}
	respondRaw(w, http.StatusOK, body)
}

func respondRaw(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
