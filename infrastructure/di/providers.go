package di

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"mindmapx/application/commands/bus"
	commandhandlers "mindmapx/application/commands/handlers"
	"mindmapx/application/export"
	querybus "mindmapx/application/queries/bus"
	queryhandlers "mindmapx/application/queries/handlers"
	"mindmapx/application/session"
	domainconfig "mindmapx/domain/config"
	"mindmapx/domain/suggestions"
	"mindmapx/infrastructure/config"
	"mindmapx/infrastructure/persistence/memory"
	"mindmapx/interfaces/http/rest"
	"mindmapx/interfaces/ws"
	pkgerrors "mindmapx/pkg/errors"
	"mindmapx/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Environment, cfg.LogLevel)
}

// ProvideDomainConfig resolves business rules for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.DomainConfig()
}

// ProvideCollector creates the Prometheus collector, or nil when metrics are off
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(strings.ReplaceAll(cfg.ServiceName, "-", "_"))
}

// ProvideTracer creates the X-Ray tracer, or nil when tracing is off
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer(cfg.ServiceName)
}

// ProvideSuggestionEngine creates the label suggestion engine
func ProvideSuggestionEngine() *suggestions.Engine {
	return suggestions.NewEngine()
}

// ProvideHub creates the observer hub
func ProvideHub(logger *zap.Logger, collector *observability.Collector) *ws.Hub {
	var gauge ws.ObserverGauge
	if collector != nil {
		gauge = collector
	}
	return ws.NewHub(logger.Named("ws"), gauge)
}

// ProvideSessionStore creates the in-memory session registry
func ProvideSessionStore(dc *domainconfig.DomainConfig, logger *zap.Logger, collector *observability.Collector) *memory.SessionStore {
	var onEvict func()
	if collector != nil {
		onEvict = collector.SessionClosed
	}
	return memory.NewSessionStore(dc.SessionTTL, logger.Named("sessions"), onEvict)
}

// ProvideSessionRepository exposes the store through the repository port
func ProvideSessionRepository(store *memory.SessionStore) session.Repository {
	return store
}

// ProvideSessionFactory builds sessions that publish to the hub
func ProvideSessionFactory(
	dc *domainconfig.DomainConfig,
	engine *suggestions.Engine,
	hub *ws.Hub,
	logger *zap.Logger,
) session.Factory {
	sessionLogger := logger.Named("session")
	return func(id string) *session.Session {
		return session.New(id, dc, sessionLogger.With(zap.String("session_id", id)),
			session.WithEngine(engine),
			session.WithPublisher(hub),
		)
	}
}

// ProvideRasterOptions sets the default PNG size
func ProvideRasterOptions(cfg *config.Config) export.RasterOptions {
	return export.RasterOptions{Width: cfg.ExportWidth, Height: cfg.ExportHeight}
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	sessions session.Repository,
	factory session.Factory,
	dc *domainconfig.DomainConfig,
	collector *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	middleware := []bus.Middleware{bus.LoggingMiddleware(observability.NewBusLogger(logger.Named("commands")))}
	var recorder commandhandlers.Recorder
	if collector != nil {
		middleware = append(middleware, bus.MetricsMiddleware(collector))
		recorder = collector
	}
	if tracer != nil {
		middleware = append(middleware, bus.TracingMiddleware(tracer))
	}

	commandBus := bus.NewCommandBus(middleware...)
	handler := commandhandlers.NewSessionCommandHandler(sessions, factory, dc, recorder, logger)
	if err := handler.Register(commandBus); err != nil {
		return nil, fmt.Errorf("failed to register command handlers: %w", err)
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	sessions session.Repository,
	engine *suggestions.Engine,
	dc *domainconfig.DomainConfig,
	raster export.RasterOptions,
	collector *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	var recorder queryhandlers.ExportRecorder
	if collector != nil {
		queryBus.WithMetrics(collector)
		recorder = collector
	}

	handler := queryhandlers.NewSessionQueryHandler(sessions, engine, dc, raster, recorder, logger)
	if err := handler.Register(queryBus); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return queryBus, nil
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideEventServer creates the observer websocket endpoint
func ProvideEventServer(hub *ws.Hub, sessions session.Repository, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *ws.Server {
	return ws.NewServer(hub, sessions, nil, errorHandler, logger.Named("ws"))
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	sessions session.Repository,
	events *ws.Server,
	hub *ws.Hub,
	collector *observability.Collector,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, sessions, events, hub, collector, errorHandler, rest.RouterConfig{
		EnableCORS:        cfg.EnableCORS,
		AllowedOrigins:    cfg.AllowedOrigins,
		SessionsPerMinute: cfg.SessionsPerMinute,
	}, logger.Named("http"))
}

// ProvideHTTPHandler builds the routed handler
func ProvideHTTPHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
