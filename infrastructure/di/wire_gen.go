// Maintained by hand in the shape wire emits for wire.go. Regenerating with
// the wire tool replaces this file; keep it in sync with ProviderSet.

//go:build !wireinject
// +build !wireinject

package di

import (
	"mindmapx/infrastructure/config"
)

// Injectors from wire.go:

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	domainConfig := ProvideDomainConfig(cfg)
	collector := ProvideCollector(cfg)
	tracer := ProvideTracer(cfg)
	engine := ProvideSuggestionEngine()
	hub := ProvideHub(logger, collector)
	sessionStore := ProvideSessionStore(domainConfig, logger, collector)
	repository := ProvideSessionRepository(sessionStore)
	factory := ProvideSessionFactory(domainConfig, engine, hub, logger)
	commandBus, err := ProvideCommandBus(repository, factory, domainConfig, collector, tracer, logger)
	if err != nil {
		return nil, err
	}
	rasterOptions := ProvideRasterOptions(cfg)
	queryBus, err := ProvideQueryBus(repository, engine, domainConfig, rasterOptions, collector, logger)
	if err != nil {
		return nil, err
	}
	errorHandler := ProvideErrorHandler(cfg, logger)
	server := ProvideEventServer(hub, repository, errorHandler, logger)
	router := ProvideRouter(cfg, commandBus, queryBus, repository, server, hub, collector, errorHandler, logger)
	handler := ProvideHTTPHandler(router)
	container := &Container{
		Config:       cfg,
		Logger:       logger,
		DomainConfig: domainConfig,
		Collector:    collector,
		Sessions:     sessionStore,
		Hub:          hub,
		CommandBus:   commandBus,
		QueryBus:     queryBus,
		Handler:      handler,
	}
	return container, nil
}
