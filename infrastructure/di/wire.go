//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"mindmapx/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideCollector,
	ProvideTracer,
	ProvideSuggestionEngine,
	ProvideHub,
	ProvideSessionStore,
	ProvideSessionRepository,
	ProvideSessionFactory,
	ProvideRasterOptions,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideErrorHandler,
	ProvideEventServer,
	ProvideRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
