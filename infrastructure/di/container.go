package di

import (
	"net/http"

	"go.uber.org/zap"

	"mindmapx/application/commands/bus"
	querybus "mindmapx/application/queries/bus"
	domainconfig "mindmapx/domain/config"
	"mindmapx/infrastructure/config"
	"mindmapx/infrastructure/persistence/memory"
	"mindmapx/interfaces/ws"
	"mindmapx/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DomainConfig *domainconfig.DomainConfig
	Collector    *observability.Collector
	Sessions     *memory.SessionStore
	Hub          *ws.Hub
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Handler      http.Handler
}

// Start launches the background loops: session expiry and observer pings
func (c *Container) Start() {
	c.Sessions.Start(c.Config.SweepInterval)
	go c.Hub.Run()
}

// Shutdown stops background loops and flushes the logger
func (c *Container) Shutdown() {
	c.Hub.Stop()
	c.Sessions.Stop()
	_ = c.Logger.Sync()
}
