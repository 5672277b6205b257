package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	domainconfig "mindmapx/domain/config"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string
	ServiceName   string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Logging
	LogLevel string

	// Canvas
	CanvasLayout string
	ClickSlop    float64

	// Sessions
	SessionTTL        time.Duration
	SweepInterval     time.Duration
	SessionsPerMinute int

	// Export
	ExportWidth   int
	ExportHeight  int
	ExportTimeout time.Duration

	// Feature flags
	EnableMetrics  bool
	EnableTracing  bool
	EnableCORS     bool
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		ServiceName:   getEnv("SERVICE_NAME", "mindmapx"),

		// Lambda configuration
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		// Canvas
		CanvasLayout: getEnv("CANVAS_LAYOUT", string(domainconfig.LayoutFull)),
		ClickSlop:    getEnvFloat("CLICK_SLOP", 0),

		// Sessions
		SessionTTL:        getEnvDuration("SESSION_TTL", 0),
		SweepInterval:     getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		SessionsPerMinute: getEnvInt("SESSIONS_PER_MINUTE", 60),

		// Export
		ExportWidth:   getEnvInt("EXPORT_WIDTH", 1600),
		ExportHeight:  getEnvInt("EXPORT_HEIGHT", 1200),
		ExportTimeout: time.Duration(getEnvInt("EXPORT_TIMEOUT_MS", 0)) * time.Millisecond,

		// Logging and features
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		EnableMetrics:  getEnvBool("ENABLE_METRICS", true),
		EnableTracing:  getEnvBool("ENABLE_TRACING", false),
		EnableCORS:     getEnvBool("ENABLE_CORS", true),
		AllowedOrigins: getEnvList("CORS_ORIGINS"),
	}
	cfg.IsLambda = getEnvBool("IS_LAMBDA", cfg.LambdaFunctionName != "")

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	switch domainconfig.Layout(c.CanvasLayout) {
	case domainconfig.LayoutFull, domainconfig.LayoutCompact:
	default:
		return fmt.Errorf("CANVAS_LAYOUT must be full or compact, got %q", c.CanvasLayout)
	}
	if c.ClickSlop < 0 {
		return fmt.Errorf("CLICK_SLOP must not be negative")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative")
	}
	if c.ExportWidth <= 0 || c.ExportHeight <= 0 || c.ExportWidth > 8192 || c.ExportHeight > 8192 {
		return fmt.Errorf("EXPORT_WIDTH and EXPORT_HEIGHT must be between 1 and 8192")
	}
	if c.ExportTimeout < 0 {
		return fmt.Errorf("EXPORT_TIMEOUT_MS must not be negative")
	}
	return nil
}

// DomainConfig returns the environment's domain rules with the
// environment-variable overrides applied
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	dc := domainconfig.LoadDomainConfig(c.Environment)
	dc.Layout = domainconfig.Layout(c.CanvasLayout)
	dc.ClickSlop = c.ClickSlop
	if c.SessionTTL > 0 {
		dc.SessionTTL = c.SessionTTL
	}
	if c.ExportTimeout > 0 {
		dc.ExportTimeout = c.ExportTimeout
	}
	return dc
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90m") or whole seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
