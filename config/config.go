// Package config holds the environment-driven configuration for the
// applyforge orchestration engine.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See the individual domain config files
// for available variables:
//   - database.go: Postgres and Redis configuration
//   - engine.go: scheduler, governor, and LLM gateway configuration
//   - platforms.go: portal adapter configuration
//   - services.go: service mode configuration
//   - http.go: HTTP API configuration
package config

// AppConfig is the main application configuration struct composing the
// domain-specific sections.
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging, dev seeds).
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"engine,http"`

	// Engine configuration
	Engine   EngineConfig
	Governor GovernorConfig
	LLM      LLMConfig

	// Portal adapter configuration
	Platforms PlatformsConfig

	// HTTP API configuration
	HTTP HTTPConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Engine.Sanitize()
	c.Governor.Sanitize()
	c.LLM.Sanitize()
	c.Platforms.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsEngineEnabled returns true if the orchestration engine is enabled.
func (c *AppConfig) IsEngineEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeEngine]
}

// IsHTTPServerEnabled returns true if the HTTP API service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}
