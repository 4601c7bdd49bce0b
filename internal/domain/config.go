package domain

import "time"

// Config holds the complete FraudLens configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// Tier determines feature availability
	Tier Tier `json:"tier"`

	// Component configurations
	Store    StoreConfig    `json:"store"`
	Cache    CacheConfig    `json:"cache"`
	EventBus EventBusConfig `json:"eventBus"`

	// Remote model client
	Scorer ScorerConfig `json:"scorer"`

	// Alerts watcher
	Alerts AlertsConfig `json:"alerts"`

	// Observability
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds
}

// AlertsConfig holds alert watcher settings.
type AlertsConfig struct {
	// Expression is a CEL predicate over a scored record. Records for which
	// it evaluates to true are kept as alerts.
	Expression string `json:"expression"`

	// Capacity bounds how many recent alerts are retained.
	Capacity int `json:"capacity"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool   `json:"enabled"`
	ServiceName  string `json:"serviceName"`
	ExporterType string `json:"exporterType"` // stdout, otlp, jaeger
	Endpoint     string `json:"endpoint"`
}

// Tier represents the product tier.
type Tier string

const (
	// TierCommunity is the free tier with the JSON file store + channels
	TierCommunity Tier = "community"

	// TierPro is the paid tier with PostgreSQL + NATS + Redis
	TierPro Tier = "pro"
)

// DefaultAlertExpression flags records the dashboard should surface on the
// alerts page.
const DefaultAlertExpression = "fraudScore >= 70"

// DefaultConfig returns a default configuration for Community tier.
// Persists to a flat JSON file next to the binary, like the dashboard
// prototype did.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Tier: TierCommunity,
		Store: StoreConfig{
			Driver:   "file",
			FilePath: "./predictions.json",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 1024,
			LocalTTL:     time.Minute,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Scorer: ScorerConfig{
			ModelURL:       "http://localhost:8000",
			TimeoutSeconds: 5,
		},
		Alerts: AlertsConfig{
			Expression: DefaultAlertExpression,
			Capacity:   100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "fraudlens",
		},
	}
}

// ProConfig returns a configuration for Pro tier.
func ProConfig() *Config {
	cfg := DefaultConfig()
	cfg.Tier = TierPro
	cfg.Store = StoreConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "fraudlens",
	}
	cfg.Cache = CacheConfig{
		Type:      "redis",
		RedisAddr: "localhost:6379",
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
	}
	cfg.Tracing.Enabled = true
	return cfg
}
