package config

import (
	"fmt"
	"time"
)

// ServerConfig holds configuration for the chart server.
type ServerConfig struct {
	BindAddr         string
	PortCandidates   string
	PortAutoFallback bool
	LogLevel         string
	LogFile          string

	Source      string
	DBPath      string
	UpstreamURL string
	SampleSeed  int

	ConfigFile string
	Timezone   string
	PriceLabel string

	SnapshotDir    string
	ChromiumCDPURL string
	WebhookURL     string

	Ingest IngestConfig
}

// LoadServer reads server configuration from environment variables.
func LoadServer() (*ServerConfig, error) {
	cfg := &ServerConfig{
		BindAddr:         getEnvOrDefault("GAS_CHART_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:   getEnvOrDefault("GAS_CHART_PORT_CANDIDATES", "8190,8191,8192,8193"),
		PortAutoFallback: getEnvBoolOrDefault("GAS_CHART_PORT_AUTO_FALLBACK", true),
		LogLevel:         getEnvLowerOrDefault("GAS_CHART_LOG_LEVEL", "info"),
		LogFile:          getEnvOrDefault("GAS_CHART_LOG_FILE", "logs/gas_chart.log"),
		Source:           getEnvLowerOrDefault("GAS_CHART_SOURCE", SourceSQLite),
		DBPath:           getEnvOrDefault("GAS_DB_PATH", DefaultDBPath),
		UpstreamURL:      getEnvOrDefault("GAS_CHART_UPSTREAM_URL", ""),
		SampleSeed:       getEnvIntOrDefault("GAS_CHART_SAMPLE_SEED", 1),
		ConfigFile:       getEnvOrDefault("GAS_CHART_CONFIG_FILE", ""),
		Timezone:         getEnvOrDefault("GAS_CHART_TIMEZONE", "UTC"),
		PriceLabel:       getEnvOrDefault("GAS_CHART_PRICE_LABEL", ""),
		SnapshotDir:      getEnvOrDefault("SNAPSHOT_DIR", "./snapshots"),
		ChromiumCDPURL:   getEnvOrDefault("CHROMIUM_CDP_URL", ""),
		WebhookURL:       getEnvOrDefault("NOTIFY_WEBHOOK_URL", ""),
		Ingest:           loadIngest(),
	}

	switch cfg.Source {
	case SourceSQLite, SourceSample:
	case SourceHTTP:
		if cfg.UpstreamURL == "" {
			return nil, fmt.Errorf("GAS_CHART_UPSTREAM_URL is required when GAS_CHART_SOURCE=http")
		}
	default:
		return nil, fmt.Errorf("GAS_CHART_SOURCE must be sqlite, http or sample; got %q", cfg.Source)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves the display timezone.
func (c *ServerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("GAS_CHART_TIMEZONE: %w", err)
	}
	return loc, nil
}
