package config

import "time"

// IngestConfig holds the upstream feeds used to fill the price/news store.
type IngestConfig struct {
	DBPath      string
	EIAAPIKey   string
	EIASeriesID string
	FeedDelay   time.Duration
	FeedLimit   int

	// JournalDir enables the raw ingest journal when non-empty.
	JournalDir string
}

// LoadIngest reads ingestion settings from environment variables.
func LoadIngest() *IngestConfig {
	cfg := loadIngest()
	return &cfg
}

func loadIngest() IngestConfig {
	return IngestConfig{
		DBPath:      getEnvOrDefault("GAS_DB_PATH", DefaultDBPath),
		EIAAPIKey:   getEnvOrDefault("EIA_API_KEY", ""),
		EIASeriesID: getEnvOrDefault("EIA_HH_SERIES_ID", "NG.RNGWHHD.D"),
		FeedDelay:   time.Duration(getEnvIntOrDefault("GAS_INGEST_FEED_DELAY_MS", 500)) * time.Millisecond,
		FeedLimit:   getEnvIntOrDefault("GAS_INGEST_FEED_LIMIT", 75),
		JournalDir:  getEnvOrDefault("GAS_INGEST_JOURNAL_DIR", ""),
	}
}
