package config

import "time"

// DefaultCatalogPath is the dataset file name the service has always shipped with.
const DefaultCatalogPath = "./bosch_item_based_collaborative_filtering.csv"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = ModeLocal
	}
	if cfg.Server.Host == "" {
		if cfg.Server.Mode == ModeHosted {
			cfg.Server.Host = "0.0.0.0"
		} else {
			cfg.Server.Host = "localhost"
		}
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.Table == "" {
		cfg.Catalog.Table = "products"
	}
	if cfg.Recommend.DefaultTopN == 0 {
		cfg.Recommend.DefaultTopN = 5
	}
	if cfg.Recommend.RatingSource == "" {
		cfg.Recommend.RatingSource = "raw"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
