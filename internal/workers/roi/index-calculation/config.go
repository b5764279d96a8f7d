// internal/workers/roi/index-calculation/config.go
package indexcalculation

import (
	"time"

	"roi-workers/internal/common/config"
)

type Config struct {
	Timeout   time.Duration
	IndexName string
	// Refresh is passed through to the index request ("true", "false", "wait_for").
	Refresh string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   10 * time.Second,
		IndexName: "roi-calculations",
		Refresh:   "false",
	}
}

func ConfigFrom(wcfg config.WorkerConfig, roi config.ROIConfig) *Config {
	cfg := LoadConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if roi.IndexName != "" {
		cfg.IndexName = roi.IndexName
	}
	return cfg
}
