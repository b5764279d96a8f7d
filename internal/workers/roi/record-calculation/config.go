// internal/workers/roi/record-calculation/config.go
package recordcalculation

import (
	"time"

	"roi-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// IdempotencyTTL bounds how long a request id is remembered in Redis.
	IdempotencyTTL time.Duration
	KeyPrefix      string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        10 * time.Second,
		IdempotencyTTL: 24 * time.Hour,
		KeyPrefix:      "roi:calculation:",
	}
}

func ConfigFrom(wcfg config.WorkerConfig, roi config.ROIConfig) *Config {
	cfg := LoadConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if roi.IdempotencyTTL > 0 {
		cfg.IdempotencyTTL = config.GetDuration(roi.IdempotencyTTL)
	}
	return cfg
}
