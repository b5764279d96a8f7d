// internal/workers/roi/calculate-roi/config.go
package calculateroi

import (
	"time"

	"roi-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// IncludeProjection keeps the year-by-year projection in the job output.
	IncludeProjection bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           5 * time.Second,
		IncludeProjection: true,
	}
}

// ConfigFrom derives the handler config from the worker entry in config.yaml.
func ConfigFrom(wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
