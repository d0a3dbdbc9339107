package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RecipePath string // hcl or yaml recipe files
	Target     string // key to compute
	Describe   bool   // describe the target instead of computing it

	LogFormat   string
	LogLevel    string
	WorkerCount int
	CacheOff    bool
}

// NewConfig validates cfg and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RecipePath == "" {
		return nil, errors.New("RecipePath is a required configuration field and cannot be empty")
	}
	if cfg.Target == "" && !cfg.Describe {
		return nil, errors.New("a target key is required unless describing")
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &cfg, nil
}
