package ops

import (
	"fmt"
)

// CacheType represents the query cache mode.
type CacheType string

const (
	// CacheTypeMemory keeps results in process memory.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNone stores nothing; concurrent reads of a key are still
	// deduplicated and retried.
	CacheTypeNone CacheType = "none"
)

// CacheConfig configures the query cache.
type CacheConfig struct {
	// Type is the cache mode.
	Type CacheType

	// Options tune the policy. If nil, DefaultCacheOptions() is used.
	Options *CacheOptions
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		Options: DefaultCacheOptions(),
	}
}

// NewQueryCacheFromConfig creates a query cache from configuration.
func NewQueryCacheFromConfig(config *CacheConfig, logger Logger) (*QueryCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	options := config.Options
	if options == nil {
		options = DefaultCacheOptions()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return NewQueryCache(options, logger), nil

	case CacheTypeNone:
		disabled := *options
		disabled.StaleTime = 0
		disabled.GCTime = 0

		return NewQueryCache(&disabled, logger), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}
