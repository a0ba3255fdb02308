package config

import "time"

// HTTPConfiguration holds the endpoint and transport settings for talking
// to the collector.
type HTTPConfiguration struct {
	BaseURL string

	RequestTimeout time.Duration

	// ShutdownTimeout bounds how long OpenKit.Shutdown waits for the sender
	// worker to drain before forcibly stopping.
	ShutdownTimeout time.Duration

	// CacheRecordAgeCheckInterval is how often the eviction pass runs.
	CacheRecordAgeCheckInterval time.Duration

	// RecordAgeLimit is the max age a cached record may reach before eviction.
	RecordAgeLimit time.Duration

	// UpperMemoryBoundaryBytes/LowerMemoryBoundaryBytes bound the beacon
	// cache's total size; exceeding upper triggers eviction down to lower.
	UpperMemoryBoundaryBytes int64
	LowerMemoryBoundaryBytes int64
}

// DefaultHTTPConfiguration mirrors the reference agent's stock defaults.
func DefaultHTTPConfiguration(baseURL string) *HTTPConfiguration {
	return &HTTPConfiguration{
		BaseURL:                     baseURL,
		RequestTimeout:              10 * time.Second,
		ShutdownTimeout:             10 * time.Second,
		CacheRecordAgeCheckInterval: 2 * time.Second,
		RecordAgeLimit:              2 * time.Hour,
		UpperMemoryBoundaryBytes:    100 * 1024,
		LowerMemoryBoundaryBytes:    80 * 1024,
	}
}
