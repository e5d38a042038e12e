package source

import (
	"time"

	"deliverycore/internal/snapshot"
)

// Loader produces a fresh, immutable snapshot.State on each call. Neither
// implementation caches or mutates what it returns.
type Loader interface {
	Load() (*snapshot.State, error)
}

// Config is the subset of config.AppConfig.Source a Loader needs; it is
// duplicated here (rather than importing internal/config) to keep this
// package free of a dependency on the CLI/ambient-config layer.
type Config struct {
	URL                 string
	AuthToken           string
	AuthCookie          string
	RequestDelaySeconds int
	LocalFile           string
}

// FromConfig picks HTTPSource when a URL is configured, otherwise
// FileSource.
func FromConfig(cfg Config) Loader {
	if cfg.URL != "" {
		delay := time.Duration(cfg.RequestDelaySeconds) * time.Second
		return NewHTTPSource(cfg.URL, cfg.AuthToken, cfg.AuthCookie, delay)
	}
	return NewFileSource(cfg.LocalFile)
}
