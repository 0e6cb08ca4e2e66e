package app

import (
	"log"
	"time"
)

type Config struct {
	PersistenceBaseURL string
	AdvisorBaseURL     string
	EventsBaseURL      string
	HTTPTimeout        time.Duration

	BreakerFailures uint32
	BreakerOpenFor  time.Duration

	DroughtMoisturePct float64

	Logger *log.Logger
}

// Gateway fans dashboard requests out to the backing services, each behind
// its own breaker.
type Gateway struct {
	cfg         Config
	persistence *Upstream
	advisor     *Upstream
	water       *Upstream
	events      *Upstream
}

func NewGateway(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 5 * time.Second
	}
	if cfg.DroughtMoisturePct <= 0 {
		cfg.DroughtMoisturePct = 20
	}

	return &Gateway{
		cfg:         cfg,
		persistence: NewUpstream("persistence", cfg.PersistenceBaseURL, "/data/latest", cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor),
		advisor:     NewUpstream("advisor", cfg.AdvisorBaseURL, "/advice/latest", cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor),
		water:       NewUpstream("advisor-water", cfg.AdvisorBaseURL, "/water/latest", cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor),
		events:      NewUpstream("events", cfg.EventsBaseURL, "/events/advice/latest", cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor),
	}
}
