package hashengine

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/avifenesh/hashengine/logger"
)

type engineConfig struct {
	tunables   Tunables
	logger     logger.Logger
	registerer prometheus.Registerer
	entropy    io.Reader
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		tunables: DefaultTunables(),
	}
}

// Option configures an Engine at construction time.
type Option func(*engineConfig)

// WithTunables overrides the default sizing and migration thresholds.
func WithTunables(t Tunables) Option {
	return func(c *engineConfig) {
		c.tunables = t
	}
}

// WithLogger directs WeakKey warnings and lifecycle notices at l instead of
// discarding them.
func WithLogger(l logger.Logger) Option {
	return func(c *engineConfig) {
		c.logger = l
	}
}

// WithMetrics registers the engine's gauges and counters with reg. Without
// this option an Engine collects no Prometheus metrics.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *engineConfig) {
		c.registerer = reg
	}
}

// WithEntropySource overrides the reader used to seed the SipHash subkeys.
// It only has an effect for the first Engine constructed in the process (or
// the first one constructed after a test reset); subkeys are a one-shot,
// process-wide latch by design. Primarily useful in tests that want
// deterministic subkeys or want to force the WeakKey fallback path.
func WithEntropySource(r io.Reader) Option {
	return func(c *engineConfig) {
		c.entropy = r
	}
}
