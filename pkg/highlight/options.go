package highlight

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinship/pkg/observability"
)

// Option configures the engine functions ([ComputePath], [Aggregate],
// [Assemble]). Options never change results, only where diagnostics go and
// which tier thresholds apply.
type Option func(*settings)

type settings struct {
	logger     *log.Logger
	diag       observability.DiagnosticHooks
	thresholds Thresholds
}

// WithLogger sends diagnostics to l. Per-edge events log at debug level and
// per-pass summaries at warn level.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDiagnostics overrides the globally registered diagnostic hooks.
func WithDiagnostics(h observability.DiagnosticHooks) Option {
	return func(s *settings) {
		if h != nil {
			s.diag = h
		}
	}
}

// WithThresholds overrides the level-of-detail tier thresholds used by
// [Assemble]. Invalid thresholds are ignored.
func WithThresholds(t Thresholds) Option {
	return func(s *settings) {
		if t.Validate() == nil {
			s.thresholds = t
		}
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		diag:       observability.Diagnostics(),
		thresholds: DefaultThresholds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
