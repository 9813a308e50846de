package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/kgen/internal/defconfig"
	"github.com/roach88/kgen/internal/resolver"
	"github.com/roach88/kgen/internal/schema"
	"github.com/roach88/kgen/internal/target"
)

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sends load and resolution diagnostics to logger. Logs are
// discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// Run resolves the scenario's target and evaluates its assertions.
//
// Execution flow:
// 1. Build the target and load the schema
// 2. Take overrides inline from the scenario or from the board's defconfig
// 3. Resolve and emit flags and constants
// 4. Evaluate assertions into the result
//
// A returned error means the scenario could not run at all; assertion
// failures are reported through Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	tc, err := target.New(scenario.Kconfig, scenario.Board, scenario.BuildType)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	s, err := schema.Load(tc, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	var overrides resolver.Overrides
	if scenario.Overrides != nil {
		overrides = defconfig.Overrides(scenario.Overrides)
	} else {
		file, err := defconfig.Load(tc.OverridePath(), cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		overrides = file
	}

	res := resolver.Resolve(tc, s, overrides, resolver.WithLogger(cfg.logger))

	result := NewResult(res.Mapping)
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
