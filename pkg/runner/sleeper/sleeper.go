// Package sleeper is the example workload runner: it sleeps for a configured
// time and reports a passing result. It exercises the full agent plumbing
// without any external system.
package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/runner"

	"github.com/pkg/errors"
)

const defaultDuration = 10 * time.Second

// Config is the runner's declared configuration.
type Config struct {
	// Duration is how long the workload sleeps, in time.ParseDuration form.
	Duration string `json:"duration"`
}

type Sleeper struct {
	log      logging.Logger
	duration time.Duration
}

var _ runner.Runner = (*Sleeper)(nil)

// New builds the runner from its delivered configuration.
func New(log logging.Logger, configuration model.Configuration) (*Sleeper, error) {
	var config Config
	if len(configuration) > 0 {
		if err := json.Unmarshal(configuration, &config); err != nil {
			return nil, errors.WithMessage(err, "unable to decode sleep configuration")
		}
	}
	duration := defaultDuration
	if config.Duration != "" {
		parsed, err := time.ParseDuration(config.Duration)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to parse sleep duration %q", config.Duration)
		}
		duration = parsed
	}
	return &Sleeper{log: log, duration: duration}, nil
}

// Run sleeps for the configured duration, honoring cancellation.
func (s *Sleeper) Run(ctx context.Context) (model.TestResults, error) {
	s.log.WithField("duration", s.duration).Info("sleeping")
	timer := time.NewTimer(s.duration)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		return model.TestResults{Outcome: model.OutcomeTimeout},
			errors.Wrap(ctx.Err(), "interrupted while sleeping")
	}
	return model.TestResults{
		Outcome:   model.OutcomePass,
		NumPassed: 1,
		OtherInfo: fmt.Sprintf("slept %s", s.duration),
	}, nil
}

// Terminate has nothing to release; the sleep holds no external state.
func (s *Sleeper) Terminate(ctx context.Context) error {
	return nil
}
