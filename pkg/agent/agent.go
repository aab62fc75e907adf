// Package agent drives one test workload from construction to termination,
// guaranteeing the control plane learns the outcome or, failing that, that
// the failure is logged locally.
package agent

import (
	"context"

	"github.com/gthao313/bottlerocket-test-system/pkg/bootstrap"
	"github.com/gthao313/bottlerocket-test-system/pkg/client"
	"github.com/gthao313/bottlerocket-test-system/pkg/internal/logfields"
	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/runner"

	"github.com/pkg/errors"
)

// ClientBuilder constructs the control plane client from bootstrap data.
type ClientBuilder func(ctx context.Context, data bootstrap.Data) (client.Client, error)

// RunnerBuilder constructs the workload runner from the delivered spec.
type RunnerBuilder func(ctx context.Context, spec model.TestSpec) (runner.Runner, error)

// Agent sequences one workload run: starting notification, execution,
// result hand-off, termination. Failures in any phase after the first are
// converted into a best effort notification before the error is returned.
type Agent struct {
	log    logging.Logger
	client client.Client
	runner runner.Runner
}

// New wires up an Agent. The client comes up first, the run spec is fetched
// through it, and the runner is built from that spec. Until all of that
// works there is no connected channel to report through, so a failure here
// is fatal and unreported; it propagates to process exit.
func New(ctx context.Context, log logging.Logger, data bootstrap.Data, newClient ClientBuilder, newRunner RunnerBuilder) (*Agent, error) {
	if err := data.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid bootstrap data")
	}
	if newClient == nil || newRunner == nil {
		return nil, errors.New("client and runner builders must be provided")
	}
	c, err := newClient(ctx, data)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to build control plane client")
	}
	spec, err := c.Spec(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to fetch run spec")
	}
	r, err := newRunner(ctx, spec)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to build test runner")
	}
	return &Agent{log: log, client: c, runner: r}, nil
}

// Run drives the workload once. No phase is retried and at most one outcome
// notification is ever delivered.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.client.SendStarting(ctx); err != nil {
		// Nothing has executed yet, so nothing is owed; abort.
		return errors.WithMessage(err, "unable to send starting notification")
	}

	results, runErr := a.runner.Run(ctx)
	if runErr != nil {
		runErr = errors.WithMessage(runErr, "test runner failed")
		a.sendErrorBestEffort(ctx, runErr)
		a.terminateBestEffort(ctx)
		return runErr
	}
	a.log.WithFields(logfields.Results(results)).Info("test run finished")

	if err := a.client.SendResults(ctx, results); err != nil {
		// The outcome is lost to the control plane; the process must exit
		// nonzero so a supervisor can react.
		err = errors.WithMessage(err, "unable to send test results")
		a.sendErrorBestEffort(ctx, err)
		a.terminateBestEffort(ctx)
		return err
	}

	if err := a.runner.Terminate(ctx); err != nil {
		a.log.WithError(err).Error("unable to terminate test runner")
		err = errors.WithMessage(err, "unable to terminate test runner")
		a.sendErrorBestEffort(ctx, err)
		return err
	}
	return nil
}

// sendErrorBestEffort reports a failure to the control plane without
// letting the report's own failure alter control flow.
func (a *Agent) sendErrorBestEffort(ctx context.Context, runErr error) {
	if err := a.client.SendError(ctx, runErr); err != nil {
		a.log.WithError(err).Errorf("unable to send error message %q to control plane", runErr)
	}
}

// terminateBestEffort releases the runner without letting a release failure
// alter control flow.
func (a *Agent) terminateBestEffort(ctx context.Context) {
	if err := a.runner.Terminate(ctx); err != nil {
		a.log.WithError(err).Error("unable to terminate test runner")
	}
}
