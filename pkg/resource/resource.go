// Package resource drives one provisioning action, create or destroy,
// from construction through completion, with the same reporting discipline
// the test agent applies to workload runs.
package resource

import (
	"context"

	"github.com/gthao313/bottlerocket-test-system/pkg/bootstrap"
	"github.com/gthao313/bottlerocket-test-system/pkg/client"
	"github.com/gthao313/bottlerocket-test-system/pkg/internal/logfields"
	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider"

	"github.com/pkg/errors"
)

// ClientBuilder constructs the control plane client from bootstrap data.
type ClientBuilder func(ctx context.Context, data bootstrap.Data) (client.ResourceClient, error)

// ProviderBuilder constructs the provider from the delivered spec. A destroy
// run may hand over a zero spec when the control plane no longer has one.
type ProviderBuilder func(ctx context.Context, spec model.ResourceSpec) (provider.Provider, error)

// Agent sequences one provisioning action. Provider failures are classified,
// reported best effort, and returned; the classification always travels with
// the error so the control plane learns what cleanup is owed.
type Agent struct {
	log      logging.Logger
	action   model.Action
	spec     model.ResourceSpec
	haveSpec bool
	client   client.ResourceClient
	provider provider.Provider
}

// New wires up an Agent. The client comes up first, the resource spec is
// fetched through it, and the provider is built from that spec. Failures
// here are fatal and unreported since no channel is connected yet. A destroy
// run tolerates a missing spec; the provider is expected to work from the
// memo alone.
func New(ctx context.Context, log logging.Logger, data bootstrap.Data, newClient ClientBuilder, newProvider ProviderBuilder) (*Agent, error) {
	if err := data.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid bootstrap data")
	}
	action, err := data.ResourceAction()
	if err != nil {
		return nil, errors.WithMessage(err, "invalid bootstrap data")
	}
	if newClient == nil || newProvider == nil {
		return nil, errors.New("client and provider builders must be provided")
	}
	c, err := newClient(ctx, data)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to build control plane client")
	}
	a := &Agent{log: log, action: action, client: c}
	spec, err := c.Spec(ctx)
	if err != nil {
		if action == model.ActionCreate {
			return nil, errors.WithMessage(err, "unable to fetch run spec")
		}
		log.WithError(err).Warn("run spec unavailable, destroy will rely on the memo")
	} else {
		a.spec = spec
		a.haveSpec = true
	}
	p, err := newProvider(ctx, a.spec)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to build provider")
	}
	a.provider = p
	return a, nil
}

// Run performs the configured action once.
func (a *Agent) Run(ctx context.Context) error {
	switch a.action {
	case model.ActionCreate:
		return a.create(ctx)
	case model.ActionDestroy:
		return a.destroy(ctx)
	}
	return errors.Errorf("unrecognized resource action %q", a.action)
}

func (a *Agent) create(ctx context.Context) error {
	if err := a.client.SendStarting(ctx, model.ActionCreate); err != nil {
		return errors.WithMessage(err, "unable to send starting notification")
	}

	resource, err := a.provider.Create(ctx, a.spec, a.client)
	if err != nil {
		provErr := provider.AsError(err)
		a.log.WithFields(logfields.Provisioning(provErr)).Error("resource creation failed")
		a.sendErrorBestEffort(ctx, model.ActionCreate, provErr)
		return provErr
	}
	a.log.Info("resource created")

	if err := a.client.SendResource(ctx, resource); err != nil {
		// The resource exists but its description is lost to the control
		// plane; a destroy pass can still find it through the memo.
		provErr := provider.WrapError(err, provider.ResourcesRemaining, "unable to record created resource")
		a.sendErrorBestEffort(ctx, model.ActionCreate, provErr)
		return provErr
	}
	if err := a.client.SendDone(ctx, model.ActionCreate); err != nil {
		provErr := provider.WrapError(err, provider.ResourcesRemaining, "unable to send completion notification")
		a.sendErrorBestEffort(ctx, model.ActionCreate, provErr)
		return provErr
	}
	return nil
}

func (a *Agent) destroy(ctx context.Context) error {
	if err := a.client.SendStarting(ctx, model.ActionDestroy); err != nil {
		return errors.WithMessage(err, "unable to send starting notification")
	}

	prior, err := a.client.Resource(ctx)
	if err != nil {
		// Unreadable is not absent. The provider destroys from its memo, so
		// keep going rather than strand the resource over a read failure.
		a.log.WithError(err).Warn("unable to read recorded resource, destroying from the memo alone")
		prior = nil
	}
	var spec *model.ResourceSpec
	if a.haveSpec {
		spec = &a.spec
	}

	if err := a.provider.Destroy(ctx, spec, prior, a.client); err != nil {
		provErr := provider.AsError(err)
		a.log.WithFields(logfields.Provisioning(provErr)).Error("resource destruction failed")
		a.sendErrorBestEffort(ctx, model.ActionDestroy, provErr)
		return provErr
	}
	a.log.Info("resource destroyed")

	if err := a.client.SendDone(ctx, model.ActionDestroy); err != nil {
		return errors.WithMessage(err, "unable to send completion notification")
	}
	return nil
}

// sendErrorBestEffort reports a classified failure without letting the
// report's own failure alter control flow.
func (a *Agent) sendErrorBestEffort(ctx context.Context, action model.Action, provErr *provider.Error) {
	if err := a.client.SendError(ctx, action, provErr); err != nil {
		a.log.WithError(err).Errorf("unable to send error message %q to control plane", provErr)
	}
}
