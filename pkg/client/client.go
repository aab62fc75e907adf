// Package client connects agents to the control plane's durable store. All
// notifications an agent ever makes go through one of these interfaces.
package client

import (
	"context"
	"encoding/json"

	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider"
)

// Client is the test agent's channel to the control plane.
type Client interface {
	// Spec fetches the run input delivered by the control plane.
	Spec(ctx context.Context) (model.TestSpec, error)
	// SendStarting tells the control plane execution has begun.
	SendStarting(ctx context.Context) error
	// SendResults hands the run's outcome to the control plane.
	SendResults(ctx context.Context, results model.TestResults) error
	// SendError posts a reportable failure.
	SendError(ctx context.Context, runErr error) error
}

// ResourceClient is the resource agent's channel to the control plane. It
// embeds the provider's info channel since the memo lives in the same store.
type ResourceClient interface {
	provider.InfoClient

	// Spec fetches the run input delivered by the control plane.
	Spec(ctx context.Context) (model.ResourceSpec, error)
	// SendStarting tells the control plane which action has begun.
	SendStarting(ctx context.Context, action model.Action) error
	// SendResource hands over the created resource description.
	SendResource(ctx context.Context, resource json.RawMessage) error
	// Resource fetches the recorded resource description, nil if none was
	// ever recorded.
	Resource(ctx context.Context) (json.RawMessage, error)
	// SendDone marks the action complete.
	SendDone(ctx context.Context, action model.Action) error
	// SendError posts a classified provisioning failure.
	SendError(ctx context.Context, action model.Action, provErr *provider.Error) error
}
