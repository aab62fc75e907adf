// Package provider defines the contract resource providers implement to
// create and destroy external resources on behalf of the control plane.
package provider

import (
	"context"
	"encoding/json"

	"github.com/gthao313/bottlerocket-test-system/pkg/model"
)

// InfoClient reads and writes the durable memo for one provisioning run.
// Implementations persist to an externally visible store; a write must be
// observable by the same process' subsequent reads.
type InfoClient interface {
	// GetInfo decodes the stored memo into the value at into. A memo that
	// was never written leaves into at its zero value.
	GetInfo(ctx context.Context, into interface{}) error
	// SendInfo stores info, replacing the previous memo.
	SendInfo(ctx context.Context, info interface{}) error
}

// Creator provisions the external resource described by a spec and returns
// its description, gathered by a fresh read back from the external system
// rather than from local memory.
//
// Create owes the caller the checkpoint discipline: the spec's policy and
// credential references are recorded in the memo before any external call,
// and ProvisioningStarted is checkpointed before external creation begins.
// Failures are returned as *Error so the cleanup obligation travels with
// them.
type Creator interface {
	Create(ctx context.Context, spec model.ResourceSpec, info InfoClient) (json.RawMessage, error)
}

// Destroyer removes whatever a previous Create may have left behind. A memo
// without ProvisioningStarted set means nothing external can exist and
// Destroy returns success without any external call. Credentials and
// identifiers come from the memo, never from spec or prior, which may be nil
// when the control plane no longer has them.
type Destroyer interface {
	Destroy(ctx context.Context, spec *model.ResourceSpec, prior json.RawMessage, info InfoClient) error
}

// Provider is the full provisioning contract.
type Provider interface {
	Creator
	Destroyer
}
