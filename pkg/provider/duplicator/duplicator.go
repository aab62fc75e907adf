// Package duplicator is the reference Provider. It provisions nothing
// external; it duplicates its configuration into the created resource, with
// the memo store standing in for the external system. Every step of the
// checkpoint discipline runs for real, so the package doubles as a rehearsal
// target for the provisioning contract.
package duplicator

import (
	"context"
	"encoding/json"

	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider"
)

const (
	statusRecording   = "recording inputs"
	statusDuplicating = "duplicating"
	statusDuplicated  = "duplicated"
	statusDone        = "done"
	statusDestroyed   = "destroyed"
)

// Config is the duplicator's slice of the resource spec configuration.
type Config struct {
	// Info is the document to duplicate into the created resource. When
	// absent the whole configuration is duplicated.
	Info json.RawMessage `json:"info,omitempty"`
	// FailCreate forces the duplication step to fail, for rehearsing the
	// create failure paths.
	FailCreate bool `json:"failCreate,omitempty"`
	// FailDestroy forces the destruction step to fail. The knob is recorded
	// in the memo at create time and honored from there, never from the
	// spec, which a destroy run may not have.
	FailDestroy bool `json:"failDestroy,omitempty"`
}

// Memo is the duplicator's durable progress record.
type Memo struct {
	provider.Memo

	// Inputs recorded before any provisioning step.
	CreationPolicy model.CreationPolicy `json:"creationPolicy,omitempty"`
	AssumeRole     string               `json:"assumeRole,omitempty"`
	FailDestroy    bool                 `json:"failDestroy,omitempty"`

	// Document is set once duplication ran; Destroyed supersedes it rather
	// than unsetting it, keeping the memo monotonic.
	Document  json.RawMessage `json:"document,omitempty"`
	Destroyed bool            `json:"destroyed,omitempty"`
}

func (m Memo) documentExists() bool {
	return m.Document != nil && !m.Destroyed
}

// Resource is the created resource description.
type Resource struct {
	Document json.RawMessage `json:"document"`
}

// Duplicator implements provider.Provider.
type Duplicator struct {
	log logging.Logger
}

var _ provider.Provider = (*Duplicator)(nil)

func New(log logging.Logger) *Duplicator {
	return &Duplicator{log: log}
}

func configFrom(spec model.ResourceSpec) (Config, error) {
	var config Config
	if len(spec.Configuration) == 0 {
		return config, nil
	}
	err := json.Unmarshal(spec.Configuration, &config)
	return config, err
}

// Create duplicates the configured document. The sequence is the contract's:
// record inputs, resolve the creation policy against observed state, durably
// mark provisioning started, duplicate, read the result back fresh.
func (d *Duplicator) Create(ctx context.Context, spec model.ResourceSpec, info provider.InfoClient) (json.RawMessage, error) {
	config, err := configFrom(spec)
	if err != nil {
		return nil, provider.WrapError(err, provider.ResourcesClear, "unable to decode configuration")
	}

	var memo Memo
	if err := info.GetInfo(ctx, &memo); err != nil {
		return nil, provider.WrapError(err, provider.ResourcesUnknown, "unable to read memo")
	}

	// Capture intent first so a resumed destroy knows what policy and
	// credentials applied even if nothing below ever runs.
	memo.CurrentStatus = statusRecording
	memo.CreationPolicy = spec.CreationPolicy
	memo.AssumeRole = spec.AssumeRole
	memo.FailDestroy = config.FailDestroy
	if err := info.SendInfo(ctx, memo); err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to checkpoint inputs")
	}

	required, err := spec.CreationPolicy.CreationRequired(memo.documentExists())
	if err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "creation policy cannot be satisfied")
	}
	if !required {
		d.log.Info("existing document satisfies the creation policy, skipping duplication")
		return d.readBack(ctx, info)
	}

	// The durability marker goes out before the duplication step. Once this
	// write lands, every later process must assume a document may exist.
	memo.ProvisioningStarted = true
	memo.CurrentStatus = statusDuplicating
	if err := info.SendInfo(ctx, memo); err != nil {
		return nil, provider.WrapError(err, memo.CreateFailureResources(), "unable to checkpoint provisioning start")
	}

	if config.FailCreate {
		return nil, provider.NewError(memo.CreateFailureResources(), "duplication failed as configured")
	}

	document := config.Info
	if document == nil {
		document = spec.Configuration
	}
	if document == nil {
		document = json.RawMessage(`{}`)
	}
	memo.Document = document
	memo.Destroyed = false
	memo.CurrentStatus = statusDuplicated
	if err := info.SendInfo(ctx, memo); err != nil {
		return nil, provider.WrapError(err, provider.ResourcesRemaining, "unable to record the duplicated document")
	}
	d.log.Info("document duplicated")

	resource, err := d.readBack(ctx, info)
	if err != nil {
		return nil, err
	}

	memo.CurrentStatus = statusDone
	if err := info.SendInfo(ctx, memo); err != nil {
		return nil, provider.WrapError(err, provider.ResourcesRemaining, "unable to checkpoint completion")
	}
	return resource, nil
}

// readBack gathers the resource from a fresh store read rather than local
// memory; this process may not be the one that performed every step.
func (d *Duplicator) readBack(ctx context.Context, info provider.InfoClient) (json.RawMessage, error) {
	var memo Memo
	if err := info.GetInfo(ctx, &memo); err != nil {
		return nil, provider.WrapError(err, provider.ResourcesRemaining, "unable to read back the duplicated document")
	}
	if !memo.documentExists() {
		return nil, provider.NewError(memo.CreateFailureResources(), "no duplicated document was recorded")
	}
	resource, err := json.Marshal(Resource{Document: memo.Document})
	if err != nil {
		return nil, provider.WrapError(err, provider.ResourcesRemaining, "unable to encode the created resource")
	}
	return resource, nil
}

// Destroy supersedes the duplicated document. Destruction decisions come
// from the memo alone; spec and prior may be gone by the time a destroy run
// is scheduled.
func (d *Duplicator) Destroy(ctx context.Context, spec *model.ResourceSpec, prior json.RawMessage, info provider.InfoClient) error {
	var memo Memo
	if err := info.GetInfo(ctx, &memo); err != nil {
		return provider.WrapError(err, provider.ResourcesUnknown, "unable to read memo")
	}

	if !memo.ProvisioningStarted {
		d.log.Info("provisioning never started, nothing to destroy")
		return nil
	}

	if memo.FailDestroy {
		return provider.NewError(provider.ResourcesOrphaned, "destruction failed as configured")
	}

	memo.Destroyed = true
	memo.CurrentStatus = statusDestroyed
	if err := info.SendInfo(ctx, memo); err != nil {
		return provider.WrapError(err, provider.ResourcesOrphaned, "unable to destroy the duplicated document")
	}
	d.log.Info("document destroyed")
	return nil
}
