package model

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Configuration carries provider or runner specific parameters. The framework
// treats it as opaque; the component that declared it decodes it.
type Configuration = json.RawMessage

// TestSpec is the run input delivered once to a test agent.
type TestSpec struct {
	// Configuration is handed to the runner's constructor.
	Configuration Configuration `json:"configuration,omitempty"`
	// Secrets names credential material by purpose. Only names travel
	// through the framework; the bytes are resolved at the edge.
	Secrets map[string]SecretName `json:"secrets,omitempty"`
}

// ResourceSpec is the run input delivered once to a resource agent.
type ResourceSpec struct {
	// Configuration is handed to the provider's constructor and create call.
	Configuration Configuration `json:"configuration,omitempty"`
	// Secrets names credential material by purpose.
	Secrets map[string]SecretName `json:"secrets,omitempty"`
	// CreationPolicy tells the provider whether the external resource is
	// expected to exist already.
	CreationPolicy CreationPolicy `json:"creationPolicy,omitempty"`
	// AssumeRole optionally names an identity the provider should act as.
	// Providers record it in their memo before any external call so a later
	// destroy can reuse it.
	AssumeRole string `json:"assumeRole,omitempty"`
}

// Action is the verb a resource agent was scheduled to perform.
type Action string

const (
	ActionCreate  Action = "create"
	ActionDestroy Action = "destroy"
)

// ParseAction maps bootstrap input onto an Action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(s)) {
	case ActionCreate:
		return ActionCreate, nil
	case ActionDestroy:
		return ActionDestroy, nil
	}
	return "", errors.Errorf("unrecognized action %q, want %q or %q", s, ActionCreate, ActionDestroy)
}
