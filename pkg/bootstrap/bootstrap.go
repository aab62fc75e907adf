// Package bootstrap carries the process' startup configuration: which run
// this agent serves, where the run objects live, and which action a resource
// agent performs. Values arrive from flags and environment with an optional
// TOML file underneath; none of it is part of the run spec, which is
// delivered through the control plane after bootstrap.
package bootstrap

import (
	"os"

	"github.com/gthao313/bottlerocket-test-system/pkg/marker"
	"github.com/gthao313/bottlerocket-test-system/pkg/model"

	toml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Data is everything an agent needs before it can reach the control plane.
type Data struct {
	// Name identifies the run; the run's ConfigMap shares it.
	Name string `toml:"name"`
	// Namespace holds the run objects.
	Namespace string `toml:"namespace"`
	// Action is the verb for resource agents, "create" or "destroy". Test
	// agents ignore it.
	Action string `toml:"action"`
}

// FromFile reads a TOML bootstrap file.
func FromFile(path string) (Data, error) {
	var data Data
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, errors.WithMessagef(err, "unable to read bootstrap file %q", path)
	}
	if err := toml.Unmarshal(raw, &data); err != nil {
		return data, errors.WithMessagef(err, "unable to parse bootstrap file %q", path)
	}
	return data, nil
}

// Merge fills d's zero fields from other and returns the result. d wins
// where both are set, letting flag and environment values override the file.
func (d Data) Merge(other Data) Data {
	if d.Name == "" {
		d.Name = other.Name
	}
	if d.Namespace == "" {
		d.Namespace = other.Namespace
	}
	if d.Action == "" {
		d.Action = other.Action
	}
	return d
}

// WithDefaults fills in what can be defaulted.
func (d Data) WithDefaults() Data {
	if d.Namespace == "" {
		d.Namespace = marker.DefaultNamespace
	}
	return d
}

// Validate checks the data is complete enough to bootstrap an agent.
func (d Data) Validate() error {
	if d.Name == "" {
		return errors.New("a run name is required")
	}
	if d.Namespace == "" {
		return errors.New("a namespace is required")
	}
	return nil
}

// ResourceAction parses the configured action for a resource agent.
func (d Data) ResourceAction() (model.Action, error) {
	return model.ParseAction(d.Action)
}

// ReadFileIfSet loads path when it is nonempty, otherwise returns zero Data
// so the caller's flags stand alone.
func ReadFileIfSet(path string) (Data, error) {
	if path == "" {
		return Data{}, nil
	}
	if _, err := os.Stat(path); err != nil {
		return Data{}, errors.WithMessagef(err, "bootstrap file %q is not readable", path)
	}
	return FromFile(path)
}
