// Package memos provides fixtures shared by provider and driver tests: spec
// builders and an in-memory info channel.
package memos

import (
	"context"
	"encoding/json"

	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider"

	"github.com/pkg/errors"
)

// ResourceSpec builds a spec with sane defaults, adjusted by options.
func ResourceSpec(opts ...func(*model.ResourceSpec)) model.ResourceSpec {
	s := model.ResourceSpec{
		Configuration:  json.RawMessage(`{}`),
		CreationPolicy: model.CreationPolicyCreate,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func WithPolicy(p model.CreationPolicy) func(*model.ResourceSpec) {
	return func(s *model.ResourceSpec) {
		s.CreationPolicy = p
	}
}

func WithConfiguration(raw string) func(*model.ResourceSpec) {
	return func(s *model.ResourceSpec) {
		s.Configuration = json.RawMessage(raw)
	}
}

func WithSecret(purpose, name string) func(*model.ResourceSpec) {
	return func(s *model.ResourceSpec) {
		if s.Secrets == nil {
			s.Secrets = map[string]model.SecretName{}
		}
		s.Secrets[purpose] = model.SecretName(name)
	}
}

func WithAssumeRole(role string) func(*model.ResourceSpec) {
	return func(s *model.ResourceSpec) {
		s.AssumeRole = role
	}
}

// Store is an in-memory provider.InfoClient. It keeps every sent payload in
// order so tests can assert on checkpoint sequencing, and can be told to
// fail reads or a specific send.
type Store struct {
	// Sent holds the JSON snapshots in send order.
	Sent []string
	// GetErr fails every GetInfo when set.
	GetErr error
	// SendErr fails every SendInfo when set.
	SendErr error
	// FailOnSend fails the Nth SendInfo call (1-based) when nonzero.
	FailOnSend int

	sends int
}

var _ provider.InfoClient = (*Store)(nil)

func (s *Store) GetInfo(ctx context.Context, into interface{}) error {
	if s.GetErr != nil {
		return s.GetErr
	}
	if len(s.Sent) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(s.Sent[len(s.Sent)-1]), into)
}

func (s *Store) SendInfo(ctx context.Context, info interface{}) error {
	s.sends++
	if s.SendErr != nil {
		return s.SendErr
	}
	if s.FailOnSend != 0 && s.sends == s.FailOnSend {
		return errors.Errorf("info channel refused send %d", s.sends)
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	s.Sent = append(s.Sent, string(payload))
	return nil
}

// Last decodes the most recent snapshot into the value at into, reporting
// whether anything was ever sent.
func (s *Store) Last(into interface{}) (bool, error) {
	if len(s.Sent) == 0 {
		return false, nil
	}
	return true, json.Unmarshal([]byte(s.Sent[len(s.Sent)-1]), into)
}
