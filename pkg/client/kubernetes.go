package client

import (
	"context"
	"encoding/json"

	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/gthao313/bottlerocket-test-system/pkg/marker"
	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider"

	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/kubernetes"
)

func k8sNotFound(err error) bool {
	return apierrors.IsNotFound(err)
}

// NewTestClient returns the ConfigMap backed Client for the named run.
func NewTestClient(log logging.Logger, kube kubernetes.Interface, namespace, name string) Client {
	return &testClient{runStore: newRunStore(log, kube, namespace, name, marker.AgentTypeTest)}
}

type testClient struct {
	runStore
}

var _ Client = (*testClient)(nil)

func (c *testClient) Spec(ctx context.Context) (model.TestSpec, error) {
	var spec model.TestSpec
	raw, err := c.specEntry(ctx)
	if err != nil {
		return spec, err
	}
	if err := json.Unmarshal(raw, &spec); err != nil {
		return spec, errors.WithMessage(err, "unable to decode test spec")
	}
	return spec, nil
}

func (c *testClient) SendStarting(ctx context.Context) error {
	return c.post(ctx, nil, map[string]string{marker.PhaseKey: marker.PhaseStarting})
}

func (c *testClient) SendResults(ctx context.Context, results model.TestResults) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return errors.WithMessage(err, "unable to encode test results")
	}
	return c.post(ctx,
		map[string]string{marker.DataResults: string(payload)},
		map[string]string{marker.PhaseKey: marker.PhaseDone})
}

func (c *testClient) SendError(ctx context.Context, runErr error) error {
	return c.post(ctx,
		map[string]string{marker.DataError: runErr.Error()},
		map[string]string{marker.PhaseKey: marker.PhaseError})
}

// NewResourceClient returns the ConfigMap backed ResourceClient for the
// named run.
func NewResourceClient(log logging.Logger, kube kubernetes.Interface, namespace, name string) ResourceClient {
	return &resourceClient{runStore: newRunStore(log, kube, namespace, name, marker.AgentTypeResource)}
}

type resourceClient struct {
	runStore
}

var _ ResourceClient = (*resourceClient)(nil)

func (c *resourceClient) GetInfo(ctx context.Context, into interface{}) error {
	raw, found, err := c.dataEntry(ctx, marker.DataMemo)
	if err != nil {
		return err
	}
	if !found || raw == "" {
		// Nothing has been checkpointed yet; callers keep their default.
		return nil
	}
	return errors.WithMessage(json.Unmarshal([]byte(raw), into), "unable to decode memo")
}

func (c *resourceClient) SendInfo(ctx context.Context, info interface{}) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return errors.WithMessage(err, "unable to encode memo")
	}
	if c.last.Unchanged(marker.DataMemo, string(payload)) {
		if logging.Debuggable {
			c.log.Debug("memo unchanged since last write, skipping")
		}
		return nil
	}
	if err := c.post(ctx, map[string]string{marker.DataMemo: string(payload)}, nil); err != nil {
		return err
	}
	c.last.Record(marker.DataMemo, string(payload))
	return nil
}

func (c *resourceClient) Spec(ctx context.Context) (model.ResourceSpec, error) {
	var spec model.ResourceSpec
	raw, err := c.specEntry(ctx)
	if err != nil {
		return spec, err
	}
	if err := json.Unmarshal(raw, &spec); err != nil {
		return spec, errors.WithMessage(err, "unable to decode resource spec")
	}
	return spec, nil
}

func (c *resourceClient) SendStarting(ctx context.Context, action model.Action) error {
	return c.post(ctx, nil, map[string]string{
		marker.PhaseKey:  marker.PhaseStarting,
		marker.ActionKey: string(action),
	})
}

func (c *resourceClient) SendResource(ctx context.Context, resource json.RawMessage) error {
	return c.post(ctx,
		map[string]string{marker.DataResource: string(resource)},
		nil)
}

func (c *resourceClient) Resource(ctx context.Context) (json.RawMessage, error) {
	raw, found, err := c.dataEntry(ctx, marker.DataResource)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

func (c *resourceClient) SendDone(ctx context.Context, action model.Action) error {
	return c.post(ctx, nil, map[string]string{
		marker.PhaseKey:  marker.PhaseDone,
		marker.ActionKey: string(action),
	})
}

func (c *resourceClient) SendError(ctx context.Context, action model.Action, provErr *provider.Error) error {
	return c.post(ctx,
		map[string]string{marker.DataError: provErr.Error()},
		map[string]string{
			marker.PhaseKey:     marker.PhaseError,
			marker.ActionKey:    string(action),
			marker.ResourcesKey: string(provErr.Resources),
		})
}
