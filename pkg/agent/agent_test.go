package agent

import (
	"context"
	"testing"

	"github.com/gthao313/bottlerocket-test-system/pkg/bootstrap"
	"github.com/gthao313/bottlerocket-test-system/pkg/client"
	"github.com/gthao313/bottlerocket-test-system/pkg/internal/testoutput"
	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/runner"

	"github.com/pkg/errors"
	"gotest.tools/assert"
)

type testClient struct {
	spec      model.TestSpec
	specErr   error
	startErr  error
	resultErr error
	errErr    error

	startCalls  int
	resultCalls int
	errCalls    int
	results     []model.TestResults
	reported    []error
}

var _ client.Client = (*testClient)(nil)

func (c *testClient) Spec(ctx context.Context) (model.TestSpec, error) {
	return c.spec, c.specErr
}

func (c *testClient) SendStarting(ctx context.Context) error {
	c.startCalls++
	return c.startErr
}

func (c *testClient) SendResults(ctx context.Context, results model.TestResults) error {
	c.resultCalls++
	if c.resultErr != nil {
		return c.resultErr
	}
	c.results = append(c.results, results)
	return nil
}

func (c *testClient) SendError(ctx context.Context, runErr error) error {
	c.errCalls++
	if c.errErr != nil {
		return c.errErr
	}
	c.reported = append(c.reported, runErr)
	return nil
}

type testRunner struct {
	results      model.TestResults
	runErr       error
	terminateErr error

	runCalls       int
	terminateCalls int
}

var _ runner.Runner = (*testRunner)(nil)

func (r *testRunner) Run(ctx context.Context) (model.TestResults, error) {
	r.runCalls++
	return r.results, r.runErr
}

func (r *testRunner) Terminate(ctx context.Context) error {
	r.terminateCalls++
	return r.terminateErr
}

func testAgent(t *testing.T) (*Agent, *testClient, *testRunner) {
	c := &testClient{}
	r := &testRunner{results: model.TestResults{Outcome: model.OutcomePass, NumPassed: 1}}
	a := &Agent{
		log:    testoutput.Logger(t, logging.New("agent-test")),
		client: c,
		runner: r,
	}
	return a, c, r
}

func testBootstrap() bootstrap.Data {
	return bootstrap.Data{Name: "sleep-run", Namespace: "testsys"}
}

func TestNewBuildsClientThenSpecThenRunner(t *testing.T) {
	var order []string
	c := &testClient{spec: model.TestSpec{Configuration: model.Configuration(`{"duration":"1ms"}`)}}
	r := &testRunner{}

	a, err := New(context.Background(), testoutput.Logger(t, logging.New("agent-test")), testBootstrap(),
		func(ctx context.Context, data bootstrap.Data) (client.Client, error) {
			order = append(order, "client")
			return c, nil
		},
		func(ctx context.Context, spec model.TestSpec) (runner.Runner, error) {
			order = append(order, "runner")
			assert.DeepEqual(t, spec, c.spec)
			return r, nil
		})
	assert.NilError(t, err)
	assert.Check(t, a != nil)
	assert.DeepEqual(t, order, []string{"client", "runner"})
}

func TestNewInvalidBootstrap(t *testing.T) {
	called := false
	_, err := New(context.Background(), testoutput.Logger(t, logging.New("agent-test")), bootstrap.Data{},
		func(ctx context.Context, data bootstrap.Data) (client.Client, error) {
			called = true
			return &testClient{}, nil
		},
		func(ctx context.Context, spec model.TestSpec) (runner.Runner, error) {
			called = true
			return &testRunner{}, nil
		})
	assert.ErrorContains(t, err, "invalid bootstrap data")
	assert.Check(t, !called)
}

func TestNewClientBuilderFails(t *testing.T) {
	_, err := New(context.Background(), testoutput.Logger(t, logging.New("agent-test")), testBootstrap(),
		func(ctx context.Context, data bootstrap.Data) (client.Client, error) {
			return nil, errors.New("no kubeconfig")
		},
		func(ctx context.Context, spec model.TestSpec) (runner.Runner, error) {
			t.Fatal("runner builder must not run")
			return nil, nil
		})
	assert.ErrorContains(t, err, "unable to build control plane client")
}

func TestNewSpecFetchFails(t *testing.T) {
	c := &testClient{specErr: errors.New("spec not delivered")}
	runnerBuilt := false
	_, err := New(context.Background(), testoutput.Logger(t, logging.New("agent-test")), testBootstrap(),
		func(ctx context.Context, data bootstrap.Data) (client.Client, error) { return c, nil },
		func(ctx context.Context, spec model.TestSpec) (runner.Runner, error) {
			runnerBuilt = true
			return &testRunner{}, nil
		})
	assert.ErrorContains(t, err, "unable to fetch run spec")
	assert.Check(t, !runnerBuilt)
	// Construction failures are fatal and unreported; there is no connected
	// channel yet.
	assert.Equal(t, c.errCalls, 0)
}

func TestNewRunnerBuilderFails(t *testing.T) {
	c := &testClient{}
	_, err := New(context.Background(), testoutput.Logger(t, logging.New("agent-test")), testBootstrap(),
		func(ctx context.Context, data bootstrap.Data) (client.Client, error) { return c, nil },
		func(ctx context.Context, spec model.TestSpec) (runner.Runner, error) {
			return nil, errors.New("bad configuration")
		})
	assert.ErrorContains(t, err, "unable to build test runner")
	assert.Equal(t, c.errCalls, 0)
}

func TestRunHappyPath(t *testing.T) {
	a, c, r := testAgent(t)

	assert.NilError(t, a.Run(context.Background()))
	assert.Equal(t, c.startCalls, 1)
	assert.Equal(t, len(c.results), 1)
	assert.Equal(t, c.results[0].Outcome, model.OutcomePass)
	assert.Equal(t, r.terminateCalls, 1)
	assert.Equal(t, c.errCalls, 0)
}

func TestRunStartingSendFails(t *testing.T) {
	a, c, r := testAgent(t)
	c.startErr = errors.New("apiserver unreachable")

	err := a.Run(context.Background())
	assert.ErrorContains(t, err, "unable to send starting notification")
	// Nothing has executed, so nothing is reported or terminated.
	assert.Equal(t, r.runCalls, 0)
	assert.Equal(t, r.terminateCalls, 0)
	assert.Equal(t, c.errCalls, 0)
}

func TestRunRunnerFails(t *testing.T) {
	a, c, r := testAgent(t)
	r.runErr = errors.New("workload crashed")

	err := a.Run(context.Background())
	assert.ErrorContains(t, err, "workload crashed")
	assert.Equal(t, c.errCalls, 1)
	assert.ErrorContains(t, c.reported[0], "test runner failed")
	assert.Equal(t, r.terminateCalls, 1)
	assert.Equal(t, len(c.results), 0)
}

func TestRunResultSendFails(t *testing.T) {
	a, c, r := testAgent(t)
	c.resultErr = errors.New("apiserver unreachable")

	err := a.Run(context.Background())
	assert.ErrorContains(t, err, "unable to send test results")
	// The send is not retried and the failure is reported once.
	assert.Equal(t, c.resultCalls, 1)
	assert.Equal(t, c.errCalls, 1)
	assert.Equal(t, r.terminateCalls, 1)
}

func TestRunTerminateFails(t *testing.T) {
	a, c, r := testAgent(t)
	r.terminateErr = errors.New("leaked pod")

	err := a.Run(context.Background())
	assert.ErrorContains(t, err, "unable to terminate test runner")
	// The successful outcome was already delivered before terminate ran.
	assert.Equal(t, len(c.results), 1)
	assert.Equal(t, c.errCalls, 1)
	assert.Equal(t, r.terminateCalls, 1)
}

// Every failure injection holds the same invariants: Run returns an error,
// at most one best effort notification follows the failed send, at most one
// outcome is ever delivered, and nothing panics.
func TestRunNotificationMatrix(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *testClient, r *testRunner)
		wantErr string
	}{
		{"starting-send-fails", func(c *testClient, r *testRunner) {
			c.startErr = errors.New("refused")
		}, "unable to send starting notification"},
		{"runner-fails", func(c *testClient, r *testRunner) {
			r.runErr = errors.New("workload crashed")
		}, "workload crashed"},
		{"runner-and-error-send-fail", func(c *testClient, r *testRunner) {
			r.runErr = errors.New("workload crashed")
			c.errErr = errors.New("refused")
		}, "workload crashed"},
		{"runner-and-terminate-fail", func(c *testClient, r *testRunner) {
			r.runErr = errors.New("workload crashed")
			r.terminateErr = errors.New("leaked pod")
		}, "workload crashed"},
		{"result-send-fails", func(c *testClient, r *testRunner) {
			c.resultErr = errors.New("refused")
		}, "unable to send test results"},
		{"result-and-error-send-fail", func(c *testClient, r *testRunner) {
			c.resultErr = errors.New("refused")
			c.errErr = errors.New("refused")
		}, "unable to send test results"},
		{"terminate-fails", func(c *testClient, r *testRunner) {
			r.terminateErr = errors.New("leaked pod")
		}, "unable to terminate test runner"},
		{"terminate-and-error-send-fail", func(c *testClient, r *testRunner) {
			r.terminateErr = errors.New("leaked pod")
			c.errErr = errors.New("refused")
		}, "unable to terminate test runner"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, c, r := testAgent(t)
			tc.mutate(c, r)

			err := a.Run(context.Background())
			assert.ErrorContains(t, err, tc.wantErr)
			assert.Check(t, c.resultCalls <= 1, "outcome send attempted more than once")
			assert.Check(t, len(c.results) <= 1, "more than one outcome delivered")
			assert.Check(t, c.errCalls <= 1, "more than one best effort notification")
			assert.Check(t, r.runCalls <= 1)
		})
	}
}
