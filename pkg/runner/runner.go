// Package runner defines the contract workload executors implement for the
// test agent.
package runner

import (
	"context"

	"github.com/gthao313/bottlerocket-test-system/pkg/model"
)

// Runner executes one test workload. Run blocks until the workload finishes
// and reports its results. Terminate releases whatever Run left behind and
// must be safe to call after a failed Run.
type Runner interface {
	Run(ctx context.Context) (model.TestResults, error)
	Terminate(ctx context.Context) error
}
