package logfields

import (
	"github.com/gthao313/bottlerocket-test-system/pkg/model"
	"github.com/gthao313/bottlerocket-test-system/pkg/provider"

	"github.com/sirupsen/logrus"
)

// Results formats a run's results for log lines.
func Results(r model.TestResults) logrus.Fields {
	return logrus.Fields{
		"outcome": r.Outcome,
		"passed":  r.NumPassed,
		"failed":  r.NumFailed,
		"skipped": r.NumSkipped,
	}
}

// Provisioning formats a classified provisioning failure for log lines.
func Provisioning(err *provider.Error) logrus.Fields {
	return logrus.Fields{
		"resources": err.Resources,
		"error":     err.Error(),
	}
}
