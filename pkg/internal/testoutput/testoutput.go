// Package testoutput routes logger output through the testing facade so log
// lines interleave with the owning test's output and disappear on success.
package testoutput

import (
	"testing"

	"github.com/gthao313/bottlerocket-test-system/pkg/logging"
	"github.com/sirupsen/logrus"
)

// Logger redirects logger to t.Logf at debug level and returns it. Do not
// share the result across parallel tests; the underlying root logger is
// process wide and lines would land on whichever test attached last.
func Logger(t testing.TB, logger logging.Logger) logging.Logger {
	l := logger.WithFields(logrus.Fields{})
	l.Logger.SetOutput(&tWriter{t})
	l.Logger.SetLevel(logrus.DebugLevel)
	return l
}

type tWriter struct {
	t testing.TB
}

func (w *tWriter) Write(p []byte) (n int, err error) {
	w.t.Logf("%s", p)
	return len(p), nil
}
