package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// splitHook directs matched levels to its configured output.
type splitHook struct {
	output io.Writer
	levels []logrus.Level
}

func (h *splitHook) Levels() []logrus.Level {
	return h.levels
}

func (h *splitHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	_, err = h.output.Write([]byte(line))
	return err
}

// SplitOutput dispatches logging output instead of writing all levels'
// messages to one stream: errors and worse go to stderr, the rest to stdout.
func SplitOutput() Setter {
	return func(l *logrus.Logger) error {
		l.SetOutput(io.Discard)
		l.AddHook(&splitHook{os.Stdout, []logrus.Level{
			logrus.WarnLevel, logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel}})
		l.AddHook(&splitHook{os.Stderr, []logrus.Level{
			logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}})
		return nil
	}
}
