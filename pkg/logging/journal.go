package logging

import (
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Journal provides a Setter that copies entries to the systemd journal.
// Agents run as pods on systemd hosts; the socket may not be mounted, in
// which case the Setter reports that and the root logger is left unchanged.
func Journal() Setter {
	return func(l *logrus.Logger) error {
		if !journal.Enabled() {
			return errors.New("systemd journal socket is not available")
		}
		l.AddHook(&journalHook{})
		return nil
	}
}

type journalHook struct{}

var _ logrus.Hook = (*journalHook)(nil)

var priorities = map[logrus.Level]journal.Priority{
	logrus.PanicLevel: journal.PriCrit,
	logrus.FatalLevel: journal.PriCrit,
	logrus.ErrorLevel: journal.PriErr,
	logrus.WarnLevel:  journal.PriWarning,
	logrus.InfoLevel:  journal.PriInfo,
	logrus.DebugLevel: journal.PriDebug,
	logrus.TraceLevel: journal.PriDebug,
}

func (h *journalHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *journalHook) Fire(entry *logrus.Entry) error {
	vars := make(map[string]string, len(entry.Data))
	for k, v := range entry.Data {
		vars[journalField(k)] = fmt.Sprint(v)
	}
	return journal.Send(entry.Message, priorities[entry.Level], vars)
}

// journalField maps a logrus field name to a journal variable name, which
// must match [A-Z0-9_]+.
func journalField(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		default:
			return '_'
		}
	}, name)
}
