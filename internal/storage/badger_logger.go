package storage

import (
	"fmt"
	"strings"

	"github.com/annel0/veinminer/internal/logging"
)

// badgerLogger направляет сообщения BadgerDB в логгер компонента.
// Info и Debug badger пишет очень часто, поэтому они уходят на TRACE.
type badgerLogger struct {
	l *logging.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error("badger: %s", trimNewline(format, args))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn("badger: %s", trimNewline(format, args))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Trace("badger: %s", trimNewline(format, args))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Trace("badger: %s", trimNewline(format, args))
}

func trimNewline(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
