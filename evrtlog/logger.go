// Package evrtlog adapts logiface, backed by the stumpy JSON encoder, to
// evrt.Logger.
package evrtlog

import (
	"io"
	"os"

	"github.com/go-evrt/evrt"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger wraps a logiface.Logger[*stumpy.Event] to satisfy evrt.Logger.
type Logger struct {
	l *logiface.Logger[*stumpy.Event]
}

// New builds a Logger writing newline-delimited JSON to w. A nil w
// defaults to os.Stderr.
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		l: stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		),
	}
}

func (lg *Logger) Debugf(format string, args ...any) { lg.l.Debug().Logf(format, args...) }
func (lg *Logger) Infof(format string, args ...any)  { lg.l.Info().Logf(format, args...) }
func (lg *Logger) Warnf(format string, args ...any)  { lg.l.Warning().Logf(format, args...) }
func (lg *Logger) Errorf(format string, args ...any) { lg.l.Err().Logf(format, args...) }

var _ evrt.Logger = (*Logger)(nil)
