// Package log exports logging primitives used throughout brisk, backed by
// logrus. It mimics Go's own log package shape (Print/Printf/Fatal) plus
// the teacher's pre-allocated level loggers (Debug/Info/Error) so call
// sites read the same regardless of level.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the interface satisfied by each level's pre-allocated logger.
type Logger interface {
	Printf(format string, v ...interface{})
	Print(v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
}

var base = logrus.New()

func init() {
	base.Out = os.Stderr
	base.SetLevel(logrus.InfoLevel)
}

type logger struct {
	level logrus.Level
}

var _ Logger = (*logger)(nil)

// Pre-allocated loggers at each level, mirroring the teacher's Debug/Info/Error.
var (
	Debug = &logger{level: logrus.DebugLevel}
	Info  = &logger{level: logrus.InfoLevel}
	Error = &logger{level: logrus.ErrorLevel}
)

func (l *logger) Printf(format string, v ...interface{}) {
	base.WithField("brisk_level", l.level.String()).Logf(l.level, format, v...)
}

func (l *logger) Print(v ...interface{}) {
	base.WithField("brisk_level", l.level.String()).Log(l.level, v...)
}

func (l *logger) Fatal(v ...interface{}) {
	base.Log(logrus.FatalLevel, v...)
	os.Exit(1)
}

func (l *logger) Fatalf(format string, v ...interface{}) {
	base.Logf(logrus.FatalLevel, format, v...)
	os.Exit(1)
}

// SetLevel sets the minimum level that will be emitted.
func SetLevel(levelName string) error {
	lvl, err := logrus.ParseLevel(levelName)
	if err != nil {
		return err
	}
	base.SetLevel(lvl)
	return nil
}

// Printf logs at Info level, mirroring the package-level convenience
// functions of Go's own log package.
func Printf(format string, v ...interface{}) { Info.Printf(format, v...) }

// Print logs at Info level.
func Print(v ...interface{}) { Info.Print(v...) }

// Fatal logs at Fatal level and exits the process.
func Fatal(v ...interface{}) { Info.Fatal(v...) }

// Fatalf logs at Fatal level and exits the process.
func Fatalf(format string, v ...interface{}) { Info.Fatalf(format, v...) }

// WithField returns a logrus entry for structured logging call sites that
// want more than the levelled helpers above, e.g. attaching a worker ID.
func WithField(key string, value interface{}) *logrus.Entry {
	return base.WithField(key, value)
}
