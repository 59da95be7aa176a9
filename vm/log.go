package vm

import (
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// execLogger is the structured execution tracer. It is a thin wrapper
// around logrus, with the logger held as a value the Interpreter owns
// rather than a package-level global, so tests never fight over shared
// log state.
type execLogger struct {
	log *logrus.Logger
}

// newNopLogger returns a logger that discards everything, the default for
// an Interpreter that was not given an explicit log destination.
func newNopLogger() *execLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel + 1) // FatalLevel: filters out trace/error records
	l.Out = discardWriter{}
	return &execLogger{log: l}
}

// NewRotatingLogger builds a logger that writes TRACE/ERROR records through
// a daily-rotated file at dir/scriptvm.%Y%m%d.log, using
// lestrrat/go-file-rotatelogs for rotation and rifflock/lfshook to route
// logrus records to it by level. Pass the result to Interpreter.SetLogger.
func NewRotatingLogger(dir string, level logrus.Level) (*execLogger, error) {
	writer, err := rotatelogs.New(
		dir+"/scriptvm.%Y%m%d.log",
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetLevel(level)
	l.Out = discardWriter{}
	writerMap := lfshook.WriterMap{
		logrus.TraceLevel: writer,
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
	}
	l.Hooks.Add(lfshook.NewHook(writerMap, &logrus.JSONFormatter{}))
	return &execLogger{log: l}, nil
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (l *execLogger) trace(frameDepth int, op OpCode, pcBefore, pcAfter, evalDepth, altDepth, steps int) {
	l.log.WithFields(logrus.Fields{
		"frame":      frameDepth,
		"op":         op.String(),
		"pc_before":  pcBefore,
		"pc_after":   pcAfter,
		"eval_depth": evalDepth,
		"alt_depth":  altDepth,
		"steps":      steps,
	}).Trace("step")
}

func (l *execLogger) fault(frameDepth int, op OpCode, reason error, stackDump string) {
	l.log.WithFields(logrus.Fields{
		"frame":  frameDepth,
		"op":     op.String(),
		"reason": reason,
		"stack":  stackDump,
	}).Error("fault")
}
