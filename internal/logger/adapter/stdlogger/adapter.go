// Package stdlogger adapts the global zerolog logger to printf style logger interfaces,
// among them gorm's logger.Writer.
package stdlogger

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

// Logger forwards printf style calls to zerolog.
type Logger struct {
	component string
}

// New returns a Logger writing to the global zerolog logger.
func New() *Logger {
	return &Logger{}
}

// NewComponent returns a Logger tagging every line with a component field.
func NewComponent(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) event(e *zerolog.Event) *zerolog.Event {
	if l.component != "" {
		e = e.Str("component", l.component)
	}

	return e
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.event(log.Debug()).Msgf(format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.event(log.Info()).Msgf(format, args...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, args ...any) {
	l.event(log.Warn()).Msgf(format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.event(log.Error()).Msgf(format, args...)
}

// Printf implements gorm's logger.Writer. gorm already decides the level, so lines go out as info.
func (l *Logger) Printf(format string, args ...any) {
	l.event(log.Info()).Msg(fmt.Sprintf(format, args...))
}

// NewGorm returns a gorm logger writing through zerolog.
// Debug mode logs every statement, otherwise only slow queries and errors.
func NewGorm(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	return gormlogger.New(NewComponent("gorm"), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond, //nolint:mnd
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
