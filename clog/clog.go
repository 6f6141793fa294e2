// Package clog provides a small, optionally-silent logging shim used
// throughout hcfabric so components can log without forcing a concrete
// logging library on their callers.
package clog

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// LogProvider is the logging backend a Clog delegates to.
type LogProvider interface {
	Critical(format string, v ...interface{})
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Clog is a cheap-to-copy logging handle that can be switched on or off
// at runtime without touching call sites.
type Clog struct {
	provider LogProvider
	has      uint32 // 1: enabled, 0: disabled
}

// NewLogger returns a Clog backed by a logrus.Logger tagged with prefix.
func NewLogger(prefix string) Clog {
	l := logrus.New()
	return Clog{
		provider: &logrusProvider{entry: l.WithField("component", prefix)},
	}
}

// LogMode enables or disables log output.
func (sf *Clog) LogMode(enable bool) {
	if enable {
		atomic.StoreUint32(&sf.has, 1)
	} else {
		atomic.StoreUint32(&sf.has, 0)
	}
}

// SetLogProvider overrides the logging backend.
func (sf *Clog) SetLogProvider(p LogProvider) {
	if p != nil {
		sf.provider = p
	}
}

// Critical logs a CRITICAL level message.
func (sf Clog) Critical(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Critical(format, v...)
	}
}

// Error logs an ERROR level message.
func (sf Clog) Error(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Error(format, v...)
	}
}

// Warn logs a WARN level message.
func (sf Clog) Warn(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Warn(format, v...)
	}
}

// Debug logs a DEBUG level message.
func (sf Clog) Debug(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Debug(format, v...)
	}
}

// logrusProvider is the default LogProvider, backed by logrus.
type logrusProvider struct {
	entry *logrus.Entry
}

var _ LogProvider = (*logrusProvider)(nil)

func (sf *logrusProvider) Critical(format string, v ...interface{}) {
	sf.entry.WithField("level", "critical").Errorf(format, v...)
}

func (sf *logrusProvider) Error(format string, v ...interface{}) {
	sf.entry.Errorf(format, v...)
}

func (sf *logrusProvider) Warn(format string, v ...interface{}) {
	sf.entry.Warnf(format, v...)
}

func (sf *logrusProvider) Debug(format string, v ...interface{}) {
	sf.entry.Debugf(format, v...)
}
