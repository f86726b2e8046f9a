/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

const (
	OFF      Level = 0
	DEBUG    Level = 1
	INFO     Level = 2
	WARN     Level = 3
	ERROR    Level = 4
	CRITICAL Level = 5
	FATAL    Level = 6
)

const (
	maxAppname  = 48
	maxHostname = 255
)

var (
	ErrNotOpen      = errors.New("Logger is not open")
	ErrInvalidLevel = errors.New("Log level is invalid")
	ErrNilWriter    = errors.New("Writer is nil")
)

type Level int

// Logger is a leveled logger emitting RFC5424 lines to one or more writers.
// All methods are safe for concurrent use.
type Logger struct {
	mtx      sync.Mutex
	wtrs     []io.WriteCloser
	lvl      Level
	hot      bool
	hostname string
	appname  string
}

// NewFile creates a new logger appending to the named file.
// The file is created if it does not exist, it is safe to hand
// NewFile an existing log.
func NewFile(f string) (*Logger, error) {
	fout, err := os.OpenFile(f, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0660)
	if err != nil {
		return nil, err
	}
	return New(fout), nil
}

// New creates a new logger with the given writer at log level INFO
func New(wtr io.WriteCloser) (l *Logger) {
	l = &Logger{
		wtrs: []io.WriteCloser{wtr},
		lvl:  INFO,
		hot:  true,
	}
	l.hostname, _ = os.Hostname()
	if len(l.hostname) > maxHostname {
		l.hostname = l.hostname[0:maxHostname]
	}
	if args := os.Args; len(args) > 0 {
		exe := filepath.Base(args[0])
		if ext := filepath.Ext(exe); len(ext) > 0 && len(ext) < len(exe) {
			exe = strings.TrimSuffix(exe, ext)
		}
		if len(exe) > maxAppname {
			exe = exe[0:maxAppname]
		}
		l.appname = exe
	}
	return
}

func NewDiscardLogger() *Logger {
	var dc discardCloser
	return New(dc)
}

// AddWriter adds a writer which will get all log lines as they are handled.
func (l *Logger) AddWriter(wtr io.WriteCloser) error {
	if wtr == nil {
		return ErrNilWriter
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err := l.ready(); err != nil {
		return err
	}
	l.wtrs = append(l.wtrs, wtr)
	return nil
}

// Close closes the logger and all currently associated writers
func (l *Logger) Close() (err error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err = l.ready(); err != nil {
		return
	}
	l.hot = false
	for i := range l.wtrs {
		if lerr := l.wtrs[i].Close(); lerr != nil {
			err = lerr
		}
	}
	return
}

// SetLevelString sets the log level from its name, so a config file
// value can be handed in directly
func (l *Logger) SetLevelString(s string) error {
	lvl, err := LevelFromString(s)
	if err != nil {
		return err
	}
	return l.SetLevel(lvl)
}

// SetLevel sets the log level, OFF disables logging and any call
// below the current level is not logged
func (l *Logger) SetLevel(lvl Level) error {
	if !lvl.Valid() {
		return ErrInvalidLevel
	}
	l.mtx.Lock()
	l.lvl = lvl
	l.mtx.Unlock()
	return nil
}

func (l *Logger) GetLevel() Level {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.lvl
}

func (l *Logger) Debugf(f string, args ...interface{}) error {
	return l.outputf(DEBUG, f, args...)
}

func (l *Logger) Infof(f string, args ...interface{}) error {
	return l.outputf(INFO, f, args...)
}

func (l *Logger) Warnf(f string, args ...interface{}) error {
	return l.outputf(WARN, f, args...)
}

func (l *Logger) Errorf(f string, args ...interface{}) error {
	return l.outputf(ERROR, f, args...)
}

func (l *Logger) Criticalf(f string, args ...interface{}) error {
	return l.outputf(CRITICAL, f, args...)
}

// Fatalf writes a log and issues an os.Exit(-1)
func (l *Logger) Fatalf(f string, args ...interface{}) {
	l.FatalfCode(-1, f, args...)
}

// FatalfCode is identical to Fatalf, except it allows for controlling the exit code
func (l *Logger) FatalfCode(code int, f string, args ...interface{}) {
	l.outputf(FATAL, f, args...)
	os.Exit(code)
}

func (l *Logger) ready() error {
	if !l.hot || len(l.wtrs) == 0 {
		return ErrNotOpen
	}
	return nil
}

func (l *Logger) outputf(lvl Level, f string, args ...interface{}) (err error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.lvl == OFF || lvl < l.lvl {
		return
	}
	if err = l.ready(); err != nil {
		return
	}
	m := rfc5424.Message{
		Priority:  lvl.priority(),
		Timestamp: time.Now(),
		Hostname:  l.hostname,
		AppName:   l.appname,
		Message:   []byte(strings.TrimRight(fmt.Sprintf(f, args...), "\n\t\r")),
	}
	var b []byte
	if b, err = m.MarshalBinary(); err != nil {
		return
	}
	for _, w := range l.wtrs {
		if _, lerr := w.Write(append(b, '\n')); lerr != nil {
			err = lerr
		}
	}
	return
}

func (l Level) String() string {
	switch l {
	case OFF:
		return `OFF`
	case DEBUG:
		return `DEBUG`
	case INFO:
		return `INFO`
	case WARN:
		return `WARN`
	case ERROR:
		return `ERROR`
	case CRITICAL:
		return `CRITICAL`
	case FATAL:
		return `FATAL`
	}
	return `UNKNOWN`
}

func (l Level) Valid() bool {
	return l >= OFF && l <= FATAL
}

func (l Level) priority() rfc5424.Priority {
	switch l {
	case DEBUG:
		return rfc5424.User | rfc5424.Debug
	case INFO:
		return rfc5424.User | rfc5424.Info
	case WARN:
		return rfc5424.User | rfc5424.Warning
	case ERROR:
		return rfc5424.User | rfc5424.Error
	case CRITICAL:
		return rfc5424.User | rfc5424.Crit
	case FATAL:
		return rfc5424.User | rfc5424.Emergency
	}
	return rfc5424.User | rfc5424.Debug
}

// LevelFromString maps a level name to its Level, case-insensitive
func LevelFromString(s string) (l Level, err error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case `OFF`:
		l = OFF
	case `DEBUG`:
		l = DEBUG
	case `INFO`:
		l = INFO
	case `WARN`:
		l = WARN
	case `ERROR`:
		l = ERROR
	case `CRITICAL`:
		l = CRITICAL
	case `FATAL`:
		l = FATAL
	default:
		err = ErrInvalidLevel
	}
	return
}

type discardCloser bool

func (dc discardCloser) Write(b []byte) (int, error) {
	return len(b), nil
}

func (dc discardCloser) Close() error {
	return nil
}
