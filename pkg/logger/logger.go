// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

type Logger struct {
	prefix string
}

var (
	baseMu       sync.RWMutex
	baseLogger   = log.New(os.Stdout, "", log.LstdFlags)
	logFile      *os.File
	once         sync.Once
	debugEnabled bool
	debugMu      sync.RWMutex
)

// Init tees the base logger to stdout and logPath. Loggers created
// before Init pick up the file too. Debug is enabled when DEBUG is set.
func Init(logPath string) error {
	var err error
	once.Do(func() {
		if mkErr := os.MkdirAll(filepath.Dir(logPath), 0755); mkErr != nil {
			err = mkErr
			return
		}
		var f *os.File
		f, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return
		}
		setOutput(f)

		if os.Getenv("DEBUG") != "" {
			EnableDebug(true)
		}
	})
	return err
}

func setOutput(f *os.File) {
	baseMu.Lock()
	defer baseMu.Unlock()
	logFile = f
	baseLogger = log.New(io.MultiWriter(os.Stdout, f), "", log.LstdFlags)
}

// Close cleans up the log file (call on shutdown)
func Close() {
	baseMu.Lock()
	defer baseMu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
		baseLogger = log.New(os.Stdout, "", log.LstdFlags)
	}
}

// EnableDebug dynamically turns debug logging on/off
func EnableDebug(on bool) {
	debugMu.Lock()
	debugEnabled = on
	debugMu.Unlock()
}

func IsDebug() bool {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugEnabled
}

func New(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

func (l *Logger) print(level, msg string) {
	baseMu.RLock()
	defer baseMu.RUnlock()
	baseLogger.Printf("[%s] %s: %s", l.prefix, level, msg)
}

// caller formats the message with the file:line of whoever called the
// level method.
func caller(msg string) string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return msg
	}
	return fmt.Sprintf("(%s:%d) %s", filepath.Base(file), line, msg)
}

func (l *Logger) Info(fmtstr string, v ...any) {
	l.print("INFO", fmt.Sprintf(fmtstr, v...))
}

func (l *Logger) Warn(fmtstr string, v ...any) {
	l.print("WARN", fmt.Sprintf(fmtstr, v...))
}

func (l *Logger) Error(fmtstr string, v ...any) {
	l.print("ERROR", caller(fmt.Sprintf(fmtstr, v...)))
}

// Fatal logs and panics; service.Start turns the panic into an exit code.
func (l *Logger) Fatal(fmtstr string, v ...any) {
	formatted := fmt.Sprintf(fmtstr, v...)
	l.print("FATAL", caller(formatted))
	panic(formatted)
}

func (l *Logger) Debug(fmtstr string, v ...any) {
	if !IsDebug() {
		return
	}
	l.print("DEBUG", fmt.Sprintf(fmtstr, v...))
}
