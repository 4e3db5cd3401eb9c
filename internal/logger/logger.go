// Package logger is a small leveled logger shared by every service binary.
// Each line carries the service name, a level and a component tag:
//
//	2026/01/02 15:04:05 [ticket] INFO  [KAFKA] published pnr=1a2b3c4d
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO ",
	LevelWarn:  "WARN ",
	LevelError: "ERROR",
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

type Logger struct {
	mu      sync.Mutex
	out     *log.Logger
	service string
	min     Level
}

// New writes to stderr. LOG_LEVEL=debug enables debug lines.
func New(service string) *Logger {
	l := NewWithWriter(service, os.Stderr)
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		l.min = LevelDebug
	}
	return l
}

func NewWithWriter(service string, w io.Writer) *Logger {
	return &Logger{
		out:     log.New(w, "", log.LstdFlags),
		service: service,
		min:     LevelInfo,
	}
}

// Nop discards everything; handy in tests.
func Nop() *Logger {
	return NewWithWriter("nop", io.Discard)
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.min = level
	l.mu.Unlock()
}

func (l *Logger) Debug(component, msg string) { l.write(LevelDebug, component, msg) }
func (l *Logger) Info(component, msg string)  { l.write(LevelInfo, component, msg) }
func (l *Logger) Warn(component, msg string)  { l.write(LevelWarn, component, msg) }
func (l *Logger) Error(component, msg string) { l.write(LevelError, component, msg) }

func (l *Logger) Debugf(component, format string, args ...any) {
	l.write(LevelDebug, component, fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(component, format string, args ...any) {
	l.write(LevelInfo, component, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(component, format string, args ...any) {
	l.write(LevelWarn, component, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(component, format string, args ...any) {
	l.write(LevelError, component, fmt.Sprintf(format, args...))
}

// Fatal logs at error level and exits the process.
func (l *Logger) Fatal(component, msg string) {
	l.write(LevelError, component, msg)
	os.Exit(1)
}

func (l *Logger) Fatalf(component, format string, args ...any) {
	l.Fatal(component, fmt.Sprintf(format, args...))
}

func (l *Logger) write(level Level, component, msg string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.min {
		return
	}
	tag := levelColors[level].Sprint(levelNames[level])
	l.out.Printf("[%s] %s [%s] %s", l.service, tag, strings.ToUpper(component), msg)
}
