package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	blue   = color.New(color.BgBlue).Add(color.FgWhite).Add(color.Bold).SprintFunc()
	cyan   = color.New(color.BgCyan).Add(color.FgWhite).Add(color.Bold).SprintFunc()
	yellow = color.New(color.BgYellow).Add(color.FgBlack).Add(color.Bold).SprintFunc()
	red    = color.New(color.BgRed).Add(color.FgWhite).Add(color.Bold).SprintFunc()
)

type Logger struct {
	mu     *sync.Mutex
	out    io.Writer
	prefix string
	debug  bool
}

// New returns a logger writing to stdout.
func New(debug bool) *Logger {
	return &Logger{mu: new(sync.Mutex), out: color.Output, debug: debug}
}

// NewWriter returns a logger writing to w. Colours follow color.NoColor.
func NewWriter(w io.Writer, debug bool) *Logger {
	return &Logger{mu: new(sync.Mutex), out: w, debug: debug}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{mu: new(sync.Mutex), out: io.Discard}
}

// With returns a logger sharing the output whose lines start with prefix.
func (logger *Logger) With(prefix string) *Logger {
	return &Logger{mu: logger.mu, out: logger.out, prefix: logger.prefix + "[" + prefix + "] ", debug: logger.DebugEnabled()}
}

func (logger *Logger) SetDebug(debug bool) {
	logger.mu.Lock()
	logger.debug = debug
	logger.mu.Unlock()
}

func (logger *Logger) DebugEnabled() bool {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	return logger.debug
}

func (logger *Logger) write(tag string, format string, a ...interface{}) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	fmt.Fprintf(logger.out, "%s %s%s\n", tag, logger.prefix, fmt.Sprintf(format, a...))
}

func (logger *Logger) Info(format string, a ...interface{}) {
	logger.write(blue("INFO"), format, a...)
}

func (logger *Logger) Debug(format string, a ...interface{}) {
	if !logger.DebugEnabled() {
		return
	}
	logger.write(cyan("DEBUG"), format, a...)
}

func (logger *Logger) Warn(format string, a ...interface{}) {
	logger.write(yellow("WARN"), format, a...)
}

func (logger *Logger) Error(format string, a ...interface{}) {
	logger.write(red("ERROR"), format, a...)
}

// Print writes a line without a level tag.
func (logger *Logger) Print(format string, a ...interface{}) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	fmt.Fprintf(logger.out, "%s%s\n", logger.prefix, fmt.Sprintf(format, a...))
}

// Fatal logs an error and exits the process.
func (logger *Logger) Fatal(format string, a ...interface{}) {
	logger.Error(format, a...)
	os.Exit(1)
}
