package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
)

type LogLevel int

const (
	// Levels ordered by verbosity (lower value = more verbose)
	LevelDebug LogLevel = iota
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelSuccess:
		return "SUCCESS"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the operator channel. All writes go through one mutex, so it can
// be shared by concurrent scanners.
type Logger struct {
	verbose bool
	silent  bool
	out     io.Writer
	mu      sync.Mutex
	now     func() time.Time

	debugColor   func(format string, a ...interface{}) string
	infoColor    func(format string, a ...interface{}) string
	warningColor func(format string, a ...interface{}) string
	errorColor   func(format string, a ...interface{}) string
	successColor func(format string, a ...interface{}) string
	timeColor    func(format string, a ...interface{}) string

	progressBar *ProgressBar
	counts      map[LogLevel]int
}

// NewLogger logs to stderr. Verbose shows debug messages; silent keeps only
// successes and errors.
func NewLogger(verbose, silent bool) *Logger {
	return NewLoggerWithWriter(colorable.NewColorableStderr(), verbose, silent)
}

func NewLoggerWithWriter(out io.Writer, verbose, silent bool) *Logger {
	return &Logger{
		verbose: verbose,
		silent:  silent,
		out:     out,
		now:     time.Now,

		timeColor:    color.New(color.FgHiBlack).SprintfFunc(),
		debugColor:   color.New(color.FgHiBlack).SprintfFunc(),
		infoColor:    color.New(color.FgCyan).SprintfFunc(),
		warningColor: color.New(color.FgYellow).SprintfFunc(),
		errorColor:   color.New(color.FgRed, color.Bold).SprintfFunc(),
		successColor: color.New(color.FgGreen, color.Bold).SprintfFunc(),

		counts: make(map[LogLevel]int),
	}
}

func (l *Logger) SetProgressBar(pb *ProgressBar) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progressBar = pb
}

func (l *Logger) enabled(level LogLevel) bool {
	if l.silent {
		return level == LevelSuccess || level == LevelError
	}
	if level == LevelDebug {
		return l.verbose
	}
	return true
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[level]++
	if !l.enabled(level) {
		return
	}

	message := fmt.Sprintf(format, args...)
	timestamp := l.timeColor("[%s]", l.now().Format("15:04:05"))

	var prefix, formatted string
	switch level {
	case LevelDebug:
		prefix = l.debugColor("[DEBUG]")
		formatted = l.debugColor("%s", message)
	case LevelInfo:
		prefix = l.infoColor("[INFO]")
		formatted = message
	case LevelWarning:
		prefix = l.warningColor("[WARNING]")
		formatted = l.warningColor("%s", message)
	case LevelError:
		prefix = l.errorColor("[ERROR]")
		formatted = l.errorColor("%s", message)
	case LevelSuccess:
		prefix = l.successColor("[SUCCESS]")
		formatted = l.successColor("%s", message)
	}

	if l.progressBar != nil {
		l.progressBar.clear()
	}
	fmt.Fprintf(l.out, "%s %s %s\n", timestamp, prefix, formatted)
	if l.progressBar != nil {
		l.progressBar.render()
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(LevelWarning, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *Logger) Success(format string, args ...interface{}) {
	l.log(LevelSuccess, format, args...)
}

/*
Reports the outcome of one scanned file: flagged files show as success,
clean files only in verbose mode
*/
func (l *Logger) FileScanned(kind, path string, matches int) {
	if matches > 0 {
		l.Success("Flagged %d %s in %s", matches, pluralize(kind, matches), path)
		return
	}
	l.Debug("No PII terms in %s", path)
}

// Count returns how many messages of a level were logged, shown or not.
func (l *Logger) Count(level LogLevel) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[level]
}

func (l *Logger) IsSilent() bool {
	return l.silent
}

func (l *Logger) IsVerbose() bool {
	return l.verbose
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
