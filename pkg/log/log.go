package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // base width for file names
	partWidth   = 15 // width for the matched part number
	statusWidth = 15 // width for status text
)

// 🎯 FileCopy describes how one source file was handled for a BOM line
type FileCopy struct {
	Name   string // source file name
	Part   string // part number it matched
	Dest   string // destination directory
	Copied bool   // file landed in the destination
	Failed bool   // copy was attempted and failed
	Err    error  // failure cause, when Failed
}

// 📦 ProductionRun represents one production being processed
type ProductionRun struct {
	Production  string // production tag from the BOM
	DocType     string // document type being generated
	Destination string // destination directory for this production
}

// 🎯 Logger pairs structured logging with aligned console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *ProductionRun
	copies  []FileCopy
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileCopy formats a file copy for display
func (l *Logger) formatFileCopy(op FileCopy) string {
	var symbol rune
	var symbolColor color.Attribute
	var status string
	switch {
	case op.Failed:
		symbol = '✗'
		symbolColor = color.FgRed
		status = "failed"
	case op.Copied:
		symbol = '✓'
		symbolColor = color.FgGreen
		status = "copied"
	default:
		symbol = '-'
		symbolColor = color.FgYellow
		status = "skipped"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Name),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", partWidth, op.Part)),
		fmt.Sprintf("%-*s", statusWidth, status))
}

// 📝 LogFileCopy logs one handled source file
func (l *Logger) LogFileCopy(ctx context.Context, op FileCopy) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.copies = append(l.copies, op)

	fmt.Fprintln(l.console, l.formatFileCopy(op))

	event := l.zlog.Info()
	if op.Failed {
		event = l.zlog.Error().Err(op.Err)
	}
	event.
		Str("file", op.Name).
		Str("part", op.Part).
		Str("dest", op.Dest).
		Bool("copied", op.Copied).
		Msg("file copy")
}

// 📝 StartProduction starts a new production run
func (l *Logger) StartProduction(ctx context.Context, run ProductionRun) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &run
	l.copies = nil

	fmt.Fprintf(l.console, "[%s]\n",
		color.New(color.FgCyan).Sprint(run.Production))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(run.DocType),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(run.Destination))

	l.zlog.Info().
		Str("production", run.Production).
		Str("doc_type", run.DocType).
		Str("destination", run.Destination).
		Msg("starting production")
}

// 📝 EndProduction ends the current production run
func (l *Logger) EndProduction(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Info().
		Str("production", l.current.Production).
		Int("files", len(l.copies)).
		Msg("production complete")

	l.current = nil
	l.copies = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	hopperText := color.New(color.Bold, color.FgCyan).Sprint("hopper")
	fmt.Fprintf(l.console, "\n%s %s\n\n", hopperText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
