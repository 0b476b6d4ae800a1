package log

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger provides user-friendly feedback about run progress
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎨 DocumentEventType represents what happened to a document
type DocumentEventType int

const (
	DocumentRendered DocumentEventType = iota
	DocumentSkipped
	DocumentFailed
)

// 🖼️ DocumentEvent represents one generated (or failed) document
type DocumentEvent struct {
	Type       DocumentEventType
	Production string
	Number     string
	Path       string
	Error      error
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📝 LogDocument logs a document event with appropriate emoji and formatting
func (u *UserLogger) LogDocument(event DocumentEvent) {
	var prefix, action string
	var printer *pterm.PrefixPrinter
	switch event.Type {
	case DocumentRendered:
		prefix = "📄"
		action = "Rendered"
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: prefix})
	case DocumentSkipped:
		prefix = "⏭️"
		action = "Skipped"
		printer = pterm.Debug.WithPrefix(pterm.Prefix{Text: prefix})
	case DocumentFailed:
		prefix = "❌"
		action = "Failed"
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: prefix})
	}

	msg := fmt.Sprintf("%s %s for %s", action, event.Number, event.Production)
	if event.Path != "" {
		msg += fmt.Sprintf(" (%s)", filepath.Base(event.Path))
	}

	if event.Error != nil {
		printer.Println(msg)
		pterm.Error.Println(event.Error)
		u.log.Error().Err(event.Error).Msg(msg)
	} else {
		printer.Println(msg)
		u.log.Info().Msg(msg)
	}
}

// 📊 LogStage logs a coarse run stage change
func (u *UserLogger) LogStage(description string) {
	printer := pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"})
	printer.Println(description)
	u.log.Info().Msg(description)
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
	} else {
		if err != nil {
			pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
			pterm.Error.Println(err)
			u.log.Error().Err(err).Msg(description)
		} else {
			pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
			u.log.Warn().Msg(description)
		}
	}
}
