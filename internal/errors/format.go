package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
	colorWhite = "\033[37m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

func red(text string) string   { return color(colorRed, text) }
func blue(text string) string  { return color(colorBlue, text) }
func cyan(text string) string  { return color(colorCyan, text) }
func white(text string) string { return color(colorWhite, text) }
func gray(text string) string  { return color(colorGray, text) }
func bold(text string) string  { return color(colorBold, text) }

// Format returns a multi-line rendering of the error for terminal display.
func (e *TesseraError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(red(bold("ERROR ")))
		b.WriteString(white(bold(e.Code + ": ")))
	} else {
		b.WriteString(red(bold("ERROR: ")))
	}
	b.WriteString(white(e.Message))
	b.WriteString("\n\n")

	if e.Field != "" {
		b.WriteString("  ")
		b.WriteString(cyan(e.Field))
		b.WriteString("\n\n")
	}

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		b.WriteString("  ")
		b.WriteString(gray("Cause: "))
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n\n")
	}

	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n\n")
	}

	if e.Code != "" {
		b.WriteString("  ")
		b.WriteString(gray("Run: "))
		b.WriteString(blue("tessera explain " + e.Code))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a single-line rendering, the same as Error.
func (e *TesseraError) FormatCompact() string {
	return e.Error()
}

type jsonError struct {
	Code       string   `json:"code,omitempty"`
	Category   Category `json:"category"`
	Message    string   `json:"message"`
	Detail     string   `json:"detail,omitempty"`
	Field      string   `json:"field,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Cause      string   `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *TesseraError) FormatJSON() string {
	je := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Field:      e.Field,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		je.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(je)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(data)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// PrintError writes a formatted error to w.
func PrintError(w io.Writer, err error) {
	var te *TesseraError
	if stderrors.As(err, &te) {
		fmt.Fprint(w, te.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red(bold("ERROR:")), err.Error())
}
