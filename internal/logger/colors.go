package logger

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// CLI output helpers using fatih/color for cross-platform support

// Warning prints a warning message with yellow exclamation
func Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_, _ = WarnColor.Fprint(os.Stdout, "⚠ ")
	fmt.Println(msg)
}

// Header prints a bold header
func Header(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_, _ = HighlightColor.Println(msg)
}

// Bold returns bold text
func Bold(text string) string {
	return color.New(color.Bold).Sprint(text)
}

// Green returns green text
func Green(text string) string {
	return SuccessColor.Sprint(text)
}

// Red returns red text
func Red(text string) string {
	return ErrorColor.Sprint(text)
}

// Yellow returns yellow text
func Yellow(text string) string {
	return WarnColor.Sprint(text)
}

// StatusLine prints a key-value status line
func StatusLine(key, value string) {
	_, _ = DimColor.Printf("  %s: ", key)
	fmt.Println(value)
}

// DisableColors disables all color output (for non-TTY or --no-color flag)
func DisableColors() {
	color.NoColor = true
}

// EnableColors enables color output
func EnableColors() {
	color.NoColor = false
}
