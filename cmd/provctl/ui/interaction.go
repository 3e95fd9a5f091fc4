package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	envNoColor = "NO_COLOR"
	envCI      = "CI"
	envTerm    = "TERM"
)

// ConfigureColors picks the lipgloss color profile. Colors are disabled
// when requested, when NO_COLOR or CI is set, for dumb terminals, and
// when stderr is not a terminal.
func ConfigureColors(noColor bool) {
	if colorsEnabled(noColor) {
		lipgloss.SetColorProfile(termenv.ColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Interactive reports whether progress animations make sense: stderr is
// a terminal and nothing forced plain output.
func Interactive() bool {
	return colorsEnabled(false)
}

func colorsEnabled(noColor bool) bool {
	if noColor {
		return false
	}
	if os.Getenv(envNoColor) != "" || envTruthy(envCI) {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envTerm)), "dumb") {
		return false
	}
	return stderrIsTerminal()
}

func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func envTruthy(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
