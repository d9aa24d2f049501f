// Package terminal provides terminal detection utilities.
package terminal

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// Environment variables consulted by ColorEnabled.
const (
	EnvNoColor = "NO_COLOR"
	// EnvTFBuild is set to "True" by the Azure DevOps agent.
	EnvTFBuild = "TF_BUILD"
)

var isTerminal = term.IsTerminal

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isTerminal(int(f.Fd()))
}

// ColorEnabled reports whether output written to f should carry ANSI colors.
// Pipeline agents render their own log markers, so colors stay off there.
func ColorEnabled(f *os.File, getenv func(string) string) bool {
	if getenv == nil {
		getenv = os.Getenv
	}
	if getenv(EnvNoColor) != "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(getenv(EnvTFBuild)), "true") {
		return false
	}
	return IsTerminal(f)
}
