// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Device operations
	OpConnect   Op = "connect device"
	OpPlay      Op = "resume playback"
	OpPause     Op = "pause playback"
	OpSeek      Op = "seek"
	OpSetVolume Op = "set volume"
	OpLoad      Op = "load track"
	OpToken     Op = "get access token"
	OpClose     Op = "close device"

	// State operations
	OpStateOpen  Op = "open state database"
	OpTokenPrune Op = "prune cached tokens"
	OpStateLoad  Op = "load device state"

	// Desktop integration
	OpMPRISStart Op = "start MPRIS server"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
