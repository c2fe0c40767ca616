// Package ui renders terminal styling for CRM output.
package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorGreen  = 114
	colorYellow = 179
	colorRed    = 203
)

var noColor bool

func paint(color int, s string) string {
	if noColor || s == "" {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return paint(colorCmd, s) }

func RenderSuccess(s string) string { return paint(colorGreen, s) }
func RenderError(s string) string   { return paint(colorRed, s) }

// RenderStatus colors a contact status by pipeline stage. Unknown values
// are returned unstyled.
func RenderStatus(status string) string {
	switch status {
	case "Lead":
		return paint(colorYellow, status)
	case "Prospect":
		return paint(colorAccent, status)
	case "Customer":
		return paint(colorGreen, status)
	}
	return status
}

// RenderAction colors an activity action.
func RenderAction(action string) string {
	switch action {
	case "create":
		return paint(colorGreen, action)
	case "update":
		return paint(colorAccent, action)
	case "delete":
		return paint(colorRed, action)
	}
	return action
}

// ActionIcon returns a one-character marker for an activity action.
func ActionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	}
	return "•"
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

// ColorEnabled reports whether Render* functions emit escape codes.
func ColorEnabled() bool {
	return !noColor
}
