// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Adaptive colors pick the Light or Dark variant from the terminal background.
var (
	colorAccent     = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#7C3AED"}
	colorMuted      = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#6B7280"}
	colorPackage    = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#3B82F6"}
	colorConstraint = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}
	colorWarning    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	colorError      = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}
)

var (
	// titleStyle renders section headers and the root package name.
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	// mutedStyle renders paths and secondary text.
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	// packageStyle renders package names and configuration keys.
	packageStyle = lipgloss.NewStyle().Foreground(colorPackage)
	// constraintStyle renders version constraints and configuration values.
	constraintStyle = lipgloss.NewStyle().Foreground(colorConstraint)
	warningStyle    = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	// sectionStyle indents the body of a text report section.
	sectionStyle = lipgloss.NewStyle().PaddingLeft(2)
)
