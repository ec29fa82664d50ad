// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all human-facing output. JSON results are never styled.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// SuccessStyle is for success messages.
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	// ErrorStyle is for error prefixes on stderr.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorError)

	// WarningStyle is for warnings on stderr.
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	// CmdStyle is for command lines and paths.
	CmdStyle = lipgloss.NewStyle().Foreground(ColorHighlight)

	// labelStyle aligns the field labels of the dry-run report.
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning).Width(10)
)
