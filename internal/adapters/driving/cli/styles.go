package cli

import "github.com/charmbracelet/lipgloss"

// Output styles shared by the commands. Lipgloss degrades to plain
// text when the terminal has no colour support.
var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "78"})

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "243", Dark: "247"})

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"})

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "78"})

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "203"})
)
