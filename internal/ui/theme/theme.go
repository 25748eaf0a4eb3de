package theme

import "charm.land/lipgloss/v2"

// Palette.
var (
	Primary   = lipgloss.Color("#2563EB") // blue
	Secondary = lipgloss.Color("#0EA5E9") // sky
	Accent    = lipgloss.Color("#F59E0B") // amber
	Success   = lipgloss.Color("#16A34A")
	Error     = lipgloss.Color("#DC2626")
	Text      = lipgloss.Color("#F1F5F9")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#475569")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary)

	Body = lipgloss.NewStyle().Foreground(Text)

	Hint = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	Selected = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	Unselected = lipgloss.NewStyle().Foreground(Text)

	Correct = lipgloss.NewStyle().Foreground(Success).Bold(true)

	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Bar = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)
)
