package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorForeground = lipgloss.Color("#c0caf5")
	colorDim        = lipgloss.Color("#565f89")
	colorPrimary    = lipgloss.Color("#7aa2f7")
	colorSelection  = lipgloss.Color("#33467c")
	colorBorder     = lipgloss.Color("#3b4261")
	colorError      = lipgloss.Color("#f7768e")
	colorSuccess    = lipgloss.Color("#9ece6a")
	colorWarning    = lipgloss.Color("#e0af68")
)

type Styles struct {
	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	Header        lipgloss.Style
	Item          lipgloss.Style
	ItemSelected  lipgloss.Style
	Meta          lipgloss.Style
	Status        lipgloss.Style
	Error         lipgloss.Style
	Priority      map[string]lipgloss.Style
}

func NewStyles() Styles {
	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	return Styles{
		Column:        column,
		ColumnFocused: column.BorderForeground(colorPrimary),
		Header:        lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		Item:          lipgloss.NewStyle().Foreground(colorForeground),
		ItemSelected:  lipgloss.NewStyle().Foreground(colorPrimary).Background(colorSelection).Bold(true),
		Meta:          lipgloss.NewStyle().Foreground(colorDim),
		Status:        lipgloss.NewStyle().Foreground(colorSuccess),
		Error:         lipgloss.NewStyle().Foreground(colorError),
		Priority: map[string]lipgloss.Style{
			"high":   lipgloss.NewStyle().Foreground(colorError),
			"medium": lipgloss.NewStyle().Foreground(colorWarning),
			"low":    lipgloss.NewStyle().Foreground(colorDim),
		},
	}
}
