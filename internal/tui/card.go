package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CardData is everything the dashboard needs to paint a single service card.
// The caller decides status text, icon, and whether the card is clickable.
type CardData struct {
	Name            string
	Icon            string
	StatusLabel     string
	StatusIcon      string
	Accessible      bool
	Beta            bool
	UpdateAvailable bool
	Version         string
	Memory          string
}

const cardWidth = 30

var (
	cardBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(cardWidth)

	cardBorderSelected = cardBorder.
				BorderForeground(lipgloss.Color("63"))

	cardTitleStyle  = lipgloss.NewStyle().Bold(true)
	cardDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cardBadgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("58")).Padding(0, 1)
	cardUpdateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// RenderCard paints one service card. Inaccessible cards are dimmed so the
// grid makes the disabled state obvious before the user tries to open one.
func RenderCard(d CardData, selected bool) string {
	var b strings.Builder

	title := cardTitleStyle.Render(d.Icon + " " + d.Name)
	if d.Beta {
		title += " " + cardBadgeStyle.Render("beta")
	}
	b.WriteString(title)
	b.WriteString("\n")

	b.WriteString(d.StatusIcon + " " + d.StatusLabel)
	if d.Memory != "" {
		b.WriteString(cardDimStyle.Render("  " + d.Memory))
	}

	if d.Version != "" || d.UpdateAvailable {
		b.WriteString("\n")
		if d.Version != "" {
			b.WriteString(cardDimStyle.Render("v" + d.Version))
		}
		if d.UpdateAvailable {
			b.WriteString(" " + cardUpdateStyle.Render("update available"))
		}
	}

	style := cardBorder
	if selected {
		style = cardBorderSelected
	}
	card := style.Render(b.String())
	if !d.Accessible {
		card = cardDimStyle.Render(card)
	}
	return card
}

// RenderCardGrid lays cards out in rows of columns, left to right.
func RenderCardGrid(cards []string, width int) string {
	if len(cards) == 0 {
		return ""
	}
	perRow := width / (cardWidth + 4)
	if perRow < 1 {
		perRow = 1
	}
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// GridColumns reports how many cards fit per row at the given width, so the
// caller can translate arrow keys into grid moves.
func GridColumns(width int) int {
	perRow := width / (cardWidth + 4)
	if perRow < 1 {
		perRow = 1
	}
	return perRow
}
