package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ShowModalMsg opens the modal with a title and body. Used for the
// coming-soon warning and other blocking notices.
type ShowModalMsg struct {
	Title string
	Body  string
	// Detail is optional extra text the user can copy with "c".
	Detail string
}

type CloseModalMsg struct{}

type ModalModel struct {
	active bool
	title  string
	body   string
	detail string
	width  int
	height int

	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
	hintStyle   lipgloss.Style
}

func NewModalModel() ModalModel {
	return ModalModel{
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2),
		titleStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		hintStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (m ModalModel) Active() bool { return m.active }

func (m ModalModel) Update(msg tea.Msg) (ModalModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.active = true
		m.title = msg.Title
		m.body = msg.Body
		m.detail = msg.Detail
		return m, nil
	case CloseModalMsg:
		m.active = false
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if !m.active {
			return m, nil
		}
		switch msg.String() {
		case "esc", "enter", "q":
			m.active = false
			return m, nil
		case "c":
			if m.detail != "" {
				clipboard.WriteAll(m.detail)
				return m, func() tea.Msg { return ShowToastMsg{Message: "Copied to clipboard"} }
			}
		}
	}
	return m, nil
}

func (m ModalModel) View() string {
	if !m.active {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.body)
	b.WriteString("\n\n")
	hint := "esc to close"
	if m.detail != "" {
		hint = "c to copy · esc to close"
	}
	b.WriteString(m.hintStyle.Render(hint))

	box := m.borderStyle.Render(b.String())
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
