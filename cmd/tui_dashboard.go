package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	uitk "github.com/aideck/cli/internal/tui"
)

type dashboardScreen int

const (
	screenOnboarding dashboardScreen = iota
	screenCards
)

type servicesLoadedMsg struct {
	services []Service
	err      error
}

type interfacesLoadedMsg struct {
	interfaces []Interface
	err        error
}

type readinessCheckedMsg struct{}
type memoryCheckedMsg struct{}
type cardRefreshedMsg struct {
	id  string
	err error
}
type serviceActionMsg struct {
	id     string
	action string
	err    error
}
type pollTickMsg time.Time

const dashboardPollInterval = 5 * time.Second

type dashboardModel struct {
	store   Store
	gate    *ReadinessGate
	manager *DockerServiceManager

	screen   dashboardScreen
	services []Service
	cards    []*CardController
	ifaces   []Interface
	cursor   int
	loading  bool
	loadErr  error

	hideComingSoon bool
	versionCatalog map[string]string

	width  int
	height int

	spin  spinner.Model
	toast uitk.ToastModel
	modal uitk.ModalModel

	headerStyle lipgloss.Style
	hintStyle   lipgloss.Style
	errStyle    lipgloss.Style
	okStyle     lipgloss.Style
	badStyle    lipgloss.Style
}

func newDashboardModel(store Store, gate *ReadinessGate, manager *DockerServiceManager, hideComingSoon bool, versionCatalog map[string]string) dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	width, height, _ := term.GetSize(uintptr(os.Stdout.Fd()))

	return dashboardModel{
		store:          store,
		gate:           gate,
		manager:        manager,
		screen:         screenOnboarding,
		hideComingSoon: hideComingSoon,
		versionCatalog: versionCatalog,
		loading:        true,
		width:          width,
		height:         height,
		spin:           s,
		toast:          uitk.NewToastModel(),
		modal:          uitk.NewModalModel(),
		headerStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		hintStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		errStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		okStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		badStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.recheckCmd(),
		m.refreshMemoryCmd(),
		m.loadServicesCmd(false),
		m.loadInterfacesCmd(),
		pollCmd(),
	)
}

func pollCmd() tea.Cmd {
	return tea.Tick(dashboardPollInterval, func(t time.Time) tea.Msg { return pollTickMsg(t) })
}

func (m dashboardModel) recheckCmd() tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		gate.Recheck(ctx)
		return readinessCheckedMsg{}
	}
}

func (m dashboardModel) refreshMemoryCmd() tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		gate.RefreshMemory(ctx)
		return memoryCheckedMsg{}
	}
}

func (m dashboardModel) loadServicesCmd(force bool) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if force {
			if err := store.RefreshServices(ctx); err != nil {
				return servicesLoadedMsg{err: err}
			}
		}
		services, err := store.Services(ctx)
		return servicesLoadedMsg{services: services, err: err}
	}
}

func (m dashboardModel) loadInterfacesCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ifaces, err := store.Interfaces(ctx)
		return interfacesLoadedMsg{interfaces: ifaces, err: err}
	}
}

func (m dashboardModel) refreshCardCmd(card *CardController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := card.Refresh(ctx)
		return cardRefreshedMsg{id: card.Service().ID, err: err}
	}
}

func (m dashboardModel) serviceActionCmd(svc Service, action string) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		var err error
		switch action {
		case "start":
			err = manager.StartService(svc)
		case "stop":
			err = manager.StopService(svc)
		}
		return serviceActionMsg{id: svc.ID, action: action, err: err}
	}
}

func (m *dashboardModel) rebuildCards() {
	m.cards = m.cards[:0]
	for i := range m.services {
		svc := m.services[i]
		if m.hideComingSoon && GetStatus(svc) == StatusComingSoon {
			continue
		}
		m.cards = append(m.cards, NewCardController(svc, m.store))
	}
	if m.cursor >= len(m.cards) {
		m.cursor = len(m.cards) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case pollTickMsg:
		cmds = append(cmds, pollCmd())
		if m.screen == screenCards {
			cmds = append(cmds, m.loadServicesCmd(false))
		} else {
			cmds = append(cmds, m.recheckCmd())
		}

	case readinessCheckedMsg, memoryCheckedMsg:
		// Gate state already updated; the view re-reads it.

	case servicesLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		if msg.err == nil {
			m.services = MarkUpdates(msg.services, m.versionCatalog)
			m.rebuildCards()
		}

	case interfacesLoadedMsg:
		if msg.err == nil {
			m.ifaces = msg.interfaces
		}

	case cardRefreshedMsg:
		if msg.err != nil {
			cmds = append(cmds, func() tea.Msg {
				return uitk.ShowToastMsg{Message: fmt.Sprintf("Refresh failed: %v", msg.err)}
			})
		} else {
			cmds = append(cmds, m.loadServicesCmd(false))
		}

	case serviceActionMsg:
		if msg.err != nil {
			cmds = append(cmds, func() tea.Msg {
				return uitk.ShowToastMsg{Message: fmt.Sprintf("%s %s failed: %v", msg.action, msg.id, msg.err)}
			})
		} else {
			cmds = append(cmds, func() tea.Msg {
				return uitk.ShowToastMsg{Message: fmt.Sprintf("%s: %s requested", msg.id, msg.action)}
			})
			cmds = append(cmds, m.loadServicesCmd(true))
		}

	case TUIMessageMsg:
		cmds = append(cmds, func() tea.Msg {
			return uitk.ShowToastMsg{Message: FormatMessage(msg.Message)}
		})

	case tea.KeyMsg:
		if m.modal.Active() {
			break // modal consumes keys below
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		if m.screen == screenOnboarding {
			return m.updateOnboardingKeys(msg)
		}
		return m.updateCardKeys(msg)
	}

	var cmd tea.Cmd
	m.toast, cmd = m.toast.Update(msg)
	cmds = append(cmds, cmd)
	m.modal, cmd = m.modal.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m dashboardModel) updateOnboardingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, tea.Batch(m.recheckCmd(), m.refreshMemoryCmd())
	case "enter":
		if m.gate.CanProceed() {
			m.screen = screenCards
			return m, m.loadServicesCmd(false)
		}
		return m, func() tea.Msg {
			return uitk.ShowToastMsg{Message: "Dependencies are not ready yet"}
		}
	}
	return m, nil
}

func (m dashboardModel) updateCardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := uitk.GridColumns(m.width)
	switch msg.String() {
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case "down", "j":
		if m.cursor+cols < len(m.cards) {
			m.cursor += cols
		}
	case "enter":
		return m.activateSelected()
	case "r":
		if card := m.selectedCard(); card != nil {
			return m, m.refreshCardCmd(card)
		}
	case "R":
		m.loading = true
		return m, m.loadServicesCmd(true)
	case "s":
		if card := m.selectedCard(); card != nil {
			return m, m.serviceActionCmd(card.Service(), "start")
		}
	case "x":
		if card := m.selectedCard(); card != nil {
			return m, m.serviceActionCmd(card.Service(), "stop")
		}
	case "d":
		m.screen = screenOnboarding
		return m, tea.Batch(m.recheckCmd(), m.refreshMemoryCmd())
	}
	return m, nil
}

func (m dashboardModel) selectedCard() *CardController {
	if m.cursor < 0 || m.cursor >= len(m.cards) {
		return nil
	}
	return m.cards[m.cursor]
}

func (m dashboardModel) activateSelected() (tea.Model, tea.Cmd) {
	card := m.selectedCard()
	if card == nil {
		return m, nil
	}
	action := card.Activate()
	switch action.Kind {
	case ActionOpenWarning:
		svc := card.Service()
		return m, func() tea.Msg {
			return uitk.ShowModalMsg{
				Title: svc.Name,
				Body:  fmt.Sprintf("%s is coming soon and cannot be opened yet.", svc.Name),
			}
		}
	case ActionNavigate:
		svc := card.Service()
		detail := effectiveDaemonURL() + action.Path
		body := fmt.Sprintf("Detail page: %s", detail)
		if ifaces := card.ResolveInterfaces(m.ifaces); len(ifaces) > 0 {
			body += "\n\nInterfaces:"
			for _, iface := range ifaces {
				body += fmt.Sprintf("\n  %s  %s", iface.Name, iface.PlaygroundURL)
			}
		}
		clipboard.WriteAll(detail)
		return m, func() tea.Msg {
			return uitk.ShowModalMsg{Title: svc.Name, Body: body, Detail: detail}
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.modal.Active() {
		return m.modal.View()
	}

	var body string
	if m.screen == screenOnboarding {
		body = m.viewOnboarding()
	} else {
		body = m.viewCards()
	}

	toast := m.toast.View()
	if toast == "" {
		return body
	}
	return toast + "\n" + body
}

func (m dashboardModel) viewOnboarding() string {
	s := m.headerStyle.Render("aideck · setup") + "\n\n"

	s += m.depRow("Docker engine", m.gate.DockerRunning(), m.gate.Readiness() == ReadinessUnknown)
	s += m.depRow("aideck daemon", m.gate.ServerRunning(), m.gate.Readiness() == ReadinessUnknown)

	mem := m.gate.MemoryDisplay()
	if m.gate.MemoryLoading() {
		s += fmt.Sprintf("%s Available memory: checking...\n", m.spin.View())
	} else if mem != "" {
		s += fmt.Sprintf("  Available memory: %s\n", mem)
	} else {
		s += m.hintStyle.Render("  Available memory: unknown") + "\n"
	}

	s += "\n"
	if m.gate.CanProceed() {
		s += m.okStyle.Render("All dependencies are ready.") + "\n\n"
		s += m.hintStyle.Render("enter to open the dashboard · r to recheck · q to quit")
	} else {
		s += m.hintStyle.Render("r to recheck · q to quit")
	}
	return s
}

func (m dashboardModel) depRow(name string, ok, checking bool) string {
	if checking {
		return fmt.Sprintf("%s %s: checking...\n", m.spin.View(), name)
	}
	if ok {
		return fmt.Sprintf("%s %s: running\n", m.okStyle.Render("✔"), name)
	}
	return fmt.Sprintf("%s %s: not running\n", m.badStyle.Render("✘"), name)
}

func (m dashboardModel) viewCards() string {
	s := m.headerStyle.Render("aideck · services") + "\n\n"

	if m.loading {
		return s + fmt.Sprintf("%s Loading services...\n", m.spin.View())
	}
	if m.loadErr != nil {
		return s + m.errStyle.Render(fmt.Sprintf("Failed to load services: %v", m.loadErr)) + "\n\n" +
			m.hintStyle.Render("R to retry · q to quit")
	}
	if len(m.cards) == 0 {
		return s + m.hintStyle.Render("No services available.") + "\n"
	}

	rendered := make([]string, 0, len(m.cards))
	for i, card := range m.cards {
		svc := card.Service()
		status := card.Status()
		rendered = append(rendered, uitk.RenderCard(uitk.CardData{
			Name:            svc.Name,
			Icon:            svc.Icon,
			StatusLabel:     string(status),
			StatusIcon:      statusIcon(status),
			Accessible:      IsAccessible(status),
			Beta:            svc.Beta,
			UpdateAvailable: svc.UpdateAvailable,
			Version:         svc.Version,
			Memory:          FormatMemoryLimit(memoryRequirement(svc)),
		}, i == m.cursor))
	}
	s += uitk.RenderCardGrid(rendered, m.width)
	s += "\n" + m.hintStyle.Render("enter open · s start · x stop · r refresh card · R refresh all · d dependencies · q quit")
	return s
}

func memoryRequirement(svc Service) *float64 {
	if svc.ModelInfo.MemoryRequirements <= 0 {
		return nil
	}
	v := svc.ModelInfo.MemoryRequirements
	return &v
}
