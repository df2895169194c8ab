package localsink

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/voicebridge/voicebridge/core"
)

// amplitudeTick is the cadence the amplitude bar advances at: one
// 1000-sample chunk per tick.
const amplitudeTick = 50 * time.Millisecond

const defaultWidth = 80

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("13")).
			Padding(0, 1)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	fullTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4444"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type notificationMsg struct{ n Notification }
type tickMsg time.Time

// Model is the terminal visualizer: connection status, a streaming
// transcript, and an amplitude bar that follows playback in real time.
type Model struct {
	notifications <-chan Notification

	spinner spinner.Model
	width   int

	state       bridge.State
	partial     string
	lastFull    string
	lastError   string
	amplitudes  []float64
	cursor      int
	playingTurn string
}

func NewModel(notifications <-chan Notification) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))

	return Model{
		notifications: notifications,
		spinner:       s,
		width:         defaultWidth,
		state:         bridge.StateIdle,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case notificationMsg:
		m = m.handleNotification(msg.n)
		cmds = append(cmds, m.listen())

	case tickMsg:
		if m.playingTurn != "" && m.cursor < len(m.amplitudes) {
			m.cursor++
		}
		cmds = append(cmds, tick())
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(bannerStyle.Render("voicebridge"))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	b.WriteString(m.renderBar())
	b.WriteString("\n\n")

	if m.partial != "" {
		b.WriteString(partialStyle.Render(m.partial))
		b.WriteString("\n")
	} else if m.lastFull != "" {
		b.WriteString(fullTextStyle.Render(m.lastFull))
		b.WriteString("\n")
	}

	if m.lastError != "" {
		b.WriteString(errorStyle.Render("session error: " + m.lastError))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("press q to quit"))

	return b.String()
}

func (m Model) renderStatus() string {
	switch m.state {
	case bridge.StateConnecting:
		return m.spinner.View() + statusStyle.Render(" connecting")
	case bridge.StateStreaming:
		return statusStyle.Render("streaming, speak now")
	default:
		return statusStyle.Render(string(m.state))
	}
}

// renderBar draws one amplitude chunk as a run of '=' the way the original
// console visualizer did, scaled to the terminal width.
func (m Model) renderBar() string {
	if m.playingTurn == "" || m.cursor >= len(m.amplitudes) {
		return ""
	}
	return renderBar(m.amplitudes[m.cursor], m.width)
}

func renderBar(amplitude float64, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	length := int(amplitude * float64(width) * 4)
	if length <= 0 {
		return ""
	}
	bar := strings.Repeat("=", length)
	return barStyle.Render(truncate.String(bar, uint(width)))
}

func (m Model) handleNotification(n Notification) Model {
	switch t := n.(type) {
	case StateChanged:
		m.state = t.State
	case PartialText:
		m.partial += t.Text
	case FullText:
		m.lastFull = t.Text
		m.partial = ""
	case PlaybackStarted:
		m.playingTurn = t.TurnID
		m.amplitudes = t.Amplitudes
		m.cursor = 0
	case PlaybackEnded:
		if t.TurnID == m.playingTurn {
			m.playingTurn = ""
			m.amplitudes = nil
			m.cursor = 0
		}
	case SessionTrouble:
		m.lastError = t.Reason
	}
	return m
}

func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		return notificationMsg{n: <-m.notifications}
	}
}

func tick() tea.Cmd {
	return tea.Tick(amplitudeTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the visualizer and blocks until the user quits.
func Run(notifications <-chan Notification) error {
	p := tea.NewProgram(NewModel(notifications))
	_, err := p.Run()
	return err
}
