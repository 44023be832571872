package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dictate/audio"
	"dictate/session"
)

// TUI message types
type StatusMsg struct{ Status session.Status }
type DeviceMsg struct{ Name string }

type tuiModel struct {
	status        session.Status
	device        string
	hybrid        bool
	delivered     int
	width, height int

	// receives a request when the user presses ctrl+g
	selectDevice chan<- struct{}
}

// meter cells from silent to loud
var levelRunes = []rune(" ▁▂▃▄▅▆▇█")

// levelScale maps RMS onto the meter; normal speech sits around 0.05-0.2.
const levelScale = 4.0

var (
	badgeStyles = map[session.Phase]lipgloss.Style{
		session.Idle:              badge("241"),
		session.Recording:         badge("196"),
		session.Transcribing:      badge("214"),
		session.Cancelled:         badge("245"),
		session.PermissionBlocked: badge("208"),
		session.Error:             badge("160"),
	}
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	meterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

func badge(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("231")).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1)
}

func newTUIProgram(m tuiModel) *tea.Program {
	if m.status.Message == "" {
		m.status = session.Status{Message: session.MsgReady, Phase: session.Idle}
	}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "ctrl+g":
			if m.selectDevice != nil && !m.status.IsRecording {
				select {
				case m.selectDevice <- struct{}{}:
				default:
				}
			}
		}

	case StatusMsg:
		if m.status.Phase == session.Transcribing && msg.Status.Phase == session.Idle &&
			strings.HasPrefix(msg.Status.Message, "Pasted: ") {
			m.delivered++
		}
		m.status = msg.Status

	case DeviceMsg:
		m.device = msg.Name
	}
	return m, nil
}

func (m tuiModel) View() string {
	s := m.status
	var b strings.Builder

	style, ok := badgeStyles[s.Phase]
	if !ok {
		style = badgeStyles[session.Idle]
	}
	b.WriteString(style.Render(strings.ToUpper(s.Phase.String())))
	b.WriteString(" ")
	b.WriteString(messageStyle.Render(s.Message))
	b.WriteString("\n\n")

	b.WriteString(meterStyle.Render(renderMeter(s.RecentLevels, audio.DefaultLevelWindow)))
	b.WriteString("\n")
	if s.SilenceWarning {
		b.WriteString(warnStyle.Render("⚠ no voice detected"))
	}
	b.WriteString("\n")

	mic := "mic: " + m.device
	if audio.IsBluetooth(m.device) {
		mic += " (BT!)"
	}
	b.WriteString(dimStyle.Render(mic + " (ctrl+g)"))
	b.WriteString("\n\n")

	width := m.width - 2
	if width < 20 {
		width = 60
	}
	if s.LastText != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Last transcription (#%d)", m.delivered)))
		b.WriteString("\n")
		for _, line := range wrapText(s.LastText, width) {
			b.WriteString(textStyle.Render(line))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(dimStyle.Render("No transcriptions yet"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	action := " to start/stop"
	if m.hybrid {
		action = " tap to toggle, hold to talk"
	}
	b.WriteString(boldStyle.Render("Ctrl+Shift+Space") + helpStyle.Render(action+"  ") +
		boldStyle.Render("Esc") + helpStyle.Render(" cancel  ") +
		boldStyle.Render("q") + helpStyle.Render(" quit"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("dictate " + version))
	return b.String()
}

// renderMeter draws one cell per level, oldest on the left, always width
// cells wide.
func renderMeter(levels []float32, width int) string {
	cells := make([]rune, width)
	for i := range cells {
		cells[i] = levelRunes[0]
	}
	if len(levels) > width {
		levels = levels[len(levels)-width:]
	}
	off := width - len(levels)
	top := len(levelRunes) - 1
	for i, l := range levels {
		idx := int(float64(l) * levelScale * float64(top))
		cells[off+i] = levelRunes[max(0, min(idx, top))]
	}
	return string(cells)
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
