// Package tui draws table frames in the terminal and turns typed commands
// into table input.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/lox/cardtable/internal/table"
)

// FrameMsg carries a freshly published table frame into the program
type FrameMsg struct {
	Frame table.Frame
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// TUIModel represents the Bubble Tea model for one table session
type TUIModel struct {
	controls Controls
	logger   *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model
	timerBar    progress.Model

	// State
	frame       table.Frame
	hasFrame    bool
	inputError  string
	quitting    bool
	focusedPane int // 0 = log, 1 = input
	logLines    int

	// Dimensions
	width       int
	height      int
	initialized bool
}

// NewTUIModel creates a model that sends input to controls
func NewTUIModel(controls Controls, logger *log.Logger) *TUIModel {
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter a command (1-9, call, raise 40, c 1 3, submit, ready, /say hi)"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 20

	return &TUIModel{
		controls:    controls,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		timerBar:    bar,
		focusedPane: 1, // Start with input focused
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case FrameMsg:
		m.applyFrame(msg.Frame)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			// Switch focus between log and input
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := m.actionInput.Value()
				m.actionInput.SetValue("")
				if m.runCommand(line) {
					m.quitting = true
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// runCommand parses and executes one input line. It reports whether to quit.
func (m *TUIModel) runCommand(line string) bool {
	m.inputError = ""
	cmd, err := ParseCommand(line)
	if err != nil {
		m.inputError = err.Error()
		return false
	}
	quit, err := Execute(cmd, m.frame.Controls, m.controls)
	if err != nil {
		m.inputError = err.Error()
	}
	return quit
}

func (m *TUIModel) applyFrame(f table.Frame) {
	atBottom := m.logViewport.AtBottom() || !m.hasFrame
	m.frame = f
	m.hasFrame = true

	if len(f.Log) != m.logLines {
		m.logLines = len(f.Log)
		m.logViewport.SetContent(GameLogStyle.Render(strings.Join(f.Log, "\n")))
		if atBottom && m.logViewport.Height > 0 && m.logViewport.Width > 0 {
			m.logViewport.GotoBottom()
		}
	}
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if overlay := renderOverlay(m.frame); overlay != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
	}

	header := renderHeader(m.frame)

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent) + 2
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(m.width-2, 1))
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	boardContent := renderBoard(m.frame.Board)
	if boardContent == "" {
		boardContent = InfoStyle.Render("No community cards")
	}
	boardPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(m.width-2, 1)).
		Render(boardContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 30)

	remaining := m.height - lipgloss.Height(header) - lipgloss.Height(boardPane) - actionHeight - 2
	logWidth := max(m.width-sidebarWidth-4, 1)
	logHeight := max(remaining, 1)

	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight

	// On first proper sizing, jump to the newest entries
	if !m.initialized && logWidth > 1 && logHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(logHeight).
		Render(sidebarContent)

	middle := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Left, header, boardPane, middle, actionPane)
}

// renderSidebarPane lists seats and the pre-hand status
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder
	content.WriteString(renderSeats(m.frame))
	if m.frame.Hint != "" && !m.inHand() {
		content.WriteString("\n")
		content.WriteString(WarningStyle.Render(m.frame.Hint))
		content.WriteString("\n")
	}
	if m.frame.Leaving {
		content.WriteString(WarningStyle.Render("Leaving after this hand"))
		content.WriteString("\n")
	}
	return content.String()
}

// renderActionPane renders the controls and the input line
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	name := m.frame.Timer.Actor
	if m.frame.View != nil {
		name = m.frame.View.Username(name)
	}
	if t := renderTimer(m.frame.Timer, m.timerBar, name); t != "" {
		content.WriteString(t)
		content.WriteString("\n")
	}

	content.WriteString(renderControls(m.frame.Controls))
	content.WriteString("\n")

	switch {
	case m.inputError != "":
		content.WriteString(ErrorStyle.Render(m.inputError))
		content.WriteString("\n")
	case m.frame.Notice != "":
		content.WriteString(WarningStyle.Render(m.frame.Notice))
		content.WriteString("\n")
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • ready • leave [now] • Ctrl+C to quit"))
	}
	return content.String()
}

func (m *TUIModel) inHand() bool {
	if m.frame.View == nil || m.frame.View.Snapshot == nil {
		return false
	}
	switch m.frame.View.Snapshot.Phase {
	case "", protocol.PhaseWaiting:
		return false
	}
	return true
}

// Frame returns the last frame the model drew
func (m *TUIModel) Frame() table.Frame {
	return m.frame
}
