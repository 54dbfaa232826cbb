package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tidydo/internal/models"
	"tidydo/internal/service"
)

// FocusModel renders the pomodoro countdown for the active session.
type FocusModel struct {
	width  int
	height int

	sessions *service.SessionService
	session  *models.PomodoroSession
	task     *models.Task

	bar progress.Model

	// outcome is set when the user finished the session from the TUI.
	outcome string
	err     error
	exiting bool
}

type focusTickMsg struct{}

// NewFocusModel builds the countdown for a freshly started or resumed
// session.
func NewFocusModel(sessions *service.SessionService, session *models.PomodoroSession, task *models.Task) FocusModel {
	bar := progress.New(progress.WithGradient(ColorAccentMain, ColorAccentBright))
	return FocusModel{
		sessions: sessions,
		session:  session,
		task:     task,
		bar:      bar,
	}
}

func (m FocusModel) Init() tea.Cmd {
	return tickOnce()
}

func tickOnce() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return focusTickMsg{}
	})
}

func (m FocusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case focusTickMsg:
		if m.outcome != "" || m.exiting {
			return m, nil
		}
		return m, tickOnce()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-8, 60)
		return m, nil

	case tea.KeyMsg:
		ctx := context.Background()
		switch msg.String() {
		case "p", " ":
			var err error
			if m.session.State == models.SessionRunning {
				m.session, err = m.sessions.Pause(ctx)
			} else {
				m.session, err = m.sessions.Resume(ctx)
			}
			if err != nil {
				m.err = err
			}
			return m, nil
		case "c":
			session, err := m.sessions.Complete(ctx)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.session = session
			m.outcome = "completed"
			return m, tea.Quit
		case "a":
			session, err := m.sessions.Abandon(ctx)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.session = session
			m.outcome = "abandoned"
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			// Leave the session running in the background.
			m.exiting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m FocusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	now := time.Now()
	remaining := m.session.Remaining(now)
	planned := time.Duration(m.session.PlannedSeconds) * time.Second
	fraction := 0.0
	if planned > 0 {
		fraction = 1 - remaining.Seconds()/planned.Seconds()
	}

	var lines []string

	header := "🍅 FOCUS"
	if m.session.State == models.SessionPaused {
		header = "⏸  PAUSED"
	}
	lines = append(lines, lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Render(header))

	if m.task != nil {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Bold(true).
			Render(fmt.Sprintf("#%d %s", m.task.ID, m.task.Title)))
	}

	countdownStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)
	if m.session.State == models.SessionPaused {
		countdownStyle = countdownStyle.Foreground(lipgloss.Color(ColorWarning))
	}
	lines = append(lines, countdownStyle.Render(formatCountdown(remaining)))

	lines = append(lines, m.bar.ViewAs(fraction))

	if m.err != nil {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Render(m.err.Error()))
	}

	help := "p pause/resume • c complete • a abandon • q leave running"
	lines = append(lines, lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Render(help))

	content := lipgloss.JoinVertical(lipgloss.Center, interleaveBlank(lines)...)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func formatCountdown(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func interleaveBlank(lines []string) []string {
	out := make([]string, 0, 2*len(lines))
	for i, line := range lines {
		out = append(out, line)
		if i < len(lines)-1 {
			out = append(out, "")
		}
	}
	return out
}
