package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"tidydo/internal/models"
	"tidydo/internal/service"
)

// RunFocusTUI shows the interactive countdown for the active session.
func RunFocusTUI(sessions *service.SessionService, session *models.PomodoroSession, task *models.Task) error {
	model := NewFocusModel(sessions, session, task)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := finalModel.(FocusModel); ok {
		switch {
		case m.outcome == "completed":
			fmt.Printf("✅ Session completed: %dm focused\n", m.session.ActualSeconds/60)
		case m.outcome == "abandoned":
			fmt.Printf("🗑  Session abandoned after %dm\n", m.session.ActualSeconds/60)
		case m.exiting:
			fmt.Println("⏱️  Session still running. Use 'tidydo focus status' to check on it.")
		}
	}

	return nil
}
