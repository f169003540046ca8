// Package ui provides internal state management and rendering utilities for ephemeral terminal notifications.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Lifetime is how long a notification stays on screen.
const Lifetime = 3 * time.Second

// Model encapsulates the state for displaying non-blocking terminal alerts.
type Model struct {
	notification string
	// generation ties a clear request to the notification that scheduled it,
	// so an old timer does not wipe a newer message.
	generation int
}

// ClearNotificationMsg is a Bubbletea message used to reset the visual notification state.
type ClearNotificationMsg struct {
	generation int
}

// Notify returns a tea.Cmd that shows text as a notification.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return text
	}
}

// clearNotification returns a delayed tea.Cmd that clears the notification after Lifetime.
func clearNotification(generation int) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{generation: generation}
	})
}

// Notification returns the text currently shown, if any.
func (m *Model) Notification() string {
	return m.notification
}

// Update processes incoming messages to modify the notification state.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case string:
		if msg == "" {
			return nil
		}
		m.notification = msg
		m.generation++
		return clearNotification(m.generation)
	case ClearNotificationMsg:
		if msg.generation == m.generation {
			m.notification = ""
		}
		return nil
	}
	return nil
}

// View injects the current notification message into the terminal view buffer.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	// Standardize on a low-intensity ANSI escape sequence to minimize visual noise.
	lines := strings.Split(mainContent, "\n")
	notifier := "\033[90m" + m.notification + "\033[0m"

	if len(lines) > 0 {
		lines[len(lines)-1] = lines[len(lines)-1] + "  " + notifier
	}
	return strings.Join(lines, "\n")
}
