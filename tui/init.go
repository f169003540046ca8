package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts draining session callbacks, starts the clock and tunes in the start channel.
func (b *bubble) Init() tea.Cmd {
	cmds := []tea.Cmd{b.bridge.waitForEvent(), tick()}

	if start := b.start; start >= 0 {
		cmds = append(cmds, b.load(func() (bool, error) {
			return b.controller.Play(start)
		}))
	}

	return tea.Batch(cmds...)
}
