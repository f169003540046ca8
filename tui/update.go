package tui

import (
	"fmt"
	"time"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zapper-tv/zapper/internal/ui"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/prefs"
)

// clockMsg refreshes the clock once a second.
type clockMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Process Ephemeral UI Notifications (captures `string` and `ui.ClearNotificationMsg`)
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = tea.Batch(cmd, uiCmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.FocusMsg:
		return b, tea.Batch(cmd, b.setVisible(true))
	case tea.BlurMsg:
		return b, tea.Batch(cmd, b.setVisible(false))
	case clockMsg:
		b.now = time.Time(msg)
		return b, tea.Batch(cmd, tick())
	case statusMsg:
		b.status = msg
		return b, tea.Batch(cmd, b.bridge.waitForEvent())
	case progressMsg:
		b.percent = msg.percent
		b.loading = msg.visible
		return b, tea.Batch(cmd, b.bridge.waitForEvent())
	case bufferMsg:
		b.buffer = string(msg)
		return b, tea.Batch(cmd, b.bridge.waitForEvent())
	case loadedMsg:
		b.refreshList()
		return b, tea.Batch(cmd, b.remember(msg.index), b.bridge.waitForEvent())
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}

		if b.keymap.searching {
			return b, tea.Batch(cmd, b.updateSearch(msg))
		}

		return b, tea.Batch(cmd, b.updateRemote(msg))
	}

	return b, cmd
}

// updateRemote handles keys while the list is not being searched.
func (b *bubble) updateRemote(msg tea.KeyMsg) tea.Cmd {
	switch {
	case bubblesKey.Matches(msg, b.keymap.quit):
		return tea.Quit
	case bubblesKey.Matches(msg, b.keymap.channelUp):
		return b.load(b.controller.Up)
	case bubblesKey.Matches(msg, b.keymap.channelDown):
		return b.load(b.controller.Down)
	case bubblesKey.Matches(msg, b.keymap.browseUp, b.keymap.browseDown):
		var cmd tea.Cmd
		b.channelsC, cmd = b.channelsC.Update(msg)
		return cmd
	case bubblesKey.Matches(msg, b.keymap.digit):
		b.controller.Digit([]rune(msg.String())[0])
	case bubblesKey.Matches(msg, b.keymap.play):
		i := b.selected()
		return b.load(func() (bool, error) {
			return b.controller.Play(i)
		})
	case bubblesKey.Matches(msg, b.keymap.cancel):
		b.controller.Cancel()
	case bubblesKey.Matches(msg, b.keymap.back):
		return b.load(b.controller.Back)
	case bubblesKey.Matches(msg, b.keymap.reconnect):
		return func() tea.Msg {
			b.session.ManualReconnect()
			return nil
		}
	case bubblesKey.Matches(msg, b.keymap.category):
		b.category = b.controller.CycleCategory()
		b.refreshList()
		return ui.Notify("Category: " + b.category)
	case bubblesKey.Matches(msg, b.keymap.search):
		b.keymap.searching = true
		return b.searchC.Focus()
	case bubblesKey.Matches(msg, b.keymap.toggleList):
		b.showList = !b.showList
	case bubblesKey.Matches(msg, b.keymap.toggleGuide):
		b.helpC.ShowAll = !b.helpC.ShowAll
	case bubblesKey.Matches(msg, b.keymap.toggleRemote):
		b.remoteHidden = !b.remoteHidden
		return b.saveRemote(b.remoteHidden)
	}

	return nil
}

// updateSearch feeds the search input and refilters the list as it changes.
func (b *bubble) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case bubblesKey.Matches(msg, b.keymap.acceptSearch):
		b.keymap.searching = false
		b.searchC.Blur()
		return nil
	case bubblesKey.Matches(msg, b.keymap.cancelSearch):
		b.keymap.searching = false
		b.searchC.Blur()
		b.searchC.SetValue("")
		b.controller.SetQuery("")
		b.refreshList()
		return nil
	}

	var cmd tea.Cmd
	before := b.searchC.Value()
	b.searchC, cmd = b.searchC.Update(msg)
	if after := b.searchC.Value(); after != before {
		b.controller.SetQuery(after)
		b.refreshList()
		b.channelsC.ResetSelected()
	}
	return cmd
}

// load runs a channel change off the update loop; loads block on the player.
func (b *bubble) load(f func() (bool, error)) tea.Cmd {
	return func() tea.Msg {
		if _, err := f(); err != nil {
			log.Error(err)
			return err.Error()
		}
		return nil
	}
}

func (b *bubble) setVisible(visible bool) tea.Cmd {
	return func() tea.Msg {
		b.session.SetVisible(visible)
		return nil
	}
}

// remember persists the last channel played so --resume can return to it.
func (b *bubble) remember(index int) tea.Cmd {
	return func() tea.Msg {
		err := prefs.Update(func(p *prefs.Preferences) {
			p.LastChannel = index + 1
		})
		if err != nil {
			log.Warn(err)
		}
		return nil
	}
}

func (b *bubble) saveRemote(hidden bool) tea.Cmd {
	return func() tea.Msg {
		err := prefs.Update(func(p *prefs.Preferences) {
			p.RemoteHidden = hidden
		})
		if err != nil {
			log.Warn(err)
			return fmt.Sprintf("Could not save preferences: %s", err)
		}
		return nil
	}
}
