package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/icon"
	"github.com/zapper-tv/zapper/style"
)

// listItem implements the list.Item interface for one registry entry.
type listItem struct {
	index   int
	channel channel.Channel
	active  bool
}

// Title retrieves the channel number and name.
func (t *listItem) Title() string {
	title := fmt.Sprintf("%3d  %s", t.index+1, t.channel.Name)
	if t.active {
		title = fmt.Sprintf("%s %s", title, lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Channel)))
	}
	return title
}

// Description retrieves the category and stream kind.
func (t *listItem) Description() string {
	description := "     " + t.channel.Category
	if t.channel.Type == channel.TypeMPD {
		description += " " + style.Faint("• dash")
	}
	return description
}

// FilterValue returns the channel name.
func (t *listItem) FilterValue() string {
	return t.channel.Name
}
