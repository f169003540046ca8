package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/zapper-tv/zapper/color"
	"github.com/zapper-tv/zapper/constant"
	"github.com/zapper-tv/zapper/icon"
	"github.com/zapper-tv/zapper/style"
	"github.com/zapper-tv/zapper/util"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
	remoteStyle           = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(style.BorderColor).Padding(0, 1)
)

// reservedLines is what the header, status, loading bar, remote and help take below the list.
const reservedLines = 12

func (b *bubble) View() string {
	lines := []string{b.viewHeader(), ""}

	if b.showList {
		lines = append(lines, listExtraPaddingStyle.Render(b.channelsC.View()))
	}

	lines = append(lines, b.viewNowPlaying())

	if status := b.viewStatus(); status != "" {
		lines = append(lines, status)
	}

	if b.loading {
		lines = append(lines, fmt.Sprintf("%s %s %3.0f%%", icon.Get(icon.Progress), b.progressC.ViewAs(b.percent/100), b.percent))
	}

	if b.keymap.searching {
		lines = append(lines, "", b.searchC.View())
	}

	if !b.remoteHidden {
		lines = append(lines, "", b.viewRemote())
	}

	return b.notifier.View(b.renderLines(true, lines))
}

func (b *bubble) viewHeader() string {
	title := style.Title(constant.Zapper)
	clock := style.Faint(fmt.Sprintf("%s %s", icon.Get(icon.Clock), b.now.Format("15:04:05")))

	gap := util.Max(1, b.width-lipgloss.Width(title)-lipgloss.Width(clock))
	return title + strings.Repeat(" ", gap) + clock
}

func (b *bubble) viewNowPlaying() string {
	state := b.session.State()
	c, ok := b.session.Registry().Get(state.ActiveIndex)
	if !ok {
		return style.Faint("Nothing playing")
	}

	return fmt.Sprintf(
		"%s %s %s %s",
		icon.Get(icon.Channel),
		style.Fg(style.AccentColor)(fmt.Sprintf("%d", state.ActiveIndex+1)),
		style.Bold(c.Name),
		style.Tag(style.Base, style.SecondaryColor)(c.Category),
	)
}

// viewStatus renders the reconnection message, wrapped to the terminal width.
func (b *bubble) viewStatus() string {
	var text string
	switch b.status.kind {
	case statusReconnecting:
		text = fmt.Sprintf(
			"%s Reconnecting... #%d %s",
			icon.Get(icon.Signal),
			b.status.attempts,
			style.Faint("Attempting to restore connection"),
		)
		text = style.Fg(style.WarningColor)(text)
	case statusLost:
		text = fmt.Sprintf(
			"%s Connection lost after %s. Press r to try again",
			icon.Get(icon.Lost),
			util.Quantify(b.status.attempts, "attempt", "attempts"),
		)
		text = style.Fg(color.Red)(text)
	default:
		return ""
	}

	if b.width > 0 {
		text = wrap.String(text, b.width)
	}
	return text
}

// viewRemote draws the remote hint panel with the channel number being typed.
func (b *bubble) viewRemote() string {
	digits := b.buffer
	if digits == "" {
		digits = "-"
	}

	lines := []string{
		fmt.Sprintf("%s CH %s", icon.Get(icon.Remote), style.Bold(digits)),
		style.Faint("↑/↓ zap  0-9 jump  c " + b.category),
	}
	return remoteStyle.Render(strings.Join(lines, "\n"))
}

func (b *bubble) renderLines(addHelp bool, lines []string) string {
	l := strings.Join(lines, "\n")
	if addHelp {
		if h := lipgloss.Height(l); b.height > h+1 {
			l += strings.Repeat("\n", b.height-h-1)
		}
		l += "\n" + b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
