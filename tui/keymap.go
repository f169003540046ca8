package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
)

// keymap defines the remote-control keys and the few needed while searching.
type keymap struct {
	searching bool

	quit, forceQuit,
	channelUp, channelDown,
	browseUp, browseDown,
	toggleList, toggleGuide, toggleRemote,
	digit, play, cancel, back,
	reconnect, category,
	search, acceptSearch, cancelSearch key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		channelUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous channel"),
		),
		channelDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next channel"),
		),
		browseUp: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "browse up"),
		),
		browseDown: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "browse down"),
		),
		toggleList: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "toggle list"),
		),
		toggleGuide: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "toggle guide"),
		),
		toggleRemote: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle remote"),
		),
		digit: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("0-9", "jump to channel"),
		),
		play: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "play selected"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel jump"),
		),
		back: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "previous watched"),
		),
		reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reconnect"),
		),
		category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "next category"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		acceptSearch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "done"),
		),
		cancelSearch: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
	}
}

func (k *keymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	if k.searching {
		return h(k.acceptSearch, k.cancelSearch), h(k.acceptSearch, k.cancelSearch, k.forceQuit)
	}

	return h(k.channelUp, k.channelDown, k.digit, k.play, k.reconnect, k.quit),
		h(
			k.channelUp, k.channelDown, k.browseUp, k.browseDown,
			k.digit, k.play, k.cancel, k.back,
			k.reconnect, k.category, k.search,
			k.toggleList, k.toggleGuide, k.toggleRemote,
			k.quit,
		)
}

// ShortHelp implements help.KeyMap.
func (k *keymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

// FullHelp implements help.KeyMap.
func (k *keymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

// forList leaves the list only its cursor; everything else is handled by the bubble.
func (k *keymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:   k.browseUp,
		CursorDown: k.browseDown,
	}
}
