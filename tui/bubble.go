package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/internal/ui"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/prefs"
	"github.com/zapper-tv/zapper/remote"
	"github.com/zapper-tv/zapper/style"
	"github.com/zapper-tv/zapper/util"
)

// bubble is the single screen of the player: the channel list, what is
// playing, the connection status and the remote.
type bubble struct {
	keymap *keymap

	session    Session
	controller *remote.Controller
	bridge     *Bridge
	start      int

	// components
	channelsC list.Model
	searchC   textinput.Model
	progressC progress.Model
	helpC     help.Model
	notifier  *ui.Model

	status   statusMsg
	percent  float64
	loading  bool
	buffer   string
	category string
	now      time.Time

	showList     bool
	remoteHidden bool

	width, height int
}

func newBubble(options *Options) (*bubble, error) {
	switch {
	case options == nil:
		return nil, errors.New("tui: no options")
	case options.Session == nil, options.Controller == nil, options.Bridge == nil:
		return nil, errors.New("tui: session, controller and bridge are required")
	}

	keymap := newKeymap()
	b := &bubble{
		keymap:     keymap,
		session:    options.Session,
		controller: options.Controller,
		bridge:     options.Bridge,
		start:      options.Start,
		category:   options.Controller.Filter().Category,
		now:        time.Now(),
		showList:   true,
		notifier:   &ui.Model{},
	}

	if saved, err := prefs.Load(); err != nil {
		log.Warn(err)
	} else {
		b.remoteHidden = saved.RemoteHidden
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	b.channelsC = list.New([]list.Item{}, delegate, 0, 0)
	b.channelsC.KeyMap = keymap.forList()
	b.channelsC.Title = "Channels"
	b.channelsC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(style.AccentColor).Padding(0, 1)
	b.channelsC.Styles.NoItems = paddingStyle
	b.channelsC.SetShowHelp(false)
	b.channelsC.SetShowPagination(false)
	b.channelsC.SetShowFilter(false)
	b.channelsC.SetFilteringEnabled(false)
	b.channelsC.SetStatusBarItemName("channel", "channels")

	b.searchC = textinput.New()
	b.searchC.Placeholder = "Channel name"
	b.searchC.CharLimit = 60
	b.searchC.Prompt = "Search: "

	b.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	b.helpC = help.New()

	if w, h, err := util.TerminalSize(); err == nil {
		b.resize(w, h)
	}

	b.refreshList()
	return b, nil
}

// resize propagates terminal dimension changes to all child component models.
func (b *bubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, _ := listExtraPaddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y

	listWidth := width - xx
	b.channelsC.SetSize(listWidth, util.Max(0, b.height-reservedLines))
	b.progressC.Width = util.Min(listWidth, 60)
	b.searchC.Width = listWidth
	b.helpC.Width = listWidth
}

// refreshList rebuilds the list from the controller filter, keeping the
// cursor on the active channel when it is visible.
func (b *bubble) refreshList() {
	active := b.session.State().ActiveIndex
	registry := b.session.Registry()
	visible := b.controller.Visible()

	items := lo.FilterMap(visible, func(i int, _ int) (list.Item, bool) {
		c, ok := registry.Get(i)
		if !ok {
			return nil, false
		}
		return &listItem{index: i, channel: c, active: i == active}, true
	})

	b.channelsC.SetItems(items)
	b.channelsC.Title = "Channels"
	if b.category != "" && b.category != channel.AllCategories {
		b.channelsC.Title = "Channels - " + b.category
	}

	if pos := lo.IndexOf(visible, active); pos >= 0 {
		b.channelsC.Select(pos)
	} else if b.channelsC.Index() >= len(items) {
		b.channelsC.ResetSelected()
	}
}

// selected returns the registry index under the list cursor, or -1.
func (b *bubble) selected() int {
	item, ok := b.channelsC.SelectedItem().(*listItem)
	if !ok {
		return -1
	}
	return item.index
}
