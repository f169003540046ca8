package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zapper-tv/zapper/channel"
)

// statusKind selects how the status line is drawn.
type statusKind int

const (
	statusNone statusKind = iota
	statusReconnecting
	statusLost
)

// statusMsg replaces the status line.
type statusMsg struct {
	kind     statusKind
	attempts int
}

// progressMsg carries a loading overlay frame.
type progressMsg struct {
	percent float64
	visible bool
}

// bufferMsg carries the digits of a pending numeric jump.
type bufferMsg string

// loadedMsg reports a finished channel load.
type loadedMsg struct {
	index   int
	channel channel.Channel
}

// mailbox holds the latest undelivered message of one kind.
type mailbox[T any] struct {
	mu sync.Mutex
	c  chan T
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{c: make(chan T, 1)}
}

// put replaces any undelivered message and never blocks.
func (m *mailbox[T]) put(msg T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.c:
	default:
	}
	m.c <- msg
}

// Bridge carries session, overlay and controller callbacks into the bubbletea
// program. Callbacks may come from any goroutine, some with session locks held,
// so they only post to a mailbox per message kind; only the latest message of
// each kind matters to the screen. The program drains them with waitForEvent.
type Bridge struct {
	status   *mailbox[statusMsg]
	progress *mailbox[progressMsg]
	buffer   *mailbox[bufferMsg]
	loaded   *mailbox[loadedMsg]

	done chan struct{}
	once sync.Once
}

// NewBridge creates a bridge with empty mailboxes.
func NewBridge() *Bridge {
	return &Bridge{
		status:   newMailbox[statusMsg](),
		progress: newMailbox[progressMsg](),
		buffer:   newMailbox[bufferMsg](),
		loaded:   newMailbox[loadedMsg](),
		done:     make(chan struct{}),
	}
}

// Close releases a pending waitForEvent once nothing drains the mailboxes any more.
func (b *Bridge) Close() {
	b.once.Do(func() {
		close(b.done)
	})
}

// ShowReconnecting implements session.StatusSink.
func (b *Bridge) ShowReconnecting(attempt int) {
	b.status.put(statusMsg{kind: statusReconnecting, attempts: attempt})
}

// ShowLost implements session.StatusSink.
func (b *Bridge) ShowLost(attempts int) {
	b.status.put(statusMsg{kind: statusLost, attempts: attempts})
}

// HideStatus implements session.StatusSink.
func (b *Bridge) HideStatus() {
	b.status.put(statusMsg{kind: statusNone})
}

// Progress implements loading.Renderer.
func (b *Bridge) Progress(percent float64, visible bool) {
	b.progress.put(progressMsg{percent: percent, visible: visible})
}

// Buffer is the controller's OnBuffer callback.
func (b *Bridge) Buffer(digits string) {
	b.buffer.put(bufferMsg(digits))
}

// Loaded is a session AfterLoad hook.
func (b *Bridge) Loaded(index int, c channel.Channel) {
	b.loaded.put(loadedMsg{index: index, channel: c})
}

// waitForEvent delivers the next pending callback to Update.
func (b *Bridge) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.status.c:
			return msg
		case msg := <-b.progress.c:
			return msg
		case msg := <-b.buffer.c:
			return msg
		case msg := <-b.loaded.c:
			return msg
		case <-b.done:
			return nil
		}
	}
}
