// Package remote turns remote-control style input into channel loads:
// stepping through the visible list and typing channel numbers.
package remote

import (
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/sched"
	"github.com/zapper-tv/zapper/session"
	"github.com/zapper-tv/zapper/util"
)

// DefaultJumpDelay is how long to wait for another digit before committing.
const DefaultJumpDelay = 2 * time.Second

// maxDigits bounds the jump buffer; no registry needs more.
const maxDigits = 6

// Session is the part of session.Session the controller drives.
type Session interface {
	LoadChannel(i int) (bool, error)
	ForceLoad(i int) (bool, error)
	State() session.State
}

// Options configures a Controller.
type Options struct {
	Registry  *channel.Registry
	Session   Session
	Scheduler sched.Scheduler
	JumpDelay time.Duration
	Fuzzy     bool
	// OnBuffer is called with the pending digits whenever they change,
	// including with "" once they are committed or cancelled.
	OnBuffer func(digits string)
}

// Controller maps navigation keys onto the session.
type Controller struct {
	mu       sync.Mutex
	registry *channel.Registry
	session  Session
	delay    time.Duration
	onBuffer func(string)

	filter  channel.Filter
	jump    *sched.Slot
	buffer  string
	history util.Stack[int]
}

// New creates a controller showing every channel.
func New(options Options) *Controller {
	if options.Scheduler == nil {
		options.Scheduler = sched.Real()
	}
	if options.JumpDelay <= 0 {
		options.JumpDelay = DefaultJumpDelay
	}
	if options.OnBuffer == nil {
		options.OnBuffer = func(string) {}
	}

	return &Controller{
		registry: options.Registry,
		session:  options.Session,
		delay:    options.JumpDelay,
		onBuffer: options.OnBuffer,
		filter:   channel.Filter{Category: channel.AllCategories, Fuzzy: options.Fuzzy},
		jump:     sched.NewSlot(options.Scheduler),
	}
}

// Visible returns the registry indexes passing the current filter.
func (c *Controller) Visible() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Filter(c.filter)
}

// Filter returns the current filter.
func (c *Controller) Filter() channel.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// SetCategory restricts the list to one category, or to none with channel.AllCategories.
func (c *Controller) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Category = category
}

// CycleCategory moves to the next category, going through "all" after the
// last one, and returns it.
func (c *Controller) CycleCategory() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	cycle := append([]string{channel.AllCategories}, c.registry.Categories()...)
	_, i, found := lo.FindIndexOf(cycle, func(category string) bool {
		return category == c.filter.Category
	})
	if !found {
		i = 0
	}

	c.filter.Category = cycle[(i+1)%len(cycle)]
	return c.filter.Category
}

// SetQuery filters channel names.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Query = query
}

// Up loads the visible channel above the active one.
func (c *Controller) Up() (bool, error) {
	return c.step(-1)
}

// Down loads the visible channel below the active one.
func (c *Controller) Down() (bool, error) {
	return c.step(+1)
}

// step does nothing at either end of the list, or when the active channel is filtered out.
func (c *Controller) step(delta int) (bool, error) {
	visible := c.Visible()
	active := c.session.State().ActiveIndex

	pos := lo.IndexOf(visible, active)
	if pos < 0 {
		return false, nil
	}

	next := pos + delta
	if next < 0 || next >= len(visible) {
		return false, nil
	}

	return c.load(visible[next], false)
}

// Play loads channel i. With nothing active and i < 0, the first visible
// channel is played instead.
func (c *Controller) Play(i int) (bool, error) {
	if i < 0 {
		if c.session.State().ActiveIndex >= 0 {
			return false, nil
		}

		visible := c.Visible()
		if len(visible) == 0 {
			return false, nil
		}
		i = visible[0]
	}

	return c.load(i, false)
}

// Back returns to the channel watched before the current one, like the
// recall button of a TV remote. Channels gone from the registry are skipped.
func (c *Controller) Back() (bool, error) {
	active := c.session.State().ActiveIndex

	c.mu.Lock()
	previous := -1
	for c.history.Len() > 0 {
		i := c.history.Pop()
		if i != active && i < c.registry.Len() {
			previous = i
			break
		}
	}
	c.mu.Unlock()

	if previous < 0 {
		return false, nil
	}
	// Straight to the session: going back must not push the channel left behind.
	return c.session.LoadChannel(previous)
}

// load switches channels and remembers the one left behind for Back.
func (c *Controller) load(i int, force bool) (bool, error) {
	active := c.session.State().ActiveIndex

	var (
		loaded bool
		err    error
	)
	if force {
		loaded, err = c.session.ForceLoad(i)
	} else {
		loaded, err = c.session.LoadChannel(i)
	}

	if loaded && active >= 0 && active != i {
		c.mu.Lock()
		c.history.Push(active)
		c.mu.Unlock()
	}
	return loaded, err
}

// Digit appends d to the channel number being typed and restarts the commit delay.
// Anything but 0-9 is ignored.
func (c *Controller) Digit(d rune) {
	if d < '0' || d > '9' {
		return
	}

	c.mu.Lock()
	if len(c.buffer) >= maxDigits {
		c.buffer = c.buffer[1:]
	}
	c.buffer += string(d)
	buffer := c.buffer
	c.jump.After(c.delay, c.commit)
	c.mu.Unlock()

	c.onBuffer(buffer)
}

// Cancel drops the digits typed so far.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.jump.Stop()
	pending := c.buffer != ""
	c.buffer = ""
	c.mu.Unlock()

	if pending {
		c.onBuffer("")
	}
}

// Buffer returns the digits typed so far.
func (c *Controller) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// commit jumps to the typed channel number. Numbers past the end of the
// registry are dropped; the active channel is restarted.
func (c *Controller) commit(tok sched.Token) {
	c.mu.Lock()
	if !c.jump.Claim(tok) {
		c.mu.Unlock()
		return
	}

	buffer := c.buffer
	c.buffer = ""
	c.mu.Unlock()

	c.onBuffer("")

	n, err := strconv.Atoi(buffer)
	if err != nil {
		return
	}

	size := c.registry.Len()
	target := min(n-1, size-1)
	if target < 0 || n > size {
		log.Debugf("no channel %d", n)
		return
	}

	_, err = c.load(target, target == c.session.State().ActiveIndex)

	if err != nil {
		log.Warnf("jump to channel %d: %v", n, err)
	}
}
