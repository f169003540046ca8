// Package session owns what is playing: the active channel, the health
// monitor watching it and the reconnection state machine that takes over
// when it is lost.
//
// Every mutation happens under one lock. Timer callbacks and player events
// take that lock and check the token of the slot that scheduled them, so a
// callback that lost a race with a cancellation does nothing. Probes and
// player reconfiguration run with the lock released.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/player"
	"github.com/zapper-tv/zapper/probe"
	"github.com/zapper-tv/zapper/sched"
)

const (
	DefaultHealthInterval  = 10 * time.Second
	DefaultReconnectDelay  = 3 * time.Second
	DefaultReconnectGrace  = 2 * time.Second
	DefaultConnectivityURL = "https://www.google.com/favicon.ico"
)

// ErrNoSuchChannel is returned for indexes outside the registry.
var ErrNoSuchChannel = errors.New("no such channel")

// State is a snapshot of the session.
type State struct {
	// ActiveIndex is the requested channel, -1 when none.
	ActiveIndex  int
	Reconnecting bool
	Attempts     int
	// Lost is set once the attempt limit is hit. Only a manual reconnect or
	// the player resuming on its own clears it.
	Lost bool
}

// StatusSink displays the connection status. Calls are made with the session
// lock held; implementations must not call back into the session.
type StatusSink interface {
	ShowReconnecting(attempt int)
	ShowLost(attempts int)
	HideStatus()
}

// Overlay is the loading indicator driven by load requests and player events.
// The same locking rule as StatusSink applies.
type Overlay interface {
	Start()
	Finish()
	Fail()
	Buffering(playing bool)
	Stop()
}

// Hook observes a channel load. Hooks run without the session lock.
type Hook func(index int, c channel.Channel)

// Hooks run around every load that reaches the player, in order.
type Hooks struct {
	BeforeLoad []Hook
	AfterLoad  []Hook
}

// Options configures a Session. Registry and Player are required; zero
// values elsewhere take the defaults.
type Options struct {
	Registry  *channel.Registry
	Player    player.Adapter
	Scheduler sched.Scheduler
	Prober    probe.Prober
	Status    StatusSink
	Loading   Overlay
	Hooks     Hooks

	HealthInterval  time.Duration
	ReconnectDelay  time.Duration
	ReconnectGrace  time.Duration
	ConnectivityURL string
	// MaxAttempts stops retrying after that many attempts. 0 retries forever.
	MaxAttempts int
}

// Session drives a single player for a single display.
type Session struct {
	mu sync.Mutex

	registry *channel.Registry
	player   player.Adapter
	prober   probe.Prober
	status   StatusSink
	loading  Overlay
	hooks    Hooks
	subs     []player.Subscription

	healthInterval  time.Duration
	reconnectDelay  time.Duration
	reconnectGrace  time.Duration
	connectivityURL string
	maxAttempts     int

	health    *sched.Slot
	reconnect *sched.Slot
	grace     *sched.Slot

	ctx    context.Context
	cancel context.CancelFunc

	active       int
	reconnecting bool
	attempts     int
	lost         bool
	visible      bool
	closed       bool
	// epoch changes on every load and teardown; async results from an older epoch are dropped
	epoch uint64
}

// New creates a session with nothing playing and subscribes to the player's events.
func New(options Options) (*Session, error) {
	if options.Registry == nil {
		return nil, errors.New("session: no channel registry")
	}
	if options.Player == nil {
		return nil, errors.New("session: no player")
	}

	if options.Scheduler == nil {
		options.Scheduler = sched.Real()
	}
	if options.Prober == nil {
		options.Prober = probe.New(0)
	}
	if options.Status == nil {
		options.Status = discardStatus{}
	}
	if options.Loading == nil {
		options.Loading = discardOverlay{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		registry:        options.Registry,
		player:          options.Player,
		prober:          options.Prober,
		status:          options.Status,
		loading:         options.Loading,
		hooks:           options.Hooks,
		healthInterval:  orDefault(options.HealthInterval, DefaultHealthInterval),
		reconnectDelay:  orDefault(options.ReconnectDelay, DefaultReconnectDelay),
		reconnectGrace:  orDefault(options.ReconnectGrace, DefaultReconnectGrace),
		connectivityURL: options.ConnectivityURL,
		maxAttempts:     max(options.MaxAttempts, 0),
		health:          sched.NewSlot(options.Scheduler),
		reconnect:       sched.NewSlot(options.Scheduler),
		grace:           sched.NewSlot(options.Scheduler),
		ctx:             ctx,
		cancel:          cancel,
		active:          -1,
		visible:         true,
	}

	if s.connectivityURL == "" {
		s.connectivityURL = DefaultConnectivityURL
	}

	s.subscribe()
	return s, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Registry returns the channels the session indexes into.
func (s *Session) Registry() *channel.Registry {
	return s.registry
}

// State returns a snapshot of the playback state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		ActiveIndex:  s.active,
		Reconnecting: s.reconnecting,
		Attempts:     s.attempts,
		Lost:         s.lost,
	}
}

// LoadChannel switches to channel i. Requesting the active channel while no
// reconnection is running does nothing and reports false.
func (s *Session) LoadChannel(i int) (bool, error) {
	return s.load(i, false)
}

// ForceLoad switches to channel i even when it is already active.
func (s *Session) ForceLoad(i int) (bool, error) {
	return s.load(i, true)
}

func (s *Session) load(i int, force bool) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, nil
	}
	c, epoch, started, err := s.beginLoadLocked(i, force)
	s.mu.Unlock()

	if !started {
		return false, err
	}
	return true, s.finishLoad(i, c, epoch)
}

// beginLoadLocked makes channel i active and cancels everything tied to the
// previous one. started is false when there is nothing to load.
func (s *Session) beginLoadLocked(i int, force bool) (c channel.Channel, epoch uint64, started bool, err error) {
	c, ok := s.registry.Get(i)
	if !ok {
		return c, 0, false, fmt.Errorf("load channel %d: %w", i+1, ErrNoSuchChannel)
	}

	if !force && i == s.active && !s.reconnecting {
		return c, 0, false, nil
	}

	s.active = i
	s.attempts = 0
	s.reconnecting = false
	s.lost = false
	s.epoch++

	s.reconnect.Stop()
	s.grace.Stop()
	s.health.Stop()

	s.loading.Start()
	s.status.HideStatus()
	return c, s.epoch, true, nil
}

// finishLoad configures the player for a load begun at epoch. It runs without the lock.
func (s *Session) finishLoad(i int, c channel.Channel, epoch uint64) error {
	for _, hook := range s.hooks.BeforeLoad {
		hook(i, c)
	}

	log.Infof("loading channel %d: %s", i+1, c.Name)
	err := s.player.Setup(player.ConfigFor(c))
	if err != nil {
		log.Warnf("channel %d: %v", i+1, err)
	}

	s.mu.Lock()
	if !s.closed && s.epoch == epoch {
		s.resumeHealthLocked()
	}
	s.mu.Unlock()

	for _, hook := range s.hooks.AfterLoad {
		hook(i, c)
	}

	return err
}

// SetVisible pauses the health monitor while the display is hidden and
// resumes it when it comes back, unless a reconnection is running.
func (s *Session) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.visible == visible {
		return
	}
	s.visible = visible

	if !visible {
		s.health.Stop()
		return
	}

	if s.active >= 0 && !s.reconnecting {
		s.startHealthLocked()
	}
}

// Close cancels every timer, abandons in-flight probes and removes the
// player. Any call made afterwards is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	s.epoch++
	s.health.Stop()
	s.reconnect.Stop()
	s.grace.Stop()
	s.loading.Stop()
	s.cancel()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		s.player.Off(sub)
	}

	return s.player.Remove()
}

type discardStatus struct{}

func (discardStatus) ShowReconnecting(int) {}
func (discardStatus) ShowLost(int)         {}
func (discardStatus) HideStatus()          {}

type discardOverlay struct{}

func (discardOverlay) Start()         {}
func (discardOverlay) Finish()        {}
func (discardOverlay) Fail()          {}
func (discardOverlay) Buffering(bool) {}
func (discardOverlay) Stop()          {}
