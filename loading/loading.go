// Package loading simulates load progress for players that report none.
//
// The bar climbs quickly to 95% on its own and only reaches 100% once the
// player confirms playback. The last 5% is reserved for that confirmation.
package loading

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/zapper-tv/zapper/sched"
)

const (
	// Ceiling is the highest value reached without a confirmation from the player.
	Ceiling = 95.0
	// Done is shown once playback is confirmed.
	Done = 100.0

	minStep   = 5.0
	stepRange = 15.0

	DefaultTick      = 100 * time.Millisecond
	DefaultHideDelay = 200 * time.Millisecond
)

// Renderer displays the overlay. It is called with the simulator lock held
// and must not call back into the simulator.
type Renderer interface {
	Progress(percent float64, visible bool)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(percent float64, visible bool)

// Progress calls f.
func (f RendererFunc) Progress(percent float64, visible bool) {
	f(percent, visible)
}

// Options configures a Simulator. Zero durations take the defaults.
type Options struct {
	Scheduler sched.Scheduler
	Renderer  Renderer
	Tick      time.Duration
	HideDelay time.Duration
	// Rand returns values in [0, 1). Defaults to math/rand.
	Rand func() float64
}

// Simulator owns the loading overlay state: a percentage and a visibility flag.
type Simulator struct {
	mu       sync.Mutex
	renderer Renderer
	random   func() float64
	interval time.Duration
	delay    time.Duration

	tick *sched.Slot
	hide *sched.Slot

	percent float64
	visible bool
}

// New creates a hidden simulator at 0%.
func New(options Options) *Simulator {
	s := &Simulator{
		renderer: options.Renderer,
		random:   options.Rand,
		interval: options.Tick,
		delay:    options.HideDelay,
	}

	if options.Scheduler == nil {
		options.Scheduler = sched.Real()
	}
	if s.renderer == nil {
		s.renderer = RendererFunc(func(float64, bool) {})
	}
	if s.random == nil {
		s.random = rand.Float64
	}
	if s.interval <= 0 {
		s.interval = DefaultTick
	}
	if s.delay <= 0 {
		s.delay = DefaultHideDelay
	}

	s.tick = sched.NewSlot(options.Scheduler)
	s.hide = sched.NewSlot(options.Scheduler)
	return s
}

// Start resets the bar to 0%, shows it and starts climbing.
// Anything left over from a previous load is cancelled.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hide.Stop()
	s.percent = 0
	s.visible = true
	s.render()
	s.tick.Every(s.interval, s.step)
}

// Finish jumps to 100% and hides the bar shortly after.
// It does nothing when no load is being shown.
func (s *Simulator) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick.Stop()
	if !s.visible {
		return
	}

	s.percent = Done
	s.render()
	s.hide.After(s.delay, s.conceal)
}

// Fail hides the bar at once, without reaching 100%.
func (s *Simulator) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick.Stop()
	s.hide.Stop()
	if !s.visible {
		return
	}

	s.visible = false
	s.render()
}

// Buffering restarts the bar when the player stalls outside of playback.
func (s *Simulator) Buffering(playing bool) {
	if playing {
		return
	}
	s.Start()
}

// Stop cancels every timer and hides the bar.
func (s *Simulator) Stop() {
	s.Fail()
}

// Percent returns the displayed value.
func (s *Simulator) Percent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.percent
}

// Visible reports whether the bar is shown.
func (s *Simulator) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Simulator) step(tok sched.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tick.Owns(tok) {
		return
	}

	s.percent = min(Ceiling, s.percent+minStep+s.random()*stepRange)
	s.render()

	if s.percent >= Ceiling {
		s.tick.Stop()
	}
}

func (s *Simulator) conceal(tok sched.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hide.Claim(tok) {
		return
	}

	s.visible = false
	s.render()
}

func (s *Simulator) render() {
	s.renderer.Progress(s.percent, s.visible)
}
