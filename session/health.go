package session

import (
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/sched"
)

// StartHealthCheck (re)starts the periodic probe of the active channel.
// Any running health check is cancelled first.
func (s *Session) StartHealthCheck() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.startHealthLocked()
}

// StopHealthCheck cancels the periodic probe. It is idempotent.
func (s *Session) StopHealthCheck() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health.Stop()
}

func (s *Session) startHealthLocked() {
	s.health.Every(s.healthInterval, s.healthTick)
}

// resumeHealthLocked starts the health check unless the display is hidden.
func (s *Session) resumeHealthLocked() {
	if !s.visible {
		return
	}
	s.startHealthLocked()
}

func (s *Session) healthTick(tok sched.Token) {
	s.mu.Lock()
	if !s.health.Owns(tok) || s.active < 0 || s.reconnecting {
		s.mu.Unlock()
		return
	}

	c, _ := s.registry.Get(s.active)
	ctx := s.ctx
	s.mu.Unlock()

	err := s.prober.Probe(ctx, c.URL)

	s.mu.Lock()
	defer s.mu.Unlock()

	// restarted, stopped or superseded while probing
	if !s.health.Owns(tok) || s.reconnecting {
		return
	}

	if err != nil {
		log.Warnf("health check failed for %s: %v", c.Name, err)
		s.attemptLocked()
		return
	}

	s.status.HideStatus()
}
