package session

import (
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/player"
)

func (s *Session) subscribe() {
	s.subs = []player.Subscription{
		s.player.On(player.EventPlay, s.onPlay),
		s.player.On(player.EventPause, s.onPause),
		s.player.On(player.EventComplete, s.onComplete),
		s.player.On(player.EventError, s.onError),
		s.player.On(player.EventBuffering, s.onBuffering),
		s.player.On(player.EventPlayAttemptFailed, s.onPlayAttemptFailed),
	}
}

// onPlay treats playback as proof of recovery, whatever was pending.
func (s *Session) onPlay(player.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.loading.Finish()
	s.recoveredLocked()
	if s.active >= 0 {
		s.resumeHealthLocked()
	}
}

func (s *Session) onPause(player.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health.Stop()
}

// onComplete advances to the next channel, wrapping around after the last one.
func (s *Session) onComplete(player.Event) {
	s.mu.Lock()
	if s.closed || s.active < 0 {
		s.mu.Unlock()
		return
	}

	s.loading.Finish()
	next := (s.active + 1) % s.registry.Len()
	s.mu.Unlock()

	if _, err := s.LoadChannel(next); err != nil {
		log.Warnf("advance to channel %d: %v", next+1, err)
	}
}

func (s *Session) onError(player.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.reconnecting {
		return
	}

	log.Warn("player reported an error")
	s.attemptLocked()
}

func (s *Session) onBuffering(player.Event) {
	playing := s.player.State() == player.StatePlaying

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.loading.Buffering(playing)
}

func (s *Session) onPlayAttemptFailed(player.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.loading.Fail()
}
