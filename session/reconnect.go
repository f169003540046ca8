package session

import (
	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/player"
	"github.com/zapper-tv/zapper/sched"
)

// AttemptReconnection counts an attempt and schedules a connectivity probe,
// replacing any probe already pending.
func (s *Session) AttemptReconnection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.attemptLocked()
}

func (s *Session) attemptLocked() {
	s.reconnecting = true

	if s.maxAttempts > 0 && s.attempts >= s.maxAttempts {
		s.reconnect.Stop()
		if !s.lost {
			s.lost = true
			log.Warnf("giving up after %d reconnection attempts", s.attempts)
		}
		s.status.ShowLost(s.attempts)
		return
	}

	s.attempts++
	log.Infof("reconnecting, attempt %d", s.attempts)
	s.status.ShowReconnecting(s.attempts)
	s.reconnect.After(s.reconnectDelay, s.connectivityProbe)
}

// connectivityProbe checks that the network itself is back before reloading.
func (s *Session) connectivityProbe(tok sched.Token) {
	s.mu.Lock()
	if !s.reconnect.Claim(tok) {
		s.mu.Unlock()
		return
	}
	ctx, epoch := s.ctx, s.epoch
	s.mu.Unlock()

	err := s.prober.Probe(ctx, s.connectivityURL)

	s.mu.Lock()
	if s.closed || s.epoch != epoch || !s.reconnecting || s.reconnect.Active() {
		s.mu.Unlock()
		return
	}

	if err != nil {
		log.Debugf("network still down: %v", err)
		s.attemptLocked()
		s.mu.Unlock()
		return
	}

	// The reload starts under the same lock as the epoch check, so a channel
	// picked by the user in the meantime is never overwritten.
	active := s.active
	var (
		c       channel.Channel
		started bool
		loadAt  uint64
	)
	if active >= 0 {
		c, loadAt, started, _ = s.beginLoadLocked(active, false)
	}
	if started {
		epoch = loadAt
	}
	s.mu.Unlock()

	log.Info("network is back")
	if started {
		_ = s.finishLoad(active, c, epoch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && s.epoch == epoch {
		s.grace.After(s.reconnectGrace, s.graceCheck)
	}
}

// graceCheck confirms that playback resumed after a reload. If it did not,
// nothing more is done here: the health monitor or a player error will
// start the next round.
func (s *Session) graceCheck(tok sched.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.grace.Claim(tok) {
		return
	}

	if s.player.State() != player.StatePlaying {
		log.Warn("playback did not resume after reconnecting")
		return
	}

	s.recoveredLocked()
}

func (s *Session) recoveredLocked() {
	s.attempts = 0
	s.reconnecting = false
	s.lost = false
	s.reconnect.Stop()
	s.status.HideStatus()
}

// ManualReconnect resets the state machine and reloads the active channel,
// even after the attempt limit was hit.
func (s *Session) ManualReconnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.attempts = 0
	s.reconnecting = false
	s.lost = false
	s.reconnect.Stop()
	s.grace.Stop()
	active := s.active
	s.mu.Unlock()

	if active < 0 {
		return
	}

	if _, err := s.ForceLoad(active); err != nil {
		log.Warnf("manual reconnect: %v", err)
	}
}
