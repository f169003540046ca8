package sched

import "time"

// Token identifies one arming of a Slot.
type Token uint64

// Slot owns at most one outstanding timer: arming it cancels whatever it
// held before. A Slot is not safe for concurrent use. Its owner guards it
// with the same lock that protects the state the callback mutates, and the
// callback must Claim its token under that lock before acting, because a
// runtime timer can fire after Stop returned.
type Slot struct {
	sched   Scheduler
	timer   Timer
	token   Token
	oneShot bool
}

// NewSlot returns an empty slot creating timers with s.
func NewSlot(s Scheduler) *Slot {
	return &Slot{sched: s}
}

// After cancels the current timer and arms a one-shot one.
func (s *Slot) After(d time.Duration, fn func(Token)) Token {
	s.Stop()
	s.token++
	tok := s.token
	s.oneShot = true
	s.timer = s.sched.After(d, func() { fn(tok) })
	return tok
}

// Every cancels the current timer and arms a recurring one.
func (s *Slot) Every(d time.Duration, fn func(Token)) Token {
	s.Stop()
	s.token++
	tok := s.token
	s.oneShot = false
	s.timer = s.sched.Every(d, func() { fn(tok) })
	return tok
}

// Stop cancels the current timer and reports whether one was armed.
func (s *Slot) Stop() bool {
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.token++
	return true
}

// Active reports whether a timer is armed.
func (s *Slot) Active() bool {
	return s.timer != nil
}

// Owns reports whether tok belongs to the armed timer, without consuming it.
func (s *Slot) Owns(tok Token) bool {
	return s.timer != nil && tok == s.token
}

// Claim reports whether tok belongs to the armed timer. Claiming a one-shot
// timer empties the slot.
func (s *Slot) Claim(tok Token) bool {
	if !s.Owns(tok) {
		return false
	}
	if s.oneShot {
		s.timer = nil
		s.token++
	}
	return true
}
