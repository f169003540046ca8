package sched_test

import (
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zapper-tv/zapper/sched"
	"github.com/zapper-tv/zapper/sched/schedtest"
)

func TestSlot(t *testing.T) {
	Convey("Given a slot on a virtual clock", t, func() {
		clock := schedtest.New()
		slot := sched.NewSlot(clock)

		Convey("Re-arming cancels the previous timer", func() {
			var first, second int
			slot.Every(10*time.Second, func(sched.Token) { first++ })
			slot.Every(10*time.Second, func(sched.Token) { second++ })

			clock.Advance(30 * time.Second)
			So(first, ShouldEqual, 0)
			So(second, ShouldEqual, 3)
			So(clock.Pending(), ShouldEqual, 1)
		})

		Convey("Stop is idempotent", func() {
			slot.After(time.Second, func(sched.Token) {})
			So(slot.Stop(), ShouldBeTrue)
			So(slot.Stop(), ShouldBeFalse)
			So(slot.Active(), ShouldBeFalse)
			So(clock.Pending(), ShouldEqual, 0)
		})

		Convey("Claiming a one-shot token empties the slot", func() {
			var claimed bool
			slot.After(time.Second, func(tok sched.Token) { claimed = slot.Claim(tok) })

			clock.Advance(time.Second)
			So(claimed, ShouldBeTrue)
			So(slot.Active(), ShouldBeFalse)
		})

		Convey("Stale tokens are refused", func() {
			old := slot.After(time.Second, func(sched.Token) {})
			slot.After(time.Second, func(sched.Token) {})
			So(slot.Owns(old), ShouldBeFalse)
			So(slot.Claim(old), ShouldBeFalse)
		})

		Convey("Recurring tokens stay valid across ticks", func() {
			var ticks int
			slot.Every(time.Second, func(tok sched.Token) {
				if slot.Claim(tok) {
					ticks++
				}
			})

			clock.Advance(5 * time.Second)
			So(ticks, ShouldEqual, 5)
			So(slot.Active(), ShouldBeTrue)
		})
	})
}

func TestFake(t *testing.T) {
	Convey("Given a virtual clock", t, func() {
		clock := schedtest.New()

		Convey("Timers fire in due order and see the virtual time", func() {
			var order []time.Duration
			clock.After(3*time.Second, func() { order = append(order, clock.Now()) })
			clock.After(1*time.Second, func() { order = append(order, clock.Now()) })

			clock.Advance(5 * time.Second)
			So(order, ShouldResemble, []time.Duration{time.Second, 3 * time.Second})
			So(clock.Now(), ShouldEqual, 5*time.Second)
		})

		Convey("Timers armed by callbacks fire within the same advance", func() {
			var fired bool
			clock.After(time.Second, func() {
				clock.After(time.Second, func() { fired = true })
			})

			clock.Advance(2 * time.Second)
			So(fired, ShouldBeTrue)
			So(clock.Fired(), ShouldEqual, 2)
		})
	})
}

func TestReal(t *testing.T) {
	Convey("Given the runtime scheduler", t, func() {
		s := sched.Real()

		Convey("After fires once", func() {
			done := make(chan struct{})
			s.After(time.Millisecond, func() { close(done) })

			select {
			case <-done:
			case <-time.After(time.Second):
				So("timer did not fire", ShouldBeEmpty)
			}
		})

		Convey("Every stops firing after Stop", func() {
			var count atomic.Int32
			timer := s.Every(time.Millisecond, func() { count.Add(1) })
			time.Sleep(20 * time.Millisecond)
			timer.Stop()
			timer.Stop()

			time.Sleep(5 * time.Millisecond)
			settled := count.Load()
			time.Sleep(20 * time.Millisecond)
			So(count.Load(), ShouldEqual, settled)
			So(settled, ShouldBeGreaterThan, 0)
		})
	})
}
