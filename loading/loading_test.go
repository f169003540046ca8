package loading

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zapper-tv/zapper/sched/schedtest"
)

type frame struct {
	percent float64
	visible bool
}

type recorder struct {
	frames []frame
}

func (r *recorder) Progress(percent float64, visible bool) {
	r.frames = append(r.frames, frame{percent, visible})
}

func (r *recorder) last() frame {
	return r.frames[len(r.frames)-1]
}

func constant(v float64) func() float64 {
	return func() float64 { return v }
}

func TestSimulator(t *testing.T) {
	Convey("Given a simulator on a virtual clock", t, func() {
		clock := schedtest.New()
		screen := &recorder{}
		random := 0.5

		sim := New(Options{
			Scheduler: clock,
			Renderer:  screen,
			Rand:      func() float64 { return random },
		})

		So(sim.Visible(), ShouldBeFalse)

		Convey("When a load starts", func() {
			sim.Start()

			Convey("It shows 0% at once", func() {
				So(screen.last(), ShouldResemble, frame{0, true})
			})

			Convey("Each tick adds between 5 and 20", func() {
				clock.Advance(DefaultTick)
				So(sim.Percent(), ShouldEqual, 12.5)
			})

			Convey("The value never decreases and saturates at the ceiling", func() {
				random = 0.99
				clock.Advance(5 * time.Second)

				for i := 1; i < len(screen.frames); i++ {
					So(screen.frames[i].percent, ShouldBeGreaterThanOrEqualTo, screen.frames[i-1].percent)
					So(screen.frames[i].percent, ShouldBeLessThanOrEqualTo, Ceiling)
				}
				So(sim.Percent(), ShouldEqual, Ceiling)
			})

			Convey("Ticking stops once the ceiling is reached", func() {
				clock.Advance(5 * time.Second)
				So(clock.Pending(), ShouldEqual, 0)
			})

			Convey("When playback is confirmed", func() {
				clock.Advance(3 * DefaultTick)
				sim.Finish()

				Convey("It shows 100% and hides after the delay", func() {
					So(screen.last(), ShouldResemble, frame{Done, true})

					clock.Advance(DefaultHideDelay - time.Millisecond)
					So(sim.Visible(), ShouldBeTrue)

					clock.Advance(time.Millisecond)
					So(screen.last(), ShouldResemble, frame{Done, false})
				})

				Convey("No tick runs afterwards", func() {
					frames := len(screen.frames)
					clock.Advance(DefaultTick)
					So(screen.frames, ShouldHaveLength, frames)
					So(sim.Percent(), ShouldEqual, Done)
				})
			})

			Convey("When the attempt fails", func() {
				clock.Advance(DefaultTick)
				sim.Fail()

				Convey("It hides at once below 100%", func() {
					So(screen.last().visible, ShouldBeFalse)
					So(screen.last().percent, ShouldBeLessThan, Done)
					So(clock.Pending(), ShouldEqual, 0)
				})
			})

			Convey("When a second load starts before the first finished", func() {
				clock.Advance(2 * DefaultTick)
				sim.Start()

				Convey("Only one tick timer is left", func() {
					So(clock.Pending(), ShouldEqual, 1)
					So(sim.Percent(), ShouldEqual, 0)
					clock.Advance(DefaultTick)
					So(sim.Percent(), ShouldEqual, 12.5)
				})
			})

			Convey("When a load starts during the hide delay", func() {
				sim.Finish()
				sim.Start()
				clock.Advance(DefaultHideDelay)

				Convey("The pending hide is cancelled", func() {
					So(sim.Visible(), ShouldBeTrue)
				})
			})
		})

		Convey("Finishing with nothing shown leaves the overlay hidden", func() {
			sim.Finish()
			So(screen.frames, ShouldBeEmpty)
			So(sim.Visible(), ShouldBeFalse)
		})

		Convey("Buffering", func() {
			Convey("While playing is ignored", func() {
				sim.Buffering(true)
				So(sim.Visible(), ShouldBeFalse)
			})

			Convey("Outside playback restarts from 0%", func() {
				sim.Start()
				clock.Advance(5 * time.Second)
				sim.Buffering(false)

				So(sim.Visible(), ShouldBeTrue)
				So(sim.Percent(), ShouldEqual, 0)
			})
		})
	})
}

func TestDefaults(t *testing.T) {
	Convey("Given a simulator with no options", t, func() {
		sim := New(Options{})

		Convey("It can start and stop without a renderer", func() {
			So(sim.Start, ShouldNotPanic)
			So(sim.Stop, ShouldNotPanic)
			So(sim.Visible(), ShouldBeFalse)
		})

		Convey("The default random source stays in range", func() {
			clock := schedtest.New()
			sim = New(Options{Scheduler: clock, Rand: nil})
			sim.Start()
			clock.Advance(DefaultTick)
			So(sim.Percent(), ShouldBeBetweenOrEqual, 5, 20)
		})
	})

	Convey("Given a fixed random source", t, func() {
		clock := schedtest.New()
		sim := New(Options{Scheduler: clock, Rand: constant(0)})
		sim.Start()

		Convey("The smallest step is 5", func() {
			clock.Advance(DefaultTick)
			So(sim.Percent(), ShouldEqual, 5)
		})
	})
}
