package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/constant"
	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/player/playertest"
	"github.com/zapper-tv/zapper/prefs"
	"github.com/zapper-tv/zapper/probe"
	"github.com/zapper-tv/zapper/remote"
	"github.com/zapper-tv/zapper/sched/schedtest"
	"github.com/zapper-tv/zapper/session"
)

func init() {
	filesystem.SetMemMapFs()
}

func registry(n int) *channel.Registry {
	categories := []string{"News", "Sports"}
	channels := make([]channel.Channel, n)
	for i := range channels {
		channels[i] = channel.New(
			fmt.Sprintf("Channel %d", i+1),
			fmt.Sprintf("https://stream.test/%d", i+1),
			categories[i%2],
			channel.TypeOther,
			nil,
		)
	}
	return channel.NewRegistry(channels...)
}

// spySession records visibility changes on top of a real session.
type spySession struct {
	*session.Session
	visibility []bool
}

func (s *spySession) SetVisible(visible bool) {
	s.visibility = append(s.visibility, visible)
	s.Session.SetVisible(visible)
}

type fixture struct {
	clock   *schedtest.Fake
	player  *playertest.Fake
	session *spySession
	bridge  *Bridge
	bubble  *bubble
}

func newFixture(n int) *fixture {
	f := &fixture{clock: schedtest.New(), player: playertest.New(), bridge: NewBridge()}
	reg := registry(n)

	s, err := session.New(session.Options{
		Registry:  reg,
		Player:    f.player,
		Scheduler: f.clock,
		Prober:    probe.Func(func(context.Context, string) error { return nil }),
		Status:    f.bridge,
		Hooks:     session.Hooks{AfterLoad: []session.Hook{f.bridge.Loaded}},
	})
	So(err, ShouldBeNil)
	f.session = &spySession{Session: s}

	controller := remote.New(remote.Options{
		Registry:  reg,
		Session:   s,
		Scheduler: f.clock,
		OnBuffer:  f.bridge.Buffer,
	})

	f.bubble, err = newBubble(&Options{Session: f.session, Controller: controller, Bridge: f.bridge, Start: -1})
	So(err, ShouldBeNil)
	f.bubble.resize(100, 60)
	return f
}

// send feeds msg through Update and returns the command it produced.
func (f *fixture) send(msg tea.Msg) tea.Cmd {
	_, cmd := f.bubble.Update(msg)
	return cmd
}

// run executes cmd and every command batched inside it.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, run(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// take returns the pending message of one kind without waiting.
func take[T any](m *mailbox[T]) (T, bool) {
	select {
	case msg := <-m.c:
		return msg, true
	default:
		var zero T
		return zero, false
	}
}

func (f *fixture) drainEvents() {
	_, _ = take(f.bridge.status)
	_, _ = take(f.bridge.progress)
	_, _ = take(f.bridge.buffer)
	_, _ = take(f.bridge.loaded)
}

func TestBridge(t *testing.T) {
	Convey("Given a bridge", t, func() {
		b := NewBridge()

		Convey("Only the latest status is delivered", func() {
			b.ShowReconnecting(2)
			b.ShowLost(3)
			So(b.waitForEvent()(), ShouldResemble, statusMsg{kind: statusLost, attempts: 3})

			b.HideStatus()
			So(b.waitForEvent()(), ShouldResemble, statusMsg{kind: statusNone})
		})

		Convey("Jump digits and loads are delivered", func() {
			b.Buffer("1")
			b.Buffer("12")
			b.Loaded(11, channel.New("Twelve", "https://stream.test/12", "News", channel.TypeOther, nil))

			digits, ok := take(b.buffer)
			So(ok, ShouldBeTrue)
			So(digits, ShouldEqual, bufferMsg("12"))

			loaded, ok := b.waitForEvent()().(loadedMsg)
			So(ok, ShouldBeTrue)
			So(loaded.index, ShouldEqual, 11)
			So(loaded.channel.Name, ShouldEqual, "Twelve")
		})

		Convey("Callbacks never block while nothing drains the bridge", func() {
			var mu sync.Mutex
			finished := make(chan struct{})
			go func() {
				mu.Lock()
				defer mu.Unlock()
				for i := range 1000 {
					b.ShowReconnecting(i + 1)
					b.Progress(float64(i%100), true)
					b.Buffer("1")
					b.HideStatus()
				}
				close(finished)
			}()

			select {
			case <-finished:
			case <-time.After(time.Second):
				So("callbacks blocked", ShouldBeEmpty)
			}

			So(b.waitForEvent()(), ShouldNotBeNil)
			status, ok := take(b.status)
			if ok {
				So(status, ShouldResemble, statusMsg{kind: statusNone})
			}
		})

		Convey("Once closed, waiters are released", func() {
			b.Close()
			b.Close()

			done := make(chan tea.Msg)
			go func() {
				done <- b.waitForEvent()()
			}()

			select {
			case msg := <-done:
				So(msg, ShouldBeNil)
			case <-time.After(time.Second):
				So("waitForEvent blocked", ShouldBeEmpty)
			}
		})
	})
}

func TestNewBubble(t *testing.T) {
	Convey("Given missing options", t, func() {
		_, err := newBubble(nil)
		So(err, ShouldNotBeNil)

		_, err = newBubble(&Options{})
		So(err, ShouldNotBeNil)
	})

	Convey("Given a fresh bubble", t, func() {
		f := newFixture(4)

		Convey("Every channel is listed", func() {
			So(f.bubble.channelsC.Items(), ShouldHaveLength, 4)
			So(f.bubble.selected(), ShouldEqual, 0)
		})

		Convey("Nothing is playing", func() {
			view := f.bubble.View()
			So(view, ShouldContainSubstring, constant.Zapper)
			So(view, ShouldContainSubstring, "Nothing playing")
		})
	})
}

func TestRemoteKeys(t *testing.T) {
	Convey("Given a bubble over twenty channels", t, func() {
		f := newFixture(20)

		Convey("Enter with nothing playing tunes in the first channel", func() {
			run(f.send(tea.KeyMsg{Type: tea.KeyEnter}))
			So(f.session.State().ActiveIndex, ShouldEqual, 0)
			So(f.player.Files(), ShouldResemble, []string{"https://stream.test/1"})
		})

		Convey("When channel 1 is playing", func() {
			_, err := f.session.LoadChannel(0)
			So(err, ShouldBeNil)
			f.drainEvents()

			Convey("Down zaps to the next channel", func() {
				run(f.send(tea.KeyMsg{Type: tea.KeyDown}))
				So(f.session.State().ActiveIndex, ShouldEqual, 1)

				Convey("And the load reaches the list", func() {
					status, ok := take(f.bridge.status)
					So(ok, ShouldBeTrue)
					So(status.kind, ShouldEqual, statusNone)

					loaded, ok := take(f.bridge.loaded)
					So(ok, ShouldBeTrue)
					f.send(loaded)
					So(f.bubble.selected(), ShouldEqual, 1)
					So(f.bubble.View(), ShouldContainSubstring, "Channel 2")
				})
			})

			Convey("Up at the top does nothing", func() {
				run(f.send(tea.KeyMsg{Type: tea.KeyUp}))
				So(f.session.State().ActiveIndex, ShouldEqual, 0)
				So(f.player.Setups(), ShouldHaveLength, 1)
			})

			Convey("Typed digits jump after the delay", func() {
				f.send(keyRunes("1"))
				f.send(keyRunes("2"))
				So(f.bubble.controller.Buffer(), ShouldEqual, "12")

				digits, ok := take(f.bridge.buffer)
				So(ok, ShouldBeTrue)
				f.send(digits)
				So(f.bubble.buffer, ShouldEqual, "12")
				So(f.bubble.View(), ShouldContainSubstring, "CH 12")

				f.clock.Advance(2 * time.Second)
				So(f.session.State().ActiveIndex, ShouldEqual, 11)
			})

			Convey("Escape drops the typed digits", func() {
				f.send(keyRunes("9"))
				f.send(tea.KeyMsg{Type: tea.KeyEsc})
				So(f.bubble.controller.Buffer(), ShouldBeEmpty)

				f.clock.Advance(2 * time.Second)
				So(f.session.State().ActiveIndex, ShouldEqual, 0)
			})

			Convey("Backspace returns to the channel watched before", func() {
				run(f.send(tea.KeyMsg{Type: tea.KeyDown}))
				run(f.send(tea.KeyMsg{Type: tea.KeyDown}))
				So(f.session.State().ActiveIndex, ShouldEqual, 2)

				run(f.send(tea.KeyMsg{Type: tea.KeyBackspace}))
				So(f.session.State().ActiveIndex, ShouldEqual, 1)
			})

			Convey("r restarts the active channel", func() {
				run(f.send(keyRunes("r")))
				So(f.player.Setups(), ShouldHaveLength, 2)
				So(f.session.State().ActiveIndex, ShouldEqual, 0)
			})
		})

		Convey("c cycles the category filter", func() {
			f.send(keyRunes("c"))
			So(f.bubble.category, ShouldEqual, "News")
			So(f.bubble.channelsC.Items(), ShouldHaveLength, 10)
			So(f.bubble.channelsC.Title, ShouldEqual, "Channels - News")

			f.send(keyRunes("c"))
			f.send(keyRunes("c"))
			So(f.bubble.category, ShouldEqual, channel.AllCategories)
			So(f.bubble.channelsC.Items(), ShouldHaveLength, 20)
		})

		Convey("Searching narrows the list and enter plays the match", func() {
			f.send(keyRunes("/"))
			So(f.bubble.keymap.searching, ShouldBeTrue)

			f.send(keyRunes("12"))
			So(f.bubble.channelsC.Items(), ShouldHaveLength, 1)

			f.send(tea.KeyMsg{Type: tea.KeyEnter})
			So(f.bubble.keymap.searching, ShouldBeFalse)

			run(f.send(tea.KeyMsg{Type: tea.KeyEnter}))
			So(f.session.State().ActiveIndex, ShouldEqual, 11)

			Convey("Escape while searching clears the query", func() {
				f.send(keyRunes("/"))
				f.send(tea.KeyMsg{Type: tea.KeyEsc})
				So(f.bubble.channelsC.Items(), ShouldHaveLength, 20)
			})
		})

		Convey("Arrows left and right toggle the list and the guide", func() {
			f.send(tea.KeyMsg{Type: tea.KeyLeft})
			So(f.bubble.showList, ShouldBeFalse)

			f.send(tea.KeyMsg{Type: tea.KeyRight})
			So(f.bubble.helpC.ShowAll, ShouldBeTrue)
		})

		Convey("t toggles the remote and remembers it", func() {
			So(prefs.Save(prefs.Preferences{}), ShouldBeNil)
			hidden := f.bubble.remoteHidden

			run(f.send(keyRunes("t")))
			So(f.bubble.remoteHidden, ShouldEqual, !hidden)

			saved, err := prefs.Load()
			So(err, ShouldBeNil)
			So(saved.RemoteHidden, ShouldEqual, !hidden)
		})

		Convey("q quits", func() {
			So(run(f.send(keyRunes("q"))), ShouldContain, tea.QuitMsg{})
		})
	})
}

func TestSessionMessages(t *testing.T) {
	Convey("Given a bubble", t, func() {
		f := newFixture(3)

		Convey("Focus changes reach the session", func() {
			run(f.send(tea.BlurMsg{}))
			run(f.send(tea.FocusMsg{}))
			So(f.session.visibility, ShouldResemble, []bool{false, true})
		})

		Convey("Reconnection status is shown and withdrawn", func() {
			f.send(statusMsg{kind: statusReconnecting, attempts: 4})
			So(f.bubble.View(), ShouldContainSubstring, "Reconnecting... #4")

			f.send(statusMsg{kind: statusLost, attempts: 5})
			So(f.bubble.View(), ShouldContainSubstring, "5 attempts")

			f.send(statusMsg{kind: statusNone})
			So(f.bubble.View(), ShouldNotContainSubstring, "Reconnecting")
		})

		Convey("Loading progress is drawn while visible", func() {
			f.send(progressMsg{percent: 40, visible: true})
			So(f.bubble.loading, ShouldBeTrue)
			So(f.bubble.View(), ShouldContainSubstring, "40%")

			f.send(progressMsg{percent: 100, visible: false})
			So(f.bubble.loading, ShouldBeFalse)
		})

		Convey("A finished load is remembered as the last channel", func() {
			c, _ := f.session.Registry().Get(2)
			cmd := f.send(loadedMsg{index: 2, channel: c})
			So(cmd, ShouldNotBeNil)

			So(f.bubble.remember(2)(), ShouldBeNil)
			saved, err := prefs.Load()
			So(err, ShouldBeNil)
			So(saved.LastChannel, ShouldEqual, 3)
		})

		Convey("The clock follows clock messages", func() {
			at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
			f.send(clockMsg(at))
			So(f.bubble.View(), ShouldContainSubstring, "03:04:05")
		})
	})
}
