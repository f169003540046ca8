package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/zapper-tv/zapper/channel"
)

// fakeMPV speaks enough of the mpv IPC protocol to drive the adapter.
type fakeMPV struct {
	ln        net.Listener
	dir       string
	mu        sync.Mutex
	commands  [][]any
	failing   map[string]string
	observers chan net.Conn
}

func newFakeMPV() *fakeMPV {
	dir, err := os.MkdirTemp("", "zmpv")
	So(err, ShouldBeNil)

	ln, err := net.Listen("unix", filepath.Join(dir, "mpv.sock"))
	So(err, ShouldBeNil)

	f := &fakeMPV{
		ln:        ln,
		dir:       dir,
		failing:   map[string]string{},
		observers: make(chan net.Conn, 4),
	}
	go f.serve()
	return f
}

func (f *fakeMPV) path() string {
	return f.ln.Addr().String()
}

func (f *fakeMPV) close() {
	_ = f.ln.Close()
	_ = os.RemoveAll(f.dir)
}

func (f *fakeMPV) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeMPV) handle(conn net.Conn) {
	defer conn.Close()

	observes := 0
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd ipcCommand
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil || len(cmd.Command) == 0 {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, cmd.Command)
		reason, fails := f.failing[fmt.Sprint(cmd.Command[0])]
		f.mu.Unlock()

		reply := `{"error":"success","data":null}`
		if fails {
			reply = fmt.Sprintf(`{"error":%q}`, reason)
		}
		f.write(conn, reply)

		if cmd.Command[0] == "observe_property" {
			observes++
			if observes == len(observed) {
				f.observers <- conn
			}
		}
	}
}

func (f *fakeMPV) write(conn net.Conn, line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _ = conn.Write([]byte(line + "\n"))
}

func (f *fakeMPV) fail(command, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[command] = reason
}

func (f *fakeMPV) sent(name string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out [][]any
	for _, c := range f.commands {
		if c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeMPV) hasSent(command ...any) bool {
	return lo.ContainsBy(f.sent(fmt.Sprint(command[0])), func(c []any) bool {
		return reflect.DeepEqual(c, command)
	})
}

func recorder(m *MPV) <-chan Event {
	events := make(chan Event, 16)
	for _, e := range []Event{EventPlay, EventPause, EventComplete, EventError, EventBuffering, EventPlayAttemptFailed} {
		m.On(e, func(e Event) { events <- e })
	}
	return events
}

func next(events <-chan Event) Event {
	select {
	case e := <-events:
		return e
	case <-time.After(2 * time.Second):
		return ""
	}
}

func quiet(events <-chan Event) bool {
	select {
	case <-events:
		return false
	case <-time.After(50 * time.Millisecond):
		return true
	}
}

func TestMPV(t *testing.T) {
	Convey("Given an adapter attached to a running mpv", t, func() {
		fake := newFakeMPV()
		mpv := NewMPV()
		mpv.Attach(fake.path())
		events := recorder(mpv)

		Reset(func() {
			_ = mpv.Remove()
			fake.close()
		})

		So(mpv.State(), ShouldEqual, StateIdle)

		Convey("When a channel is set up", func() {
			err := mpv.Setup(Config{File: "http://example.com/live.m3u8", Title: "News\n24", Autostart: true})
			So(err, ShouldBeNil)

			var eventConn net.Conn
			select {
			case eventConn = <-fake.observers:
			case <-time.After(2 * time.Second):
			}
			So(eventConn, ShouldNotBeNil)

			push := func(line string) { fake.write(eventConn, line) }

			Convey("Then the file is loaded in place of the current one", func() {
				loads := fake.sent("loadfile")
				So(loads, ShouldHaveLength, 1)
				So(loads[0], ShouldResemble, []any{"loadfile", "http://example.com/live.m3u8", "replace"})
				So(mpv.State(), ShouldEqual, StateBuffering)
			})

			Convey("Then the title and autostart are applied first", func() {
				So(fake.hasSent("set_property", "force-media-title", "News 24"), ShouldBeTrue)
				So(fake.hasSent("set_property", "pause", false), ShouldBeTrue)
				So(fake.hasSent("set_property", "demuxer-lavf-o", ""), ShouldBeTrue)
			})

			Convey("Then both properties are observed on the event connection", func() {
				So(fake.sent("observe_property"), ShouldHaveLength, len(observed))
			})

			Convey("When playback starts", func() {
				push(`{"event":"playback-restart"}`)

				So(next(events), ShouldEqual, EventPlay)
				So(mpv.State(), ShouldEqual, StatePlaying)

				Convey("Pausing and resuming emit pause then play", func() {
					push(`{"event":"property-change","id":1,"name":"pause","data":true}`)
					So(next(events), ShouldEqual, EventPause)
					So(mpv.State(), ShouldEqual, StatePaused)

					push(`{"event":"property-change","id":1,"name":"pause","data":false}`)
					So(next(events), ShouldEqual, EventPlay)
				})

				Convey("Cache starvation emits buffering, recovery emits play", func() {
					push(`{"event":"property-change","id":2,"name":"paused-for-cache","data":true}`)
					So(next(events), ShouldEqual, EventBuffering)
					So(mpv.State(), ShouldEqual, StateBuffering)

					push(`{"event":"property-change","id":2,"name":"paused-for-cache","data":false}`)
					So(next(events), ShouldEqual, EventPlay)
				})

				Convey("Reaching the end emits complete", func() {
					push(`{"event":"end-file","reason":"eof"}`)
					So(next(events), ShouldEqual, EventComplete)
					So(mpv.State(), ShouldEqual, StateComplete)
				})

				Convey("A stream failure emits error", func() {
					push(`{"event":"end-file","reason":"error","file_error":"loading failed"}`)
					So(next(events), ShouldEqual, EventError)
					So(mpv.State(), ShouldEqual, StateError)
				})

				Convey("Replacing the file is not an error", func() {
					push(`{"event":"end-file","reason":"stop"}`)
					So(quiet(events), ShouldBeTrue)
					So(mpv.State(), ShouldEqual, StatePlaying)
				})
			})

			Convey("The initial property values do not fake a start", func() {
				push(`{"event":"property-change","id":1,"name":"pause","data":false}`)
				push(`{"event":"property-change","id":2,"name":"paused-for-cache","data":false}`)
				So(quiet(events), ShouldBeTrue)
				So(mpv.State(), ShouldEqual, StateBuffering)
			})
		})

		Convey("When mpv refuses the file", func() {
			fake.fail("loadfile", "loading failed")
			err := mpv.Setup(Config{File: "http://example.com/broken", Autostart: true})

			Convey("Then the attempt fails and is reported", func() {
				So(err, ShouldNotBeNil)
				So(next(events), ShouldEqual, EventPlayAttemptFailed)
				So(mpv.State(), ShouldEqual, StateError)
			})
		})

		Convey("When the target looks like a flag", func() {
			err := mpv.Setup(Config{File: "--script=evil.lua"})

			Convey("Then nothing is sent to mpv", func() {
				So(err, ShouldNotBeNil)
				So(next(events), ShouldEqual, EventPlayAttemptFailed)
				So(fake.sent("loadfile"), ShouldBeEmpty)
			})
		})

		Convey("Removing an attached player only stops playback", func() {
			So(mpv.Setup(Config{File: "http://example.com/a", Autostart: true}), ShouldBeNil)
			So(mpv.Remove(), ShouldBeNil)
			So(fake.sent("stop"), ShouldHaveLength, 1)
			So(fake.sent("quit"), ShouldBeEmpty)
			So(mpv.State(), ShouldEqual, StateIdle)
		})
	})
}

func TestDecryptionOption(t *testing.T) {
	Convey("Given channel credentials", t, func() {
		Convey("No DRM clears the option", func() {
			So(decryptionOption(mo.None[channel.DRM]()), ShouldBeEmpty)
		})

		Convey("A clear key is passed to the demuxer", func() {
			drm := channel.DRM{Scheme: "clearkey", Keys: map[string]string{"kid": "00ff"}}
			So(decryptionOption(mo.Some(drm)), ShouldEqual, "decryption_key=00ff")
		})

		Convey("With several keys the lowest key ID wins", func() {
			drm := channel.DRM{Scheme: "clearkey", Keys: map[string]string{"bb": "2", "aa": "1"}}
			So(decryptionOption(mo.Some(drm)), ShouldEqual, "decryption_key=1")
		})

		Convey("A license server alone cannot be used", func() {
			drm := channel.DRM{Scheme: "widevine", LicenseURL: "https://license.example.com"}
			So(decryptionOption(mo.Some(drm)), ShouldBeEmpty)
		})
	})
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Given media targets", t, func() {
		Convey("Network and file URLs are accepted", func() {
			for _, u := range []string{"http://a/b.m3u8", "https://a/b.mpd", "file:///srv/loop.ts"} {
				got, err := sanitizeMediaTarget(u)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, u)
			}
		})

		Convey("Local paths are cleaned", func() {
			got, err := sanitizeMediaTarget(" /srv/../srv/loop.ts ")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "/srv/loop.ts")
		})

		Convey("Flags, control characters and other schemes are rejected", func() {
			for _, u := range []string{"", "-v", "http://a\n/b", "rtmp://a/b"} {
				_, err := sanitizeMediaTarget(u)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestConfigFor(t *testing.T) {
	Convey("Given an mpd channel with keys", t, func() {
		drm := &channel.DRM{Scheme: "clearkey", Keys: map[string]string{"k": "v"}}
		c := channel.New("Sport", "https://a/manifest.mpd", "Sports", channel.TypeMPD, drm)

		Convey("The configuration autostarts and carries the DRM", func() {
			cfg := ConfigFor(c)
			So(cfg.File, ShouldEqual, c.URL)
			So(cfg.Title, ShouldEqual, "Sport")
			So(cfg.Autostart, ShouldBeTrue)
			So(cfg.DRM.IsPresent(), ShouldBeTrue)
		})

		Convey("The same blob on a non-mpd channel is dropped", func() {
			c = channel.New("Sport", "https://a/live.m3u8", "Sports", channel.TypeOther, drm)
			So(ConfigFor(c).DRM.IsPresent(), ShouldBeFalse)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given a player name", t, func() {
		Convey("mpv is supported", func() {
			p, err := New("mpv", nil, "")
			So(err, ShouldBeNil)
			So(p, ShouldHaveSameTypeAs, &MPV{})
		})

		Convey("A socket attaches instead of spawning", func() {
			p, err := New("mpv", nil, "/tmp/existing.sock")
			So(err, ShouldBeNil)
			So(p.(*MPV).Socket(), ShouldEqual, "/tmp/existing.sock")
		})

		Convey("Anything else is rejected", func() {
			_, err := New("vlc", nil, "")
			So(err, ShouldNotBeNil)
		})
	})
}
