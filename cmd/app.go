package cmd

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/config"
	"github.com/zapper-tv/zapper/internal/cache"
	"github.com/zapper-tv/zapper/key"
	"github.com/zapper-tv/zapper/loading"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/player"
	"github.com/zapper-tv/zapper/prefs"
	"github.com/zapper-tv/zapper/probe"
	"github.com/zapper-tv/zapper/remote"
	"github.com/zapper-tv/zapper/session"
	"github.com/zapper-tv/zapper/tui"
	"github.com/zapper-tv/zapper/where"
)

// appOptions are the root command switches that shape the wiring.
type appOptions struct {
	Headless bool
	Resume   bool
}

// app is one display: a registry, a player and the session driving it.
type app struct {
	registry   *channel.Registry
	overlay    *loading.Simulator
	session    *session.Session
	controller *remote.Controller
	bridge     *tui.Bridge
	sink       *headlessSink
	start      int
}

func newApp(ctx context.Context, options appOptions) (*app, error) {
	registry, err := loadRegistry(ctx)
	if err != nil {
		return nil, err
	}

	start, err := startIndex(registry, options.Resume)
	if err != nil {
		return nil, err
	}

	adapter, err := player.New(
		viper.GetString(key.Player),
		viper.GetStringSlice(key.PlayerArgs),
		viper.GetString(key.PlayerSocket),
	)
	if err != nil {
		return nil, err
	}

	a := &app{registry: registry, start: start}

	var (
		status   session.StatusSink
		renderer loading.Renderer
		onBuffer func(string)
		loaded   session.Hook
	)

	if options.Headless {
		a.sink = newHeadlessSink()
		status, renderer, onBuffer, loaded = a.sink, a.sink, a.sink.Buffer, a.sink.Loaded
	} else {
		a.bridge = tui.NewBridge()
		status, renderer, onBuffer, loaded = a.bridge, a.bridge, a.bridge.Buffer, a.bridge.Loaded
	}

	a.overlay = loading.New(loading.Options{
		Renderer:  renderer,
		Tick:      config.Millis(key.LoadingTick),
		HideDelay: config.Millis(key.LoadingHideDelay),
	})

	a.session, err = session.New(session.Options{
		Registry: registry,
		Player:   adapter,
		Prober:   probe.New(config.Seconds(key.ProbeTimeout)),
		Status:   status,
		Loading:  a.overlay,
		Hooks: session.Hooks{
			BeforeLoad: []session.Hook{logLoad},
			AfterLoad:  []session.Hook{loaded},
		},
		HealthInterval:  config.Seconds(key.HealthInterval),
		ReconnectDelay:  config.Seconds(key.ReconnectDelay),
		ReconnectGrace:  config.Seconds(key.ReconnectGrace),
		ConnectivityURL: viper.GetString(key.ReconnectProbeURL),
		MaxAttempts:     viper.GetInt(key.ReconnectMaxAttempts),
	})
	if err != nil {
		return nil, err
	}

	a.controller = remote.New(remote.Options{
		Registry:  registry,
		Session:   a.session,
		JumpDelay: config.Millis(key.RemoteJumpDelay),
		Fuzzy:     viper.GetBool(key.SearchFuzzy),
		OnBuffer:  onBuffer,
	})

	return a, nil
}

// run blocks until the user quits, then tears the player down.
func (a *app) run(ctx context.Context) error {
	defer a.close()

	if a.sink != nil {
		return a.runHeadless(ctx)
	}

	return tui.Run(&tui.Options{
		Session:    a.session,
		Controller: a.controller,
		Bridge:     a.bridge,
		Start:      a.start,
	})
}

func (a *app) close() {
	if err := a.session.Close(); err != nil {
		log.Warnf("close player: %v", err)
	}
	if a.bridge != nil {
		a.bridge.Close()
	}
}

func logLoad(index int, c channel.Channel) {
	log.WithField("channel", index+1).Debugf("%s stream %s", c.Type, c.URL)
}

// loadRegistry reads channels.file, which may also be an http(s) playlist URL.
func loadRegistry(ctx context.Context) (*channel.Registry, error) {
	source := viper.GetString(key.ChannelsFile)
	if source == "" {
		source = where.Channels()
	}

	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return channel.Load(source)
	}

	data, err := cache.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	name := u.Path
	if path.Ext(name) == "" {
		name += ".m3u"
	}
	return channel.Parse(name, data)
}

// startIndex turns channels.start, or the last channel with resume, into a
// registry index. -1 means nothing plays until the user picks a channel.
func startIndex(registry *channel.Registry, resume bool) (int, error) {
	n := viper.GetInt(key.ChannelsStart)

	if resume {
		saved, err := prefs.Load()
		switch {
		case err != nil:
			log.Warn(err)
		case saved.LastChannel > registry.Len():
			log.Warnf("last channel %d is gone, starting from the first one", saved.LastChannel)
			n = 1
		case saved.LastChannel > 0:
			n = saved.LastChannel
		}
	}

	if n <= 0 {
		return -1, nil
	}
	if n > registry.Len() {
		return 0, fmt.Errorf("start channel %d: %w", n, session.ErrNoSuchChannel)
	}
	return n - 1, nil
}
