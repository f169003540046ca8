package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/icon"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/style"
	"github.com/zapper-tv/zapper/util"
)

// headlessSink prints session status as plain lines instead of drawing a screen.
type headlessSink struct {
	mu           sync.Mutex
	out          io.Writer
	reconnecting bool
}

func newHeadlessSink() *headlessSink {
	return &headlessSink{out: os.Stdout}
}

func (h *headlessSink) println(format string, args ...any) {
	_, _ = fmt.Fprintf(h.out, format+"\n", args...)
}

// ShowReconnecting implements session.StatusSink.
func (h *headlessSink) ShowReconnecting(attempt int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reconnecting = true
	log.Warnf("stream lost, reconnection attempt %d", attempt)
	h.println("%s Reconnecting... #%d", icon.Get(icon.Signal), attempt)
}

// ShowLost implements session.StatusSink.
func (h *headlessSink) ShowLost(attempts int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	log.Errorf("giving up after %s", util.Quantify(attempts, "attempt", "attempts"))
	h.println("%s Connection lost after %s. Send r to try again", icon.Get(icon.Lost), util.Quantify(attempts, "attempt", "attempts"))
}

// HideStatus implements session.StatusSink.
func (h *headlessSink) HideStatus() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.reconnecting {
		return
	}
	h.reconnecting = false
	log.Info("connection restored")
	h.println("%s Connection restored", icon.Get(icon.Success))
}

// Progress implements loading.Renderer. Only the start of a load is printed.
func (h *headlessSink) Progress(percent float64, visible bool) {
	if visible && percent == 0 {
		h.mu.Lock()
		h.println("%s Loading...", icon.Get(icon.Progress))
		h.mu.Unlock()
	}
}

// Buffer echoes the channel number being typed.
func (h *headlessSink) Buffer(digits string) {
	if digits == "" {
		return
	}
	h.mu.Lock()
	h.println("%s CH %s", icon.Get(icon.Remote), digits)
	h.mu.Unlock()
}

// Loaded is a session AfterLoad hook.
func (h *headlessSink) Loaded(index int, c channel.Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.println("%s %d %s %s", icon.Get(icon.Channel), index+1, style.Bold(c.Name), style.Faint(c.Category))
}

// runHeadless plays the start channel and takes remote commands, one per
// line, from stdin until interrupted:
//
//	<digits>  jump to that channel number
//	+ / -     next / previous channel in the list
//	b         back to the channel watched before
//	r         reconnect
//	q         quit
func (a *app) runHeadless(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.start >= 0 {
		if _, err := a.controller.Play(a.start); err != nil {
			return err
		}
	}

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if a.command(strings.TrimSpace(scanner.Text())) {
				stop()
				return
			}
		}
	}()

	<-ctx.Done()
	return nil
}

// command applies one line of headless input and reports whether to quit.
func (a *app) command(line string) (quit bool) {
	var err error

	switch line {
	case "":
	case "q", "quit":
		return true
	case "+", "next":
		_, err = a.controller.Down()
	case "-", "prev":
		_, err = a.controller.Up()
	case "b", "back":
		_, err = a.controller.Back()
	case "r", "reconnect":
		a.session.ManualReconnect()
	default:
		for _, d := range line {
			a.controller.Digit(d)
		}
	}

	if err != nil {
		log.Error(err)
		a.sink.mu.Lock()
		a.sink.println("%s %s", icon.Get(icon.Fail), err)
		a.sink.mu.Unlock()
	}
	return false
}
