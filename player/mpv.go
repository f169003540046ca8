package player

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// MPV implements Adapter over mpv's JSON-IPC protocol. A single mpv process
// is kept idle between channels and fed with loadfile.
type MPV struct {
	Dispatcher

	binary     string
	args       []string
	socketPath string
	attached   bool

	// process lifecycle
	procMu   sync.Mutex
	cmd      *exec.Cmd
	exited   chan struct{}
	listener *EventListener

	// serializes IPC commands
	ipcMu sync.Mutex

	mu      sync.Mutex
	state   State
	paused  bool
	started bool
}

// NewMPV creates an mpv adapter. args are appended to the mpv command line.
// Nothing is started until the first Setup.
func NewMPV(args ...string) *MPV {
	return &MPV{
		binary: "mpv",
		args:   args,
	}
}

// Attach makes the adapter drive an mpv already listening on socketPath
// instead of spawning its own.
func (m *MPV) Attach(socketPath string) {
	m.procMu.Lock()
	defer m.procMu.Unlock()

	m.socketPath = socketPath
	m.attached = true
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	m.procMu.Lock()
	defer m.procMu.Unlock()
	return m.socketPath
}

// State implements Adapter.
func (m *MPV) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Setup implements Adapter. A failure to load emits EventPlayAttemptFailed.
func (m *MPV) Setup(cfg Config) error {
	target, err := sanitizeMediaTarget(cfg.File)
	if err != nil {
		m.fail()
		return fmt.Errorf("invalid media target: %w", err)
	}

	if err := m.ensureRunning(); err != nil {
		m.fail()
		return err
	}

	m.mu.Lock()
	m.state = StateBuffering
	m.started = false
	m.mu.Unlock()

	for _, prop := range loadProperties(cfg) {
		if _, err := m.sendCommand("set_property", prop.name, prop.value); err != nil {
			log.Warnf("mpv: set %s: %v", prop.name, err)
		}
	}

	if _, err := m.sendCommand("loadfile", target, "replace"); err != nil {
		m.fail()
		return err
	}

	log.Infof("mpv: loading %s", target)
	return nil
}

// Remove implements Adapter. A spawned mpv is asked to quit and killed if it
// lingers; an attached one is only stopped.
func (m *MPV) Remove() error {
	m.procMu.Lock()
	defer m.procMu.Unlock()

	if m.listener != nil {
		m.listener.Stop()
		m.listener = nil
	}

	defer m.setState(StateIdle)

	if m.attached {
		if _, err := m.sendCommand("stop"); err != nil {
			return err
		}
		return nil
	}

	if m.cmd == nil {
		return nil
	}

	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		log.Warn("mpv did not quit, killing it")
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	m.cmd = nil
	return nil
}

func (m *MPV) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *MPV) transition(s State, e Event) {
	m.setState(s)
	m.Emit(e)
}

func (m *MPV) fail() {
	m.transition(StateError, EventPlayAttemptFailed)
}

// handle maps mpv IPC events onto adapter events.
func (m *MPV) handle(msg ipcMessage) {
	switch msg.Event {
	case "playback-restart":
		m.mu.Lock()
		m.started = true
		paused := m.paused
		m.mu.Unlock()

		// seeking while paused also restarts playback
		if !paused {
			m.transition(StatePlaying, EventPlay)
		}
	case "property-change":
		var on bool
		if len(msg.Data) > 0 {
			_ = json.Unmarshal(msg.Data, &on)
		}
		m.propertyChanged(msg.Name, on)
	case "end-file":
		switch msg.Reason {
		case "eof":
			m.transition(StateComplete, EventComplete)
		case "error":
			m.transition(StateError, EventError)
		}
	}
}

func (m *MPV) propertyChanged(name string, on bool) {
	m.mu.Lock()
	state, started := m.state, m.started
	if name == "pause" {
		m.paused = on
	}
	m.mu.Unlock()

	switch name {
	case "pause":
		switch {
		case on && (state == StatePlaying || state == StateBuffering && started):
			m.transition(StatePaused, EventPause)
		case !on && state == StatePaused:
			m.transition(StatePlaying, EventPlay)
		}
	case "paused-for-cache":
		switch {
		case on:
			m.transition(StateBuffering, EventBuffering)
		case started && state == StateBuffering:
			m.transition(StatePlaying, EventPlay)
		}
	}
}

// ensureRunning spawns mpv when needed and makes sure events are flowing.
func (m *MPV) ensureRunning() error {
	m.procMu.Lock()
	defer m.procMu.Unlock()

	if !m.attached && !m.running() {
		if err := m.spawn(); err != nil {
			return err
		}
	}

	if m.listener != nil && m.listener.Listening() {
		return nil
	}

	m.listener = NewEventListener(m.socketPath, m.handle)
	return m.listener.Start()
}

func (m *MPV) running() bool {
	if m.cmd == nil {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

func (m *MPV) spawn() error {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", randomBytes))

	// Respect the user's mpv.conf: no --vo, --profile or --hwdec here.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=no",
	}
	args = append(args, m.args...)

	cmd := exec.Command(m.binary, args...)

	// Detach from the parent process group so terminal signals don't reach mpv.
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	m.cmd = cmd
	m.exited = exited

	if err := m.waitForSocket(); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		m.cmd = nil
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	log.Infof("mpv started, pid %d", cmd.Process.Pid)
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

type property struct {
	name  string
	value any
}

// loadProperties returns the properties set before each loadfile. Every
// property is always written so nothing leaks from the previous channel.
func loadProperties(cfg Config) []property {
	return []property{
		{"force-media-title", sanitizeTitle(cfg.Title)},
		{"pause", !cfg.Autostart},
		{"demuxer-lavf-o", decryptionOption(cfg.DRM)},
	}
}

// decryptionOption maps clear keys onto the demuxer's decryption_key option.
// mpv only takes a single key; the lowest key ID wins.
func decryptionOption(drm mo.Option[channel.DRM]) string {
	d, ok := drm.Get()
	if !ok {
		return ""
	}

	if len(d.Keys) == 0 {
		if d.LicenseURL != "" {
			log.Warnf("mpv cannot query %s license servers, trying unencrypted", d.Scheme)
		}
		return ""
	}

	kids := lo.Keys(d.Keys)
	sort.Strings(kids)
	if len(kids) > 1 {
		log.Warnf("mpv takes one decryption key, using key ID %s of %d", kids[0], len(kids))
	}

	return "decryption_key=" + d.Keys[kids[0]]
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// Prevent flag injection: URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle flattens a channel name into a single line.
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
