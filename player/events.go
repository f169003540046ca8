package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/zapper-tv/zapper/log"
)

// EventCallback receives every asynchronous message mpv writes to the listener connection.
type EventCallback func(msg ipcMessage)

// observed properties, by observe_property id
var observed = []string{
	"pause",
	"paused-for-cache",
}

// EventListener holds a persistent IPC connection and streams mpv events from it.
// Property observers are registered on that same connection, since mpv only
// notifies the client that asked.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	done       chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
	}
}

// Start connects, subscribes to the observed properties and starts the read loop.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		if err := writeCommand(conn, []any{"observe_property", i + 1, name}); err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.done = make(chan struct{})
	el.listening = true

	go el.readLoop(conn, el.done)

	log.Infof("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop closes the connection. The read loop exits on its own; Done reports when.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	_ = el.conn.Close()
	el.listening = false
}

// Done is closed when the current read loop exits. It is nil before Start.
func (el *EventListener) Done() <-chan struct{} {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.done
}

// Listening reports whether the read loop is running.
func (el *EventListener) Listening() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.listening
}

func (el *EventListener) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)
	defer func() {
		el.mu.Lock()
		if el.conn == conn {
			el.listening = false
		}
		el.mu.Unlock()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		// replies to observe_property
		if msg.Event == "" {
			continue
		}

		el.callback(msg)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warnf("event listener read error: %v", err)
	}
}
