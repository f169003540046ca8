package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command []any `json:"command"`
}

// ipcMessage is anything mpv writes back: a command reply or an asynchronous event.
type ipcMessage struct {
	Event  string          `json:"event,omitempty"`
	Name   string          `json:"name,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Error  string          `json:"error,omitempty"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
)

// sendCommand sends a JSON-IPC command to mpv, retrying transient connection errors.
func (m *MPV) sendCommand(command ...any) (json.RawMessage, error) {
	m.ipcMu.Lock()
	defer m.ipcMu.Unlock()

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSendCommand(m.socketPath, command)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// mpv answered; retrying will not change its mind
		if _, ok := err.(*mpvError); ok {
			break
		}
	}

	return nil, fmt.Errorf("ipc %v: %w", command[0], lastErr)
}

// mpvError is a command rejected by mpv itself.
type mpvError struct {
	reason string
}

func (e *mpvError) Error() string {
	return "mpv: " + e.reason
}

// doSendCommand performs a single IPC command on a fresh connection.
func doSendCommand(socketPath string, command []any) (json.RawMessage, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := writeCommand(conn, command); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		var msg ipcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}

		// events may be interleaved with the reply
		if msg.Event != "" {
			continue
		}

		if msg.Error != "" && msg.Error != "success" {
			return nil, &mpvError{reason: msg.Error}
		}

		return msg.Data, nil
	}
}

func writeCommand(conn net.Conn, command []any) error {
	payload, err := json.Marshal(ipcCommand{Command: command})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
