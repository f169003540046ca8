// Package probe implements reachability checks for streams and for the network itself.
// A probe succeeds when the remote end produces any HTTP response, whatever its status;
// only transport failures (DNS, refused connection, timeout) count as "down".
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zapper-tv/zapper/network"
)

// Prober reports whether a URL is reachable.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// Func adapts an ordinary function to Prober.
type Func func(ctx context.Context, url string) error

// Probe calls f.
func (f Func) Probe(ctx context.Context, url string) error {
	return f(ctx, url)
}

// HTTP probes with a HEAD request through the shared network client.
type HTTP struct {
	// Client defaults to network.Client.
	Client *http.Client
	// Timeout bounds a single probe when positive.
	Timeout time.Duration
}

// New returns an HTTP prober bounded by timeout.
func New(timeout time.Duration) *HTTP {
	return &HTTP{Timeout: timeout}
}

// Probe issues HEAD url. Any response means up.
func (h *HTTP) Probe(ctx context.Context, url string) error {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("probe %s: %w", url, err)
	}

	client := h.Client
	if client == nil {
		client = network.Client
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", url, err)
	}

	_, _ = io.Copy(io.Discard, res.Body)
	return res.Body.Close()
}
