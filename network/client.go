// Package network provides the shared HTTP client used for stream and connectivity probes.
package network

import (
	"net/http"
	"time"

	"github.com/zapper-tv/zapper/constant"
)

// Client is the HTTP client shared by every probe in the process.
// Per-request deadlines come from the caller's context; Timeout is only a backstop.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: &userAgent{next: newTransport()},
	// probes only care whether something answered
	CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// Download fetches remote channel playlists. Unlike Client it follows redirects.
var Download = &http.Client{
	Timeout:   time.Minute,
	Transport: Client.Transport,
}

// newTransport initializes a tuned http.Transport. Idle connections are kept
// short since a display probes at most a couple of hosts.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 2
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}

type userAgent struct {
	next http.RoundTripper
}

// RoundTrip sets the application user agent unless the request carries one.
func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return u.next.RoundTrip(req)
}
