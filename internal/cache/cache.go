// Package cache keeps the last good copy of remote channel playlists so a
// display can still start while the playlist host is down.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/network"
	"github.com/zapper-tv/zapper/where"
)

// TTL is how long a cached playlist may stand in for the remote one.
const TTL = 7 * 24 * time.Hour

// maxPlaylistSize caps a download; large provider playlists run to a few MB.
const maxPlaylistSize = 32 << 20

// Dir returns the playlist cache directory, creating it if needed.
func Dir() string {
	dir := filepath.Join(where.Cache(), "playlists")
	_ = filesystem.API().MkdirAll(dir, os.ModePerm)
	return dir
}

// Key derives a deterministic file name from a playlist URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])
}

// Read returns a cached playlist if it exists and has not exceeded its TTL.
func Read(key string) ([]byte, bool) {
	path := filepath.Join(Dir(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return nil, false
	}

	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Write persists a playlist using an atomic file swap.
func Write(key string, data []byte) error {
	path := filepath.Join(Dir(), key)
	tmpPath := path + ".tmp"

	if err := filesystem.API().WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return filesystem.API().Rename(tmpPath, path)
}

// Fetch downloads the playlist at url and caches it. When the download
// fails, a cached copy younger than TTL is returned instead.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := download(ctx, url)
	if err == nil {
		if err := Write(Key(url), data); err != nil {
			log.Warnf("cache playlist %s: %v", url, err)
		}
		return data, nil
	}

	if cached, ok := Read(Key(url)); ok {
		log.Warnf("using cached playlist, download failed: %v", err)
		return cached, nil
	}

	return nil, fmt.Errorf("fetch playlist: %w", err)
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := network.Download.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", url, res.Status)
	}

	return io.ReadAll(io.LimitReader(res.Body, maxPlaylistSize))
}

// CollectGarbage prunes cached playlists past their TTL.
func CollectGarbage() {
	_ = filesystem.API().Walk(Dir(), func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > TTL {
			log.Debugf("pruning cached playlist %s", filepath.Base(path))
			_ = filesystem.API().Remove(path)
		}
		return nil
	})
}
