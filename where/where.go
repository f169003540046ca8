// Package where resolves the filesystem locations zapper reads from and writes to.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/zapper-tv/zapper/constant"
	"github.com/zapper-tv/zapper/filesystem"
)

// EnvConfigPath overrides the configuration directory when set.
const EnvConfigPath = "ZAPPER_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config returns the configuration directory, honouring ZAPPER_CONFIG_PATH.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Zapper))
}

// Cache returns the cache directory, falling back to ./cache when the
// platform does not report one.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Zapper))
}

// Logs returns the directory holding daily log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Channels returns the default channel registry file.
func Channels() string {
	return filepath.Join(Config(), "channels.yaml")
}

// Preferences returns the file holding persisted UI preferences.
func Preferences() string {
	return filepath.Join(Config(), "preferences.json")
}

// Temp returns a scratch directory for mpv IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Zapper))
}
