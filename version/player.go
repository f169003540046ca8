package version

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// MinimumMPV is the oldest mpv whose IPC properties and lavf options zapper relies on.
const MinimumMPV = "0.33.0"

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// ErrUnknownVersion is returned when a --version banner holds no version number.
var ErrUnknownVersion = errors.New("no version in player banner")

// Parse extracts the first semantic version from a --version banner,
// such as "mpv v0.37.0 Copyright © 2000-2023 mpv/MPlayer/mplayer2 projects".
func Parse(banner string) (string, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(banner), "\n")
	match := versionPattern.FindStringSubmatch(line)
	if match == nil {
		return "", ErrUnknownVersion
	}
	return match[1], nil
}

// Player runs binary --version and returns the version it reports.
func Player(ctx context.Context, binary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version: %w", binary, err)
	}
	return Parse(string(out))
}

// Supported reports whether v is at least MinimumMPV.
func Supported(v string) (bool, error) {
	comp, err := Compare(v, MinimumMPV)
	if err != nil {
		return false, err
	}
	return comp >= 0, nil
}
