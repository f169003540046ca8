// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Channel Registry - these keys locate the channel file and the channel played on startup.
const (
	ChannelsFile  = "channels.file"
	ChannelsStart = "channels.start"
)

// Health Monitoring - these keys govern the periodic reachability probe of the active stream.
const (
	HealthInterval = "health.interval"
	ProbeTimeout   = "probe.timeout"
)

// Reconnection - these keys configure the retry loop entered when a stream is lost.
const (
	ReconnectDelay       = "reconnect.delay"
	ReconnectGrace       = "reconnect.grace"
	ReconnectMaxAttempts = "reconnect.max_attempts"
	ReconnectProbeURL    = "reconnect.probe_url"
)

// Loading Overlay - these keys tune the simulated buffering progress.
const (
	LoadingTick      = "loading.tick"
	LoadingHideDelay = "loading.hide_delay"
)

// Remote Control - these keys configure numeric channel entry.
const (
	RemoteJumpDelay = "remote.jump_delay"
)

// Search - these keys define how the channel list is filtered.
const (
	SearchFuzzy = "search.fuzzy"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Media Playback - these keys maintain the configuration for the external video player.
const (
	Player       = "player.default"
	PlayerArgs   = "player.args"
	PlayerSocket = "player.socket"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
