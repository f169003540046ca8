// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Zapper is the canonical application identifier used for filesystem paths and CLI branding.
	Zapper = "zapper"

	// Version is the current application semantic version string.
	Version = "0.3.1"

	// UserAgent is the default HTTP User-Agent string used for reachability probes.
	UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)
