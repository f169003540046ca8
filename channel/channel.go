// Package channel defines the channel record and the ordered registry playback indexes into.
package channel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/mo"
)

// Type distinguishes DASH manifests, which may carry DRM, from everything else.
type Type int

const (
	TypeOther Type = iota
	TypeMPD
)

// String returns the name used in channel files.
func (t Type) String() string {
	switch t {
	case TypeMPD:
		return "mpd"
	default:
		return "other"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value is TypeOther.
func (t *Type) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "other":
		*t = TypeOther
	case "mpd", "dash":
		*t = TypeMPD
	default:
		return fmt.Errorf("unknown channel type %q", text)
	}
	return nil
}

// DRM is the credential blob handed to the player untouched.
type DRM struct {
	Scheme     string            `yaml:"scheme" json:"scheme" jsonschema:"enum=clearkey,enum=widevine,enum=playready"`
	LicenseURL string            `yaml:"license_url,omitempty" json:"license_url,omitempty"`
	Keys       map[string]string `yaml:"keys,omitempty" json:"keys,omitempty" jsonschema:"description=Key ID to key, both hex encoded"`
	Headers    map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Channel is immutable once loaded. Its identity is its index in the Registry.
type Channel struct {
	Name     string
	URL      string
	Category string
	Type     Type

	drm *DRM
}

// New builds a channel. drm may be nil.
func New(name, url, category string, t Type, drm *DRM) Channel {
	return Channel{Name: name, URL: url, Category: category, Type: t, drm: drm}
}

// DRM returns the credentials to pass to the player. Only mpd channels carry them.
func (c Channel) DRM() mo.Option[DRM] {
	if c.Type != TypeMPD || c.drm == nil {
		return mo.None[DRM]()
	}
	return mo.Some(*c.drm)
}

// Record returns the channel as a channel file entry.
func (c Channel) Record() Record {
	return Record{
		Name:     c.Name,
		URL:      c.URL,
		Category: c.Category,
		Type:     c.Type,
		DRM:      c.drm,
	}
}

// MarshalJSON exposes the channel in the same shape as the channel file.
func (c Channel) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Record())
}

// Record is one entry of a channel file.
type Record struct {
	Name     string `yaml:"name" json:"name" jsonschema:"required"`
	URL      string `yaml:"url" json:"url" jsonschema:"required,format=uri"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	Type     Type   `yaml:"type,omitempty" json:"type,omitempty" jsonschema:"type=string,enum=other,enum=mpd"`
	DRM      *DRM   `yaml:"drm,omitempty" json:"drm,omitempty"`
}

// File is the top-level document of a yaml or json channel file.
type File struct {
	Channels []Record `yaml:"channels" json:"channels"`
}

func (r Record) channel() (Channel, error) {
	name := strings.TrimSpace(r.Name)
	link := strings.TrimSpace(r.URL)
	if name == "" {
		return Channel{}, fmt.Errorf("channel without a name (url %q)", link)
	}
	if link == "" {
		return Channel{}, fmt.Errorf("channel %q has no url", name)
	}

	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = Uncategorized
	}

	return New(name, link, category, r.Type, r.DRM), nil
}
