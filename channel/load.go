package channel

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zapper-tv/zapper/filesystem"
	"gopkg.in/yaml.v3"
)

// Load reads a channel file through the virtual filesystem. The format is
// picked from the extension: .yaml/.yml, .json, or .m3u/.m3u8.
func Load(path string) (*Registry, error) {
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channels: %w", err)
	}

	return Parse(path, data)
}

// Parse decodes data in the format named by the extension of name, which
// may be a file path or a URL path.
func Parse(name string, data []byte) (*Registry, error) {
	var (
		registry *Registry
		err      error
	)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		registry, err = ParseYAML(data)
	case ".json":
		registry, err = ParseJSON(data)
	case ".m3u", ".m3u8":
		registry, err = ParseM3U(data)
	default:
		return nil, fmt.Errorf("unsupported channel file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}

	return registry, nil
}

// ParseYAML decodes a File document.
func ParseYAML(data []byte) (*Registry, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return fromRecords(file.Channels)
}

// ParseJSON decodes either a File document or a bare array of records.
func ParseJSON(data []byte) (*Registry, error) {
	var records []Record

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	} else {
		var file File
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		records = file.Channels
	}

	return fromRecords(records)
}

func fromRecords(records []Record) (*Registry, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	channels := make([]Channel, 0, len(records))
	for i, r := range records {
		c, err := r.channel()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		channels = append(channels, c)
	}

	return NewRegistry(channels...), nil
}

// ParseM3U reads an extended M3U playlist. The name is the text after the
// first unquoted comma of #EXTINF and the category its group-title attribute.
// #KODIPROP inputstream.adaptive license lines attach clearkey DRM to the
// following entry.
func ParseM3U(data []byte) (*Registry, error) {
	var (
		records []Record
		pending Record
		drm     *DRM
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "", strings.HasPrefix(line, "#EXTM3U"):
			continue
		case strings.HasPrefix(line, "#EXTINF:"):
			pending = parseExtinf(strings.TrimPrefix(line, "#EXTINF:"))
		case strings.HasPrefix(line, "#KODIPROP:"):
			drm = parseKodiProp(strings.TrimPrefix(line, "#KODIPROP:"), drm)
		case strings.HasPrefix(line, "#"):
			continue
		default:
			pending.URL = line
			if pending.Name == "" {
				pending.Name = line
			}
			if drm != nil || strings.HasSuffix(strings.ToLower(strings.SplitN(line, "?", 2)[0]), ".mpd") {
				pending.Type = TypeMPD
			}
			pending.DRM = drm
			records = append(records, pending)
			pending, drm = Record{}, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan m3u: %w", err)
	}

	return fromRecords(records)
}

func parseExtinf(info string) Record {
	var r Record

	attrs, name := info, ""
	inQuote := false
	for i, ch := range info {
		if ch == '"' {
			inQuote = !inQuote
		}
		if ch == ',' && !inQuote {
			attrs, name = info[:i], info[i+1:]
			break
		}
	}
	r.Name = strings.TrimSpace(name)
	r.Category = m3uAttr(attrs, "group-title")

	return r
}

func m3uAttr(attrs, name string) string {
	marker := name + `="`
	i := strings.Index(attrs, marker)
	if i < 0 {
		return ""
	}
	rest := attrs[i+len(marker):]
	j := strings.Index(rest, `"`)
	if j < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:j])
}

func parseKodiProp(prop string, drm *DRM) *DRM {
	k, v, ok := strings.Cut(prop, "=")
	if !ok {
		return drm
	}
	k, v = strings.TrimSpace(k), strings.TrimSpace(v)

	switch k {
	case "inputstream.adaptive.license_type":
		if drm == nil {
			drm = &DRM{}
		}
		drm.Scheme = strings.TrimPrefix(v, "org.w3.")
	case "inputstream.adaptive.license_key":
		if drm == nil {
			drm = &DRM{}
		}
		if kid, key, ok := strings.Cut(v, ":"); ok && !strings.Contains(v, "://") {
			if drm.Keys == nil {
				drm.Keys = make(map[string]string)
			}
			drm.Keys[kid] = key
		} else {
			drm.LicenseURL = v
		}
	}
	return drm
}
