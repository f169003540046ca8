// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/color"
	"github.com/zapper-tv/zapper/constant"
	"github.com/zapper-tv/zapper/key"
	"github.com/zapper-tv/zapper/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Zapper + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds every configuration field keyed by its dotted name.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.ChannelsFile, "", "Channel registry file (yaml, json or m3u).\nEmpty means channels.yaml in the config directory")
	register(key.ChannelsStart, 1, "Channel number played on startup. 0 starts with nothing playing")
	register(key.HealthInterval, 10, "Seconds between reachability probes of the playing channel")
	register(key.ProbeTimeout, 5, "Seconds before a reachability probe is considered failed")
	register(key.ReconnectDelay, 3, "Seconds between reconnection attempts")
	register(key.ReconnectGrace, 2, "Seconds to wait for playback after the network comes back")
	register(key.ReconnectMaxAttempts, 0, "Give up after this many reconnection attempts.\n0 retries forever")
	register(key.ReconnectProbeURL, "https://www.google.com/favicon.ico", "Always-up endpoint used to detect that the network is back")
	register(key.LoadingTick, 100, "Milliseconds between loading progress updates")
	register(key.LoadingHideDelay, 200, "Milliseconds the loading overlay stays at 100% before hiding")
	register(key.RemoteJumpDelay, 2000, "Milliseconds to wait for more digits when typing a channel number")
	register(key.SearchFuzzy, false, "Use fuzzy matching instead of substring matching when searching channels")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain, kaomoji, squares")
	register(key.Player, "mpv", "Media player executable")
	register(key.PlayerArgs, []string{}, "Extra arguments passed to the media player")
	register(key.PlayerSocket, "", "Attach to an mpv already listening on this IPC socket.\nEmpty starts a new player")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
