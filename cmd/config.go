package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/color"
	"github.com/zapper-tv/zapper/config"
	"github.com/zapper-tv/zapper/constant"
	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/icon"
	"github.com/zapper-tv/zapper/style"
	"github.com/zapper-tv/zapper/where"
)

// configFile is where zapper.toml lives unless ZAPPER_CONFIG_PATH moves it.
func configFile() string {
	return filepath.Join(where.Config(), constant.Zapper+".toml")
}

// closestKey suggests the known key nearest to a mistyped one.
func closestKey(k string) string {
	return lo.MinBy(lo.Keys(config.Default), func(a, b string) bool {
		return levenshtein.Distance(k, a) < levenshtein.Distance(k, b)
	})
}

func errUnknownKey(k string) error {
	return fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(k),
		style.Fg(color.Yellow)(closestKey(k)),
	)
}

// lookupField resolves a key given as the first argument or with --key.
func lookupField(cmd *cobra.Command, args []string) config.Field {
	k := lo.Must(cmd.Flags().GetString("key"))
	if len(args) > 0 {
		k = args[0]
	}
	if k == "" {
		handleErr(errors.New("no key given, pass it as an argument or with --key"))
	}

	field, ok := config.Default[k]
	if !ok {
		handleErr(errUnknownKey(k))
	}
	return field
}

// parseValue converts raw command line words to the type of the field's default.
func parseValue(field config.Field, raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no value given for %s", field.Key)
	}

	switch field.Value.(type) {
	case []string:
		return raw, nil
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s takes a whole number, got %q", field.Key, raw[0])
		}
		if n < 0 {
			return nil, fmt.Errorf("%s cannot be negative", field.Key)
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s takes true or false, got %q", field.Key, raw[0])
		}
		return b, nil
	default:
		return raw[0], nil
	}
}

// saveConfig writes viper's state, creating the file on first use.
func saveConfig() {
	err := viper.WriteConfig()
	if errors.As(err, new(viper.ConfigFileNotFoundError)) {
		err = viper.SafeWriteConfig()
	}
	handleErr(err)
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	keys := lo.Keys(config.Default)
	sort.Strings(keys)
	return keys, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// configCmd groups the commands that read and change zapper.toml.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change settings such as probe timings, the channel file or the player",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Only describe these keys")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configInfoCmd.SetOut(os.Stdout)
}

// configInfoCmd describes settings with their current and default values.
var configInfoCmd = &cobra.Command{
	Use:     "info",
	Short:   "Describe settings with their environment variable, current value and default",
	Example: "  zapper config info -k health.interval -k reconnect.max_attempts",
	Run: func(cmd *cobra.Command, args []string) {
		keys := lo.Must(cmd.Flags().GetStringSlice("key"))
		fields := lo.Values(config.Default)

		if len(keys) > 0 {
			fields = lo.Map(keys, func(k string, _ int) config.Field {
				field, ok := config.Default[k]
				if !ok {
					handleErr(errUnknownKey(k))
				}
				return field
			})
		}

		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		for i, field := range fields {
			if i > 0 {
				cmd.Println()
			}
			cmd.Println(field.Pretty())
		}
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringP("key", "k", "", "Setting to change")
	configSetCmd.Flags().StringSliceP("value", "v", []string{}, "New value; repeat it for list settings such as player.args")
	_ = configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configSetCmd changes one setting and saves it.
var configSetCmd = &cobra.Command{
	Use:   "set [key] [value...]",
	Short: "Change a setting and save it to the config file",
	Example: "  zapper config set reconnect.max_attempts 10\n" +
		"  zapper config set player.args -- --fs --mute=yes",
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := lookupField(cmd, args)

		raw := lo.Must(cmd.Flags().GetStringSlice("value"))
		if len(args) > 1 {
			raw = args[1:]
		}

		value, err := parseValue(field, raw)
		handleErr(err)

		viper.Set(field.Key, value)
		saveConfig()

		fmt.Printf(
			"%s %s is now %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(field.Key),
			style.Fg(color.Yellow)(fmt.Sprint(value)),
		)
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringP("key", "k", "", "Setting to print")
	_ = configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configGetCmd prints the effective value of a setting, after env and flags.
var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the value a setting currently resolves to",
	Example:           "  zapper config get channels.file",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := lookupField(cmd, args)
		fmt.Println(viper.Get(field.Key))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().Bool("force", false, "Replace an existing config file")
}

// configWriteCmd saves every setting, defaults included, so they can be edited by hand.
var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write all settings to zapper.toml for editing by hand",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFile()

		if lo.Must(cmd.Flags().GetBool("force")) {
			exists, err := filesystem.API().Exists(path)
			handleErr(err)
			if exists {
				handleErr(filesystem.API().Remove(path))
			}
		}

		handleErr(viper.SafeWriteConfig())
		fmt.Printf(
			"%s wrote settings to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			path,
		)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

// configDeleteCmd removes zapper.toml; every setting falls back to its default.
var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete zapper.toml and go back to the defaults",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFile()))
		fmt.Printf(
			"%s deleted %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			configFile(),
		)
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().StringP("key", "k", "", "Setting to restore")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every setting")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	configResetCmd.MarkFlagsOneRequired("key", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configResetCmd puts settings back to their defaults and saves them.
var configResetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Restore one setting, or all of them, to the default",
	Example: "  zapper config reset -k reconnect.probe_url",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			for k, field := range config.Default {
				viper.Set(k, field.Value)
			}
			saveConfig()

			fmt.Printf("%s restored every setting\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		field := lookupField(cmd, nil)
		viper.Set(field.Key, field.Value)
		saveConfig()

		fmt.Printf(
			"%s %s is back to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(field.Key),
			style.Fg(color.Yellow)(fmt.Sprint(field.Value)),
		)
	},
}
