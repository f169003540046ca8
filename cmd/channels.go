package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/channel"
	"github.com/zapper-tv/zapper/color"
	"github.com/zapper-tv/zapper/constant"
	"github.com/zapper-tv/zapper/filesystem"
	"github.com/zapper-tv/zapper/icon"
	"github.com/zapper-tv/zapper/key"
	"github.com/zapper-tv/zapper/style"
	"github.com/zapper-tv/zapper/util"
	"github.com/zapper-tv/zapper/where"
)

func init() {
	rootCmd.AddCommand(channelsCmd)
}

// channelsCmd groups the commands that inspect the channel registry.
var channelsCmd = &cobra.Command{
	Use:     "channels",
	Aliases: []string{"ch"},
	Short:   "Inspect the channel registry",
}

func completionCategories(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	registry, err := loadRegistry(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return registry.Categories(), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	channelsCmd.AddCommand(channelsListCmd)
	channelsListCmd.Flags().StringP("category", "c", channel.AllCategories, "Only list channels of this category")
	channelsListCmd.Flags().StringP("query", "q", "", "Only list channels whose name matches")
	channelsListCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	_ = channelsListCmd.RegisterFlagCompletionFunc("category", completionCategories)

	channelsListCmd.SetOut(os.Stdout)
}

// channelsListCmd prints the channels with their numbers.
var channelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List channels with the numbers used to jump to them",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		registry, err := loadRegistry(cmd.Context())
		handleErr(err)

		filter := channel.Filter{
			Category: lo.Must(cmd.Flags().GetString("category")),
			Query:    lo.Must(cmd.Flags().GetString("query")),
			Fuzzy:    viper.GetBool(key.SearchFuzzy),
		}
		indexes := registry.Filter(filter)

		if lo.Must(cmd.Flags().GetBool("json")) {
			type numbered struct {
				Number int `json:"number"`
				channel.Record
			}

			out := lo.Map(indexes, func(i int, _ int) numbered {
				c, _ := registry.Get(i)
				return numbered{Number: i + 1, Record: c.Record()}
			})

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(out))
			return
		}

		for _, i := range indexes {
			c, _ := registry.Get(i)
			line := fmt.Sprintf("%s %s", style.Fg(color.Yellow)(fmt.Sprintf("%4d", i+1)), c.Name)
			if c.Type == channel.TypeMPD {
				line += " " + style.Faint("dash")
			}
			cmd.Printf("%s %s\n", line, style.Fg(color.Purple)(c.Category))
		}

		cmd.Println(style.Faint(util.Quantify(len(indexes), "channel", "channels")))
	},
}

func init() {
	channelsCmd.AddCommand(channelsCategoriesCmd)
	channelsCategoriesCmd.SetOut(os.Stdout)
}

// channelsCategoriesCmd prints the categories in the order "c" cycles through them.
var channelsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List channel categories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		registry, err := loadRegistry(cmd.Context())
		handleErr(err)

		for _, category := range registry.Categories() {
			count := len(registry.Filter(channel.Filter{Category: category}))
			cmd.Printf("%s %s\n", category, style.Faint(util.Quantify(count, "channel", "channels")))
		}
	},
}

func init() {
	channelsCmd.AddCommand(channelsSchemaCmd)
}

// channelsSchemaCmd prints the JSON schema of yaml and json channel files.
var channelsSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of channel files",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.DoNotReference = true

		schema := reflector.Reflect(&channel.File{})
		schema.Title = constant.Zapper + " channels"

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(schema))
	},
}

func init() {
	channelsCmd.AddCommand(channelsInitCmd)
	channelsInitCmd.Flags().Bool("force", false, "Overwrite an existing channel file")
}

// channelsInitCmd writes a starter channel file.
var channelsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example channel file to edit",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := viper.GetString(key.ChannelsFile)
		if path == "" {
			path = where.Channels()
		}

		exists, err := filesystem.API().Exists(path)
		handleErr(err)
		if exists && !lo.Must(cmd.Flags().GetBool("force")) {
			handleErr(fmt.Errorf("%s already exists, use --force to overwrite it", path))
		}

		handleErr(filesystem.API().MkdirAll(filepath.Dir(path), os.ModePerm))
		handleErr(filesystem.API().WriteFile(path, []byte(constant.ChannelsTemplate), 0o644))
		fmt.Printf(
			"%s wrote channels to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			path,
		)
	},
}
