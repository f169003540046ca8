// Package cmd implements the command-line interface for zapper.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/color"
	"github.com/zapper-tv/zapper/constant"
	"github.com/zapper-tv/zapper/icon"
	"github.com/zapper-tv/zapper/key"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/style"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("channels", "f", "", "Channel file (yaml, json or m3u) or playlist URL")
	lo.Must0(viper.BindPFlag(key.ChannelsFile, rootCmd.PersistentFlags().Lookup("channels")))

	rootCmd.Flags().IntP("start", "n", 1, "Channel number to play on startup, 0 for none")
	lo.Must0(viper.BindPFlag(key.ChannelsStart, rootCmd.Flags().Lookup("start")))

	rootCmd.Flags().BoolP("resume", "r", false, "Start on the channel played last")
	rootCmd.Flags().Bool("headless", false, "Run without the terminal interface, printing status lines")

	rootCmd.Flags().String("socket", "", "Attach to an mpv already listening on this IPC socket")
	lo.Must0(viper.BindPFlag(key.PlayerSocket, rootCmd.Flags().Lookup("socket")))

	rootCmd.MarkFlagsMutuallyExclusive("start", "resume")
}

// rootCmd defines the entry point for the zapper application.
var rootCmd = &cobra.Command{
	Use:   constant.Zapper,
	Short: "A remote-control style IPTV player for the terminal",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A remote-control style IPTV player for the terminal"),
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if viper.GetString(key.PlayerSocket) == "" {
			CheckDependencies()
		}

		app, err := newApp(cmd.Context(), appOptions{
			Headless: lo.Must(cmd.Flags().GetBool("headless")),
			Resume:   lo.Must(cmd.Flags().GetBool("resume")),
		})
		handleErr(err)
		handleErr(app.run(cmd.Context()))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
