package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zapper-tv/zapper/color"
	"github.com/zapper-tv/zapper/config"
	"github.com/zapper-tv/zapper/icon"
	"github.com/zapper-tv/zapper/key"
	"github.com/zapper-tv/zapper/probe"
	"github.com/zapper-tv/zapper/style"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

// probeCmd runs the reachability probe the health monitor uses, once.
var probeCmd = &cobra.Command{
	Use:     "probe <url>",
	Short:   "Check whether a stream or endpoint answers, the way the health monitor does",
	Long:    "Send one HEAD request to the url. Any HTTP response, whatever its status, counts as reachable.",
	Args:    cobra.ExactArgs(1),
	Example: "  zapper probe https://example.com/live/news.m3u8",
	Run: func(cmd *cobra.Command, args []string) {
		started := time.Now()
		err := probe.New(config.Seconds(key.ProbeTimeout)).Probe(cmd.Context(), args[0])
		handleErr(err)

		fmt.Printf(
			"%s %s is reachable %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			args[0],
			style.Faint(fmt.Sprintf("(%s)", time.Since(started).Round(time.Millisecond))),
		)
	},
}
