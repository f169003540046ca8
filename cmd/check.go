package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zapper-tv/zapper/color"
	"github.com/zapper-tv/zapper/constant"
	"github.com/zapper-tv/zapper/icon"
	"github.com/zapper-tv/zapper/key"
	"github.com/zapper-tv/zapper/log"
	"github.com/zapper-tv/zapper/style"
	"github.com/zapper-tv/zapper/version"
)

// playerBinary is the configured player executable.
func playerBinary() string {
	if name := viper.GetString(key.Player); name != "" {
		return name
	}
	return "mpv"
}

// CheckDependencies verifies the availability of required system dependencies.
// The current implementation validates the presence of the player in the system PATH.
func CheckDependencies() {
	binary := playerBinary()
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd reports whether the installed player can be driven.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the media player is installed and recent enough",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		binary := playerBinary()
		v, err := version.Player(cmd.Context(), binary)
		if err != nil {
			log.Warn(err)
			fmt.Printf("%s %s found, version unknown\n", style.Fg(color.Yellow)(icon.Get(icon.Progress)), binary)
			return
		}

		supported, err := version.Supported(v)
		handleErr(err)
		if !supported {
			handleErr(fmt.Errorf("%s %s is too old, %s or newer is required", binary, v, version.MinimumMPV))
		}

		fmt.Printf("%s %s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), binary, style.Bold(v))
	},
}
