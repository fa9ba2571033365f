// Package cmd implements the command-line interface for watchlist.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Hoodgail/watchlist/color"
	"github.com/Hoodgail/watchlist/constant"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/log"
	"github.com/Hoodgail/watchlist/provider"
	"github.com/Hoodgail/watchlist/style"
	"github.com/Hoodgail/watchlist/version"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("provider", "p", "", "Provider to query")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("provider", completionProviderNames))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

func completionProviderNames(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	names := lo.Map(provider.All(), func(p provider.Provider, _ int) string {
		return p.Name
	})
	return names, cobra.ShellCompDirectiveNoFileComp
}

// rootCmd defines the entry point for the watchlist application.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "A command-line aggregator for streaming and reading sources",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render("▇▇▇ "+constant.App) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A command-line aggregator for streaming and reading sources"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
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
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.Red)("✗"), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
