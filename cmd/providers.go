package cmd

import (
	"os"

	"github.com/Hoodgail/watchlist/color"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/provider"
	"github.com/Hoodgail/watchlist/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.SetOut(os.Stdout)
}

// providersCmd lists every supported provider grouped by category.
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the supported providers by category",
	Run: func(cmd *cobra.Command, args []string) {
		header := style.New().Bold(true).Foreground(color.HiCyan).Render

		for _, category := range media.Categories() {
			known := provider.ByCategory(category)
			if len(known) == 0 {
				continue
			}

			cmd.Println(header(category.String()))
			for _, p := range known {
				line := "  " + p.Name
				if p.Name == provider.DefaultFor(category).Name {
					line += " " + style.Faint("(default)")
				}
				cmd.Println(line)
			}
		}
	},
}
