package cmd

import (
	"fmt"

	"github.com/Hoodgail/watchlist/color"
	"github.com/Hoodgail/watchlist/style"
	"github.com/Hoodgail/watchlist/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

// infoCmd prints the full detail record for one title.
var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show the full detail record for one title",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := resolveProvider(cmd, "")
		handleErr(err)

		info := app().GetInfo(p.Name, args[0])
		if info == nil {
			handleErr(fmt.Errorf("%s has no record for %q", p.Name, args[0]))
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			printJSON(cmd, info)
			return
		}

		title := style.New().Bold(true).Foreground(color.HiPurple).Render
		cmd.Printf("%s %s\n", title(info.Title), style.Fg(color.Yellow)("["+info.ID+"]"))
		if info.Description != "" {
			cmd.Println(style.Faint(info.Description))
		}
		if len(info.Genres) > 0 {
			cmd.Println(style.Fg(color.Green)(joinNonEmpty(info.Genres...)))
		}

		switch {
		case len(info.Episodes) > 0:
			cmd.Println()
			cmd.Println(util.Quantify(len(info.Episodes), "episode:", "episodes:"))
			for _, episode := range info.Episodes {
				cmd.Printf("  %3d  %s %s\n", episode.Number, episode.Title, style.Faint(episode.ID))
			}
		case len(info.Chapters) > 0:
			cmd.Println()
			cmd.Println(util.Quantify(len(info.Chapters), "chapter:", "chapters:"))
			for _, chapter := range info.Chapters {
				cmd.Printf("  %5s  %s %s\n", chapter.Number, chapter.Title, style.Faint(chapter.ID))
			}
		}
	},
}
