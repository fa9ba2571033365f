package cmd

import (
	"fmt"

	"github.com/Hoodgail/watchlist/color"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/open"
	"github.com/Hoodgail/watchlist/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.Flags().StringP("audio", "a", string(media.Sub), "Audio preference (sub, dub, raw, both)")
	sourcesCmd.Flags().StringP("server", "s", "", "Preferred hosting server")
	sourcesCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	sourcesCmd.Flags().BoolP("open", "o", false, "Open the first resolved source with the system handler")
}

// sourcesCmd resolves playable sources for one episode.
var sourcesCmd = &cobra.Command{
	Use:   "sources <episode-id>",
	Short: "Resolve playable sources for one episode",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := resolveProvider(cmd, "")
		handleErr(err)

		audio := media.SubOrDub(lo.Must(cmd.Flags().GetString("audio")))
		server := lo.Must(cmd.Flags().GetString("server"))

		sources := app().GetEpisodeSources(p.Name, args[0], audio, server)
		if sources == nil {
			handleErr(fmt.Errorf("no sources resolved for %q via %s, try another server or provider", args[0], p.Name))
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			printJSON(cmd, sources)
			return
		}

		for _, source := range sources.Sources {
			quality := source.Quality
			if quality == "" {
				quality = "default"
			}
			cmd.Printf("%s  %s\n", style.Fg(color.Yellow)(quality), source.URL)
		}

		if referer, ok := sources.Headers["Referer"]; ok {
			cmd.Println(style.Faint("Referer: " + referer))
		}
		for _, subtitle := range sources.Subtitles {
			cmd.Printf("%s  %s\n", style.Fg(color.Green)(subtitle.Lang), subtitle.URL)
		}

		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.Start(sources.Sources[0].URL))
		}
	},
}
