package cmd

import (
	"fmt"

	"github.com/Hoodgail/watchlist/color"
	"github.com/Hoodgail/watchlist/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serversCmd)
	serversCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

// serversCmd lists the hosting server options for one episode.
var serversCmd = &cobra.Command{
	Use:   "servers <episode-id>",
	Short: "List the hosting servers for one episode",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := resolveProvider(cmd, "")
		handleErr(err)

		servers := app().GetEpisodeServers(p.Name, args[0])
		if len(servers) == 0 {
			handleErr(fmt.Errorf("no servers listed for %q via %s", args[0], p.Name))
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			printJSON(cmd, servers)
			return
		}

		for _, server := range servers {
			line := style.New().Bold(true).Render(server.Name)
			if server.Type != "" {
				line += " " + style.Fg(color.Yellow)(string(server.Type))
			}
			cmd.Println(line)
		}
	},
}
