package cmd

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("page", "P", 1, "Result page to fetch")
	searchCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

// searchCmd queries one provider and prints the normalized results.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search one provider for a title",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := resolveProvider(cmd, "")
		handleErr(err)

		query := strings.Join(args, " ")
		page := app().Search(p.Name, query, lo.Must(cmd.Flags().GetInt("page")))

		if lo.Must(cmd.Flags().GetBool("json")) {
			printJSON(cmd, page)
			return
		}

		renderResults(cmd, page)
	},
}
