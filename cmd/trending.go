package cmd

import (
	"fmt"

	"github.com/Hoodgail/watchlist/media"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	for _, c := range []*cobra.Command{trendingCmd, recentCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringP("category", "c", string(media.CategoryAnime), "Category feed to fetch")
		c.Flags().IntP("page", "P", 1, "Result page to fetch")
		c.Flags().BoolP("json", "j", false, "Format the output as JSON")
		lo.Must0(c.RegisterFlagCompletionFunc("category", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return lo.Map(media.Categories(), func(c media.Category, _ int) string {
				return c.String()
			}), cobra.ShellCompDirectiveNoFileComp
		}))
	}
}

func feedCategory(cmd *cobra.Command) media.Category {
	category := media.Category(lo.Must(cmd.Flags().GetString("category")))
	if !category.Valid() {
		handleErr(fmt.Errorf("unknown category %q", category))
	}
	return category
}

// trendingCmd prints the curated trending feed for a category.
var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show the trending feed for a category",
	Run: func(cmd *cobra.Command, args []string) {
		page := app().Trending(feedCategory(cmd), lo.Must(cmd.Flags().GetInt("page")))

		if lo.Must(cmd.Flags().GetBool("json")) {
			printJSON(cmd, page)
			return
		}
		renderResults(cmd, page)
	},
}

// recentCmd prints the recent-releases feed for a category.
var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the recent releases feed for a category",
	Run: func(cmd *cobra.Command, args []string) {
		page := app().Recent(feedCategory(cmd), lo.Must(cmd.Flags().GetInt("page")))

		if lo.Must(cmd.Flags().GetBool("json")) {
			printJSON(cmd, page)
			return
		}
		renderResults(cmd, page)
	},
}
