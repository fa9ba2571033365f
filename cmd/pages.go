package cmd

import (
	"fmt"

	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/style"
	"github.com/Hoodgail/watchlist/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pagesCmd)
	pagesCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

// pagesCmd resolves the decrypted page list for one chapter.
var pagesCmd = &cobra.Command{
	Use:   "pages <chapter-id>",
	Short: "Resolve the page list for one manga chapter",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := resolveProvider(cmd, media.CategoryManga)
		handleErr(err)

		pages := app().GetChapterPages(p.Name, args[0])
		if pages == nil || len(pages.Pages) == 0 {
			handleErr(fmt.Errorf("no pages resolved for chapter %q via %s", args[0], p.Name))
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			printJSON(cmd, pages)
			return
		}

		cmd.Println(util.Quantify(len(pages.Pages), "page resolved", "pages resolved"))
		for _, page := range pages.Pages {
			img := page.Img
			if len(img) > 80 {
				img = img[:77] + "..."
			}
			cmd.Printf("  %3d  %s\n", page.Page, style.Faint(img))
		}
	},
}
