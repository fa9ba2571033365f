package cmd

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/Hoodgail/watchlist/aggregator"
	"github.com/Hoodgail/watchlist/color"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/provider"
	"github.com/Hoodgail/watchlist/style"
	"github.com/Hoodgail/watchlist/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var app = sync.OnceValue(aggregator.New)

// resolveProvider reads the provider flag, prompting interactively when it
// was omitted. An empty category accepts any provider.
func resolveProvider(cmd *cobra.Command, category media.Category) (provider.Provider, error) {
	name := lo.Must(cmd.Flags().GetString("provider"))

	if name != "" {
		p, ok := provider.Get(name)
		if !ok {
			return provider.Provider{}, fmt.Errorf("unknown provider %q", name)
		}
		if category != "" && p.Category != category {
			return provider.Provider{}, fmt.Errorf("provider %q serves %s, not %s", name, p.Category, category)
		}
		return p, nil
	}

	candidates := provider.All()
	if category != "" {
		candidates = provider.ByCategory(category)
	}

	options := lo.Map(candidates, func(p provider.Provider, _ int) string {
		return fmt.Sprintf("%s (%s)", p.Name, p.Category)
	})

	var picked string
	prompt := survey.Select{
		Message: "Which provider?",
		Options: options,
	}
	if err := survey.AskOne(&prompt, &picked); err != nil {
		return provider.Provider{}, err
	}

	for i, option := range options {
		if option == picked {
			return candidates[i], nil
		}
	}
	return provider.Provider{}, fmt.Errorf("no provider selected")
}

func printJSON(cmd *cobra.Command, value any) {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	handleErr(encoder.Encode(value))
}

func renderResults(cmd *cobra.Command, page media.Paginated[media.SearchResult]) {
	if len(page.Results) == 0 {
		cmd.Println(style.Faint("no results"))
		return
	}

	width, _, err := util.TerminalSize()
	if err != nil {
		width = 80
	}
	width = util.Max(width, 40)

	title := style.New().Bold(true).Foreground(color.HiPurple).Render
	meta := style.Fg(color.Yellow)

	for _, result := range page.Results {
		cmd.Printf("%s %s\n", title(truncate(result.Title, width-len(result.ID)-4)), meta("["+result.ID+"]"))
		if result.Type != "" || result.ReleaseDate != "" {
			cmd.Printf("  %s\n", style.Faint(joinNonEmpty(string(result.Type), result.ReleaseDate, string(result.Status))))
		}
	}

	cmd.Println()
	cmd.Println(style.Faint(fmt.Sprintf(
		"page %d, %s",
		page.CurrentPage,
		util.Quantify(len(page.Results), "result", "results"),
	)))
	if page.HasNextPage {
		cmd.Println(style.Faint("more pages available"))
	}
}

func truncate(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if out != "" {
			out += " · "
		}
		out += part
	}
	return out
}
