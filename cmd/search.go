package cmd

import (
	"fmt"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/query"
	"github.com/petflix/petflix/style"
	"github.com/petflix/petflix/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	pageFlags(searchCmd)
	searchCmd.Flags().BoolP("recent", "r", false, "Show recent search keywords")

	searchCmd.AddCommand(searchForgetCmd)
	searchForgetCmd.Flags().BoolP("all", "A", false, "Forget every remembered keyword")
}

// searchCmd runs the multi-strategy search.
var searchCmd = &cobra.Command{
	Use:     "search [keyword...]",
	Aliases: []string{"s", "find"},
	Short:   "Search the catalog",
	Long: `Search the catalog by title, keyword tokens and alternate terms.
When nothing matches directly, the latest updates are filtered locally.`,
	Args:    cobra.ArbitraryArgs,
	Example: "  petflix search naruto\n  petflix search attack on titan --anime\n  petflix search action --page 2 --from 1",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		keyword := strings.Join(args, " ")

		if lo.Must(cmd.Flags().GetBool("recent")) || strings.TrimSpace(keyword) == "" {
			recent := query.Recent()
			if len(recent) == 0 {
				handleErr(cmd.Help())
				return
			}

			_, _ = fmt.Fprintln(out, header("Recent searches"))
			for _, q := range recent {
				_, _ = fmt.Fprintf(out, "  %s %s\n", icon.Get(icon.Search), q)
			}
			return
		}

		erase := util.PrintErasable(fmt.Sprintf("%s Searching for %s...", icon.Get(icon.Progress), style.Fg(color.Purple)(keyword)))
		req, view := requestFrom(cmd, func(anime bool) string {
			return query.View("search", keyword, anime)
		})
		listing, err := service().Search(cmd.Context(), keyword, req)
		erase()
		handleErr(err)
		showPage(view, req.Page)

		if err := query.Remember(keyword); err != nil {
			log.Warnf("remember keyword: %v", err)
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(writeJSON(out, listing))
			return
		}

		if listing.Empty() {
			_, _ = fmt.Fprintf(out, "%s no results for %s\n", icon.Get(icon.Warn), style.Fg(color.Purple)(keyword))

			suggestions := query.SuggestMany(keyword)
			if alternates, ok := service().Alternates(keyword).Get(); ok {
				suggestions = append(suggestions, alternates...)
			}
			suggestions = lo.Uniq(suggestions)
			slices.SortStableFunc(suggestions, func(a, b string) int {
				return levenshtein.Distance(keyword, a) - levenshtein.Distance(keyword, b)
			})
			if len(suggestions) > 0 {
				_, _ = fmt.Fprintf(out, "did you mean %s?\n", style.Fg(color.Yellow)(strings.Join(lo.Slice(suggestions, 0, 3), ", ")))
			}
			return
		}

		renderListing(out, fmt.Sprintf("%s for %q", util.Quantify(listing.View.TotalItems, "result", "results"), listing.Keyword), listing)
	},
}

// searchForgetCmd removes remembered keywords.
var searchForgetCmd = &cobra.Command{
	Use:   "forget [keyword...]",
	Short: "Forget a remembered search keyword",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			handleErr(query.Clear())
		} else if len(args) > 0 {
			handleErr(query.Forget(strings.Join(args, " ")))
		} else {
			handleErr(cmd.Help())
			return
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s forgotten\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
