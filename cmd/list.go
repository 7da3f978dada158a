package cmd

import (
	"fmt"

	"github.com/petflix/petflix/catalog"
	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/query"
	"github.com/petflix/petflix/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// pageFlags registers the navigation flags shared by list and search.
func pageFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("page", "p", 1, "Page to show")
	cmd.Flags().Int("from", 0, "Page currently shown, used to reject jumps too far ahead (0 turns the check off)\nDefaults to the page last shown for the same listing")
	cmd.Flags().BoolP("anime", "a", false, "Only show anime")
	cmd.Flags().BoolP("json", "j", false, "Print the result as JSON")
}

// requestFrom reads the navigation flags. Without --from the page last shown
// for view guards the jump.
func requestFrom(cmd *cobra.Command, view func(anime bool) string) (catalog.Request, string) {
	req := catalog.Request{
		Page:  lo.Must(cmd.Flags().GetInt("page")),
		From:  lo.Must(cmd.Flags().GetInt("from")),
		Anime: lo.Must(cmd.Flags().GetBool("anime")),
	}

	name := view(req.Anime)
	if !cmd.Flags().Changed("from") {
		req.From = query.LastPage(name)
	}
	return req, name
}

// showPage remembers the page just rendered for view.
func showPage(view string, page int) {
	if err := query.ShowPage(view, page); err != nil {
		log.Warnf("cmd: remember page %d of %s: %v", page, view, err)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	pageFlags(listCmd)
	listCmd.Flags().StringP("category", "c", "", "Category slug to list instead of the latest updates")

	// The root command shows the latest page when run bare.
	pageFlags(rootCmd)
}

// listCmd shows one page of the latest updates or of a category.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"browse", "ls"},
	Short:   "List the latest updates, a category or anime",
	Example: "  petflix list --page 2\n  petflix list --anime\n  petflix list --category hanh-dong",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var category string
		if f := cmd.Flags().Lookup("category"); f != nil {
			category = f.Value.String()
		}

		req, view := requestFrom(cmd, func(anime bool) string {
			if category != "" {
				return query.View("category", category, anime)
			}
			return query.View("latest", "", anime)
		})
		req.Category = category

		erase := util.PrintErasable(fmt.Sprintf("%s Loading...", icon.Get(icon.Progress)))
		listing, err := service().Browse(cmd.Context(), req)
		erase()
		handleErr(err)
		showPage(view, req.Page)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(writeJSON(cmd.OutOrStdout(), listing))
			return
		}

		if listing.Empty() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s no results\n", icon.Get(icon.Warn))
			return
		}

		title := "Latest updates"
		switch {
		case req.Category != "":
			title = "Category " + req.Category
		case req.Anime:
			title = "Anime"
		}
		renderListing(cmd.OutOrStdout(), title, listing)
	},
}
