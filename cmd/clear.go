package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/util"
	"github.com/petflix/petflix/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget is a file or directory the clear command can remove.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"durable cache", "store", mo.Some("s"), where.Store},
	{"watch history", "history", mo.None[string](), where.History},
	{"search keywords", "queries", mo.Some("q"), where.Queries},
	{"remembered pages", "pages", mo.None[string](), where.Pages},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// clearCmd removes cached and persisted artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached and persisted artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearTargets, func(t clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(t.argLong))
		})

		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		if !lo.Must(cmd.Flags().GetBool("yes")) {
			var confirmed bool
			names := lo.Map(selected, func(t clearTarget, _ int) string { return t.name })
			handleErr(survey.AskOne(&survey.Confirm{
				Message: fmt.Sprintf("Clear %v?", names),
				Default: true,
			}, &confirmed))
			if !confirmed {
				return
			}
		}

		for _, target := range selected {
			e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := util.Delete(target.location())
			e()
			handleErr(err)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}
	},
}
