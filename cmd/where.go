package cmd

import (
	"os"

	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/style"
	"github.com/petflix/petflix/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// whereTarget is a path the where command can print.
type whereTarget struct {
	name  string
	flag  string
	short string
	path  func() string
	// hidden targets print only when asked for.
	hidden bool
}

var whereTargets = []whereTarget{
	{name: "Config", flag: "config", short: "c", path: where.Config},
	{name: "Cache", flag: "cache", short: "k", path: where.Cache},
	{name: "Logs", flag: "logs", short: "l", path: where.Logs},
	{name: "History", flag: "history", short: "H", path: where.History},
	{name: "Synonyms", flag: "synonyms", short: "s", path: where.Synonyms},
	{name: "Store", flag: "store", path: where.Store, hidden: true},
	{name: "Queries", flag: "queries", path: where.Queries, hidden: true},
	{name: "Pages", flag: "pages", path: where.Pages, hidden: true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, t := range whereTargets {
		whereCmd.Flags().BoolP(t.flag, t.short, false, t.name+" path")
		if t.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(t.flag))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(whereTargets, func(t whereTarget, _ int) string {
		return t.flag
	})...)

	whereCmd.SetOut(os.Stdout)
}

// whereCmd prints the files and directories petflix uses.
var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where petflix keeps its files",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if t, ok := lo.Find(whereTargets, func(t whereTarget) bool {
			return lo.Must(cmd.Flags().GetBool(t.flag))
		}); ok {
			cmd.Println(t.path())
			return
		}

		heading := style.New().Bold(true).Foreground(color.HiPurple).Render
		visible := lo.Reject(whereTargets, func(t whereTarget, _ int) bool { return t.hidden })

		for i, t := range visible {
			cmd.Printf("%s %s\n", heading(t.name+"?"), style.Fg(color.Yellow)("--"+t.flag))
			cmd.Println(t.path())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
