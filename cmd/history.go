package cmd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/history"
	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/style"
	"github.com/petflix/petflix/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var progressStore = sync.OnceValue(func() history.Store {
	return history.NewFileStore(where.History())
})

func historyUser() string {
	return lo.CoalesceOrEmpty(viper.GetString(key.HistoryUser), "local")
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Print the history as JSON")
	historyCmd.PersistentFlags().StringP("user", "u", "", "User whose history to use")
	lo.Must0(viper.BindPFlag(key.HistoryUser, historyCmd.PersistentFlags().Lookup("user")))
}

// historyCmd lists playback progress, most recent first.
var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"continue"},
	Short:   "Show what you were watching",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := progressStore().List(historyUser())
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(writeJSON(cmd.OutOrStdout(), entries))
			return
		}

		if len(entries) == 0 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s no history yet\n", icon.Get(icon.Warn))
			return
		}
		renderHistory(cmd.OutOrStdout(), entries)
	},
}

func init() {
	historyCmd.AddCommand(historySaveCmd)
	historySaveCmd.Flags().IntP("time", "t", 0, "Seconds watched")
	historySaveCmd.Flags().IntP("duration", "d", 0, "Episode length in seconds")
	historySaveCmd.Flags().String("title", "", "Title to show in the history")
	historySaveCmd.Flags().Bool("embed", false, "Episode was opened in an embedded player that cannot report time")
}

// historySaveCmd records progress for an episode.
var historySaveCmd = &cobra.Command{
	Use:     "save [id] [episode]",
	Short:   "Record playback progress for an episode",
	Example: "  petflix history save naruto-shippuden tap-12 --time 600 --duration 1380",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if !viper.GetBool(key.HistorySave) {
			handleErr(errors.New("history is disabled, enable it with: petflix config set " + key.HistorySave + " true"))
		}

		progress := history.Progress{
			CurrentTime: lo.Must(cmd.Flags().GetInt("time")),
			Duration:    lo.Must(cmd.Flags().GetInt("duration")),
			Title:       lo.Must(cmd.Flags().GetString("title")),
			HasEmbed:    lo.Must(cmd.Flags().GetBool("embed")),
		}

		handleErr(progressStore().SaveProgress(historyUser(), args[0], args[1], progress))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s saved %s %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(args[0]),
			style.Faint(args[1]),
		)
	},
}

func init() {
	historyCmd.AddCommand(historyDeleteCmd)
}

// historyDeleteCmd removes one item from the history.
var historyDeleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm", "remove"},
	Short:   "Remove an item from the history",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(progressStore().Delete(historyUser(), args[0]))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// historyClearCmd removes every entry of the user.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the whole history",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("yes")) {
			var confirmed bool
			handleErr(survey.AskOne(&survey.Confirm{
				Message: fmt.Sprintf("Clear the whole history of %s?", historyUser()),
				Default: false,
			}, &confirmed))
			if !confirmed {
				return
			}
		}

		handleErr(progressStore().Clear(historyUser()))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
