package cmd

import (
	"fmt"
	"strings"

	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/history"
	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/open"
	"github.com/petflix/petflix/source"
	"github.com/petflix/petflix/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntP("server", "s", 1, "Server to take the episode from")
	watchCmd.Flags().String("app", "", "Application to open the link with instead of the default browser")
	watchCmd.Flags().Bool("print", false, "Print the link instead of opening it")
}

// pickEpisode finds an episode by slug or name, or the first one when want is empty.
func pickEpisode(servers []*source.Server, serverIndex int, want string) (*source.Episode, error) {
	if serverIndex < 1 || serverIndex > len(servers) {
		return nil, fmt.Errorf("server %d does not exist, there are %d", serverIndex, len(servers))
	}

	episodes := servers[serverIndex-1].Episodes
	if len(episodes) == 0 {
		return nil, fmt.Errorf("server %d has no episodes", serverIndex)
	}
	if want == "" {
		return episodes[0], nil
	}

	episode, ok := lo.Find(episodes, func(e *source.Episode) bool {
		return e.Slug == want || strings.EqualFold(e.Name, want)
	})
	if !ok {
		return nil, fmt.Errorf("episode %q not found on server %d", want, serverIndex)
	}
	return episode, nil
}

// watchCmd opens an episode's embed page and records it in the history.
var watchCmd = &cobra.Command{
	Use:     "watch [id] [episode]",
	Aliases: []string{"open"},
	Short:   "Open an episode in the browser",
	Example: "  petflix watch naruto-shippuden tap-12\n  petflix watch one-piece --server 2",
	Args:    cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		detail, err := service().Detail(cmd.Context(), args[0])
		handleErr(err)

		var want string
		if len(args) == 2 {
			want = args[1]
		}

		episode, err := pickEpisode(detail.Servers, lo.Must(cmd.Flags().GetInt("server")), want)
		handleErr(err)

		link := lo.CoalesceOrEmpty(episode.LinkEmbed, episode.LinkM3U8)
		if link == "" {
			handleErr(fmt.Errorf("episode %s has no link", episode))
		}

		if lo.Must(cmd.Flags().GetBool("print")) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), link)
		} else {
			handleErr(open.Start(link, lo.Must(cmd.Flags().GetString("app"))))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s opened %s %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				style.Bold(detail.Title),
				style.Faint(episode.String()),
			)
		}

		if !viper.GetBool(key.HistorySave) {
			return
		}

		// Embedded players cannot report time, so only the episode is recorded.
		err = progressStore().SaveProgress(historyUser(), detail.ID, episode.Slug, history.Progress{
			Title:    detail.Title,
			HasEmbed: true,
		})
		if err != nil {
			log.Warnf("history: save %s/%s: %v", detail.ID, episode.Slug, err)
		}
	},
}
