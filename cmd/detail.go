package cmd

import (
	"fmt"

	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(detailCmd)
	detailCmd.Flags().BoolP("json", "j", false, "Print the record as JSON")
}

// detailCmd shows one record with its servers and episodes.
var detailCmd = &cobra.Command{
	Use:     "detail [id]",
	Aliases: []string{"show", "info"},
	Short:   "Show a record with its episodes",
	Example: "  petflix detail naruto-shippuden",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		erase := util.PrintErasable(fmt.Sprintf("%s Loading...", icon.Get(icon.Progress)))
		detail, err := service().Detail(cmd.Context(), args[0])
		erase()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(writeJSON(cmd.OutOrStdout(), detail))
			return
		}

		renderDetail(cmd.OutOrStdout(), detail)
	},
}
