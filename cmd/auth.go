package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/petflix/petflix/auth"
	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/style"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd, authStatusCmd, authDeleteCmd)
}

// authCmd manages the metadata provider token kept in the system keyring.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the metadata provider token",
}

var authSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the metadata provider token in the system keyring",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			handleErr(survey.AskOne(&survey.Password{
				Message: "Metadata provider read access token",
			}, &token, survey.WithValidator(survey.Required)))
		}

		if strings.TrimSpace(token) == "" {
			handleErr(errors.New("token is empty"))
		}

		handleErr(auth.SetToken(token))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s token saved\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a metadata provider token is available",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		if auth.Token().IsAbsent() {
			_, _ = fmt.Fprintf(out, "%s no token, posters come from the catalog only\n", icon.Get(icon.Warn))
			return
		}

		origin := "system keyring"
		if viper.GetString(key.MetadataToken) != "" {
			origin = key.MetadataToken
		}
		_, _ = fmt.Fprintf(out, "%s token found in %s\n", style.Fg(color.Green)(icon.Get(icon.Key)), style.Fg(color.Purple)(origin))
	},
}

var authDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"logout"},
	Short:   "Remove the metadata provider token from the system keyring",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s token removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
