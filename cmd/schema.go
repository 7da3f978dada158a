package cmd

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/petflix/petflix/catalog"
	"github.com/petflix/petflix/history"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var schemaTargets = map[string]func() any{
	"listing": func() any { return &catalog.Listing{} },
	"detail":  func() any { return &catalog.DetailView{} },
	"history": func() any { return []*history.Entry{} },
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringP("type", "t", "listing", "Output to describe: listing, detail or history")
	lo.Must0(schemaCmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Keys(schemaTargets), cobra.ShellCompDirectiveNoFileComp
	}))
}

// schemaCmd prints the JSON schema of the --json outputs.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the --json outputs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		target := lo.Must(cmd.Flags().GetString("type"))
		value, ok := schemaTargets[target]
		if !ok {
			handleErr(fmt.Errorf("unknown type %q, expected one of listing, detail, history", target))
		}

		reflector := &jsonschema.Reflector{
			AllowAdditionalProperties: true,
			DoNotReference:            true,
		}
		handleErr(writeJSON(cmd.OutOrStdout(), reflector.Reflect(value())))
	},
}
