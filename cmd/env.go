package cmd

import (
	"os"

	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/config"
	"github.com/petflix/petflix/style"
	"github.com/petflix/petflix/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are unset")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
	envCmd.SetOut(os.Stdout)
}

// envCmd lists the environment variables petflix reads.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables petflix reads",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			setOnly   = lo.Must(cmd.Flags().GetBool("set-only"))
			unsetOnly = lo.Must(cmd.Flags().GetBool("unset-only"))
		)

		names := lo.Map(config.EnvExposed, func(k string, _ int) string {
			field := config.Default[k]
			return field.Env()
		})
		names = append(names, where.EnvConfigPath)
		slices.Sort(names)

		name := style.New().Bold(true).Foreground(color.Purple).Render
		for _, env := range names {
			value, present := os.LookupEnv(env)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			rendered := style.Fg(color.Red)("unset")
			if present {
				rendered = style.Fg(color.Green)(value)
			}
			cmd.Printf("%s=%s\n", name(env), rendered)
		}
	},
}
