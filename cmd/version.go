package cmd

import (
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/constant"
	"github.com/petflix/petflix/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string")
	versionCmd.Flags().BoolP("json", "j", false, "Print build metadata as JSON")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
}

type buildInfo struct {
	App      string `json:"app"`
	Version  string `json:"version"`
	Revision string `json:"revision"`
	BuiltAt  string `json:"built_at"`
	BuiltBy  string `json:"built_by"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}       {{ bold .Version }}
  {{ faint "Git Commit" }}    {{ bold .Revision }}
  {{ faint "Build Date" }}    {{ bold .BuiltAt }}
  {{ faint "Built By" }}      {{ bold .BuiltBy }}
  {{ faint "Go" }}            {{ bold .Go }}
  {{ faint "Platform" }}      {{ bold .Platform }}
`))

// versionCmd displays application version and build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := buildInfo{
			App:      constant.App,
			Version:  constant.Version,
			Revision: constant.Revision,
			BuiltAt:  strings.TrimSpace(constant.BuiltAt),
			BuiltBy:  constant.BuiltBy,
			Go:       runtime.Version(),
			Platform: runtime.GOOS + "/" + runtime.GOARCH,
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(writeJSON(cmd.OutOrStdout(), info))
			return
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
