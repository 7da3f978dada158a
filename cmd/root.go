// Package cmd implements the command-line interface for petflix.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/petflix/petflix/catalog"
	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/constant"
	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/paginate"
	"github.com/petflix/petflix/search"
	"github.com/petflix/petflix/source"
	"github.com/petflix/petflix/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("no-metadata", "M", false, "Skip poster enrichment from the metadata provider")
	rootCmd.PersistentFlags().BoolP("no-cache", "C", false, "Do not read or write the durable cache")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("no-metadata")) {
			viper.Set(key.MetadataEnabled, false)
		}
		if lo.Must(cmd.Flags().GetBool("no-cache")) {
			viper.Set(key.CacheDurable, false)
		}
	}
}

// rootCmd defines the entry point for the petflix application.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "Browse and search the movie catalog from your terminal",
	Long: constant.Logo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Browse and search the movie catalog from your terminal"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		listCmd.Run(cmd, args)
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// service is built on first use, after flags have been applied to the configuration.
var service = sync.OnceValue(catalog.NewFromConfig)

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(describe(err), " \n"))
		os.Exit(1)
	}
}

// describe turns the errors users can act on into short hints.
func describe(err error) string {
	var (
		jump     *paginate.JumpError
		upstream *source.UpstreamError
	)

	switch {
	case errors.Is(err, search.ErrAllStrategiesFailed):
		return "search is unavailable right now, try again in a moment"
	case errors.As(err, &jump):
		return fmt.Sprintf("cannot jump from page %d to %d, move at most %d pages at a time or pass --from 0", jump.From, jump.To, jump.MaxDelta)
	case errors.Is(err, source.ErrInvalidPage):
		return "page numbers start at 1"
	case errors.Is(err, source.ErrNotFound):
		return "nothing found with that id"
	case errors.Is(err, catalog.ErrSuperseded):
		return "request was replaced by a newer one"
	case errors.Is(err, context.Canceled):
		return "interrupted"
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &upstream):
		return "the catalog did not answer, try again in a moment"
	default:
		return err.Error()
	}
}
