package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/petflix/petflix/color"
	"github.com/petflix/petflix/config"
	"github.com/petflix/petflix/constant"
	"github.com/petflix/petflix/filesystem"
	"github.com/petflix/petflix/icon"
	"github.com/petflix/petflix/style"
	"github.com/petflix/petflix/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

func errUnknownKey(key string) error {
	closest := lo.MinBy(lo.Keys(config.Default), func(a string, b string) bool {
		return levenshtein.Distance(key, a) < levenshtein.Distance(key, b)
	})

	return fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(key),
		style.Fg(color.Yellow)(closest),
	)
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

// fieldArg resolves the key from the first argument or the --key flag.
func fieldArg(cmd *cobra.Command, args []string) config.Field {
	key := lo.Must(cmd.Flags().GetString("key"))
	if len(args) > 0 {
		key = args[0]
	}
	if key == "" {
		handleErr(errors.New("key is required as an argument or --key flag"))
	}

	field, ok := config.Default[key]
	if !ok {
		handleErr(errUnknownKey(key))
	}
	return field
}

// parseValue converts raw input to the type of the field's default.
func parseValue(field config.Field, raw []string) (any, error) {
	switch field.Value.(type) {
	case string:
		return raw[0], nil
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", field.Key, raw[0])
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", field.Key, raw[0])
		}
		return b, nil
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("%s cannot be set from the command line", field.Key)
	}
}

func configFile() string {
	return filepath.Join(where.Config(), constant.App+".toml")
}

func persist() {
	err := viper.WriteConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = viper.SafeWriteConfig()
	}
	handleErr(err)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInfoCmd, configGetCmd, configSetCmd, configResetCmd, configWriteCmd, configDeleteCmd)

	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Keys to describe")
	configInfoCmd.Flags().BoolP("json", "j", false, "Print the fields as JSON")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	configInfoCmd.SetOut(os.Stdout)

	configGetCmd.Flags().StringP("key", "k", "", "Key to read")
	_ = configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
	configGetCmd.SetOut(os.Stdout)

	configSetCmd.Flags().StringP("key", "k", "", "Key to set")
	configSetCmd.Flags().StringSliceP("value", "v", []string{}, "Value to assign")
	_ = configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configResetCmd.Flags().StringP("key", "k", "", "Key to restore")
	configResetCmd.Flags().BoolP("all", "a", false, "Restore every key")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

// configCmd is the parent of the configuration commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe configuration fields",
	Run: func(cmd *cobra.Command, args []string) {
		fields := lo.Values(config.Default)
		if keys := lo.Must(cmd.Flags().GetStringSlice("key")); len(keys) > 0 {
			fields = lo.Map(keys, func(k string, _ int) config.Field {
				field, ok := config.Default[k]
				if !ok {
					handleErr(errUnknownKey(k))
				}
				return field
			})
		}

		slices.SortFunc(fields, func(a, b config.Field) int {
			if a.Key < b.Key {
				return -1
			}
			if a.Key > b.Key {
				return 1
			}
			return 0
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(writeJSON(cmd.OutOrStdout(), fields))
			return
		}

		for i := range fields {
			cmd.Print(fields[i].Pretty())
			if i < len(fields)-1 {
				cmd.Print("\n\n")
			}
		}
		cmd.Println()
	},
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the current value of a key",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(viper.Get(fieldArg(cmd, args).Key))
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value...]",
	Short:             "Set a key and save the config file",
	Example:           "  petflix config set search.concurrency 8\n  petflix config set --key logs.write --value true",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := fieldArg(cmd, args)

		raw := lo.Must(cmd.Flags().GetStringSlice("value"))
		if len(args) > 1 {
			raw = args[1:]
		}
		if len(raw) == 0 {
			handleErr(errors.New("value is required as an argument or --value flag"))
		}

		value, err := parseValue(field, raw)
		handleErr(err)

		viper.Set(field.Key, value)
		persist()

		fmt.Printf(
			"%s set %s to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(field.Key),
			style.Fg(color.Yellow)(fmt.Sprint(value)),
		)
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore a key, or every key, to its default",
	PreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("key") && !cmd.Flags().Changed("all") {
			handleErr(errors.New("either --key or --all must be set"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			for k, field := range config.Default {
				viper.Set(k, field.Value)
			}
			persist()
			fmt.Printf("%s reset all config values\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		field := fieldArg(cmd, nil)
		viper.Set(field.Key, field.Value)
		persist()
		fmt.Printf(
			"%s reset %s to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(field.Key),
			style.Fg(color.Yellow)(fmt.Sprint(field.Value)),
		)
	},
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("force")) {
			err := filesystem.API().Remove(configFile())
			if err != nil && !os.IsNotExist(err) {
				handleErr(err)
			}
		}

		handleErr(viper.SafeWriteConfig())
		fmt.Printf("%s wrote config to %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), configFile())
	},
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete the config file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFile()))
		fmt.Printf("%s deleted config\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
