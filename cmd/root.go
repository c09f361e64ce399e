/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cristianoliveira/soundboard/internal/colors"
	"github.com/cristianoliveira/soundboard/internal/config"
	"github.com/cristianoliveira/soundboard/internal/logging"
	"github.com/cristianoliveira/soundboard/internal/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "soundboard",
	Short: "A terminal soundboard with drag-and-drop favorites.",
	Long:  `A terminal soundboard with drag-and-drop favorites.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		colors.SetDebug(config.GetBool("debug", false))
		if err := logging.InitGlobal(); err != nil {
			colors.Warning(fmt.Sprintf("logging disabled: %v", err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.ShutdownGlobal()
	},
	SilenceUsage: true,
}

// outputWriter overrides where help is printed. Tests set it.
var outputWriter io.Writer

// commandOrder lists subcommands in the order help prints them.
var commandOrder = []string{
	"tui",
	"play",
	"favorites",
	"help",
	"version",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.Version = version.String()

	// Hide the completion command
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			fmt.Fprint(helpWriter(cmd), cmd.UsageString())
			if cmd.Long != "" {
				fmt.Fprintf(helpWriter(cmd), "\n%s\n", cmd.Long)
			}
			return
		}
		PrintHelp(cmd)
	})
}

func helpWriter(cmd *cobra.Command) io.Writer {
	if outputWriter != nil {
		return outputWriter
	}
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}

// PrintHelp prints the top level help text for root.
func PrintHelp(root *cobra.Command) {
	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-16s %s", found.Name(), found.Short))
	}

	helpText := fmt.Sprintf(`soundboard v%s

%s

USAGE:
    soundboard [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    -h, --help      Show help message
`, root.Version, root.Short, strings.Join(cmdLines, "\n"))
	fmt.Fprint(helpWriter(root), helpText)
}
