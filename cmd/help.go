/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// helpCmd represents the help command
var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Show this help message",
	Long:  `Show this help message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		if len(args) > 0 {
			target, _, err := root.Find(args)
			if err != nil {
				return err
			}
			return target.Help()
		}
		return root.Help()
	},
}

func init() {
	RootCmd.SetHelpCommand(helpCmd)
}
