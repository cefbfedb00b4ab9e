package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/vdjstat/internal/diversity"
	"github.com/spf13/cobra"
)

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "List available diversity indices",
	RunE: func(cmd *cobra.Command, args []string) error {
		def := settings().DefaultIndex
		for _, name := range diversity.Names() {
			marker := " "
			if strings.EqualFold(name, def) {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indicesCmd)
}
