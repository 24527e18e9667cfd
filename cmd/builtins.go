package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/josephlewis42/rshd/core"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands the server runs itself.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Name", "Usage", "Description"})

		for _, b := range core.ListBuiltins() {
			t.AppendRow(table.Row{b.Name, b.Usage, b.Short})
		}

		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
