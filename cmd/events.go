package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/josephlewis42/rshd/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var reportFormat string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the server event log.",
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of events.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := config.ReadAppLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		var report logger.Report
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		switch reportFormat {
		case "yaml":
			out, err := yaml.Marshal(struct {
				*logger.Report
				Sessions []*logger.InteractiveSession `json:"sessions"`
			}{&report, report.Sessions()})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

		case "table":
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Started", "Remote", "Commands", "Failures", "Ended", "Transcript"})
			for _, s := range report.Sessions() {
				t.AppendRow(table.Row{
					time.UnixMicro(s.StartMicros).UTC().Format(time.RFC3339),
					s.RemoteAddr,
					strings.Join(s.Commands, "\n"),
					s.Failures,
					s.Reason,
					s.TTYLog,
				})
				t.AppendSeparator()
			}
			t.AppendFooter(table.Row{"", "", report.RunCommand.CommandNames.Total(), report.RunCommand.Failures, "", ""})
			t.Render()

		default:
			return fmt.Errorf("unknown format %q, expected table or yaml", reportFormat)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
	reportCommand.Flags().StringVarP(&reportFormat, "format", "f", "table", "Output format: table or yaml.")
}
