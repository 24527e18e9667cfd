package cmd

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/josephlewis42/rshd/core/ttylog"
	"github.com/spf13/cobra"
)

var (
	showInput     bool
	idleTimeLimit time.Duration
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the recorded session transcripts.",
}

var listCommand = &cobra.Command{
	Use:   "ls",
	Short: "List recorded session transcripts.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		logs, err := configuration.SessionLogs()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Name", "Size", "Modified"})
		for _, fi := range logs {
			t.AppendRow(table.Row{fi.Name(), fi.Size(), fi.ModTime().UTC().Format(time.RFC3339)})
		}
		t.Render()
		return nil
	},
}

// playCommand replays a transcript with its original timing.
var playCommand = &cobra.Command{
	Use:   "play NAME",
	Short: "Replay a recorded session in the terminal.",
	Long:  `Plays a recorded session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return replaySessionLog(cmd, args[0], func(sink ttylog.LogSink) ttylog.LogSink {
			return ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		})
	},
}

var catCommand = &cobra.Command{
	Use:   "cat NAME",
	Short: "Print the full contents of a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return replaySessionLog(cmd, args[0], nil)
	},
}

func replaySessionLog(cmd *cobra.Command, name string, middleware func(ttylog.LogSink) ttylog.LogSink) error {
	cmd.SilenceUsage = true

	configuration, err := loadConfig()
	if err != nil {
		return err
	}

	fd, err := configuration.OpenSessionLog(name)
	if err != nil {
		return err
	}
	defer fd.Close()

	sink := ttylog.NewClientOutput(cmd.OutOrStdout(), showInput)
	if middleware != nil {
		sink = middleware(sink)
	}

	return ttylog.Replay(ttylog.NewUMLLogSource(fd), sink)
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(listCommand)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(catCommand)

	for _, cmd := range []*cobra.Command{playCommand, catCommand} {
		cmd.Flags().BoolVar(&showInput, "input", false, "Include the commands sent by the client.")
	}

	// cat doesn't allow idle time
	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
