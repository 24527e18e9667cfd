package cmd

import (
	"fmt"

	"github.com/josephlewis42/rshd/client"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect SERVER_IP PORT",
	Short: "Connect to a server and run commands interactively.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, err := client.ParseAddress(args[0])
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Invalid server address.")
			return err
		}
		port, err := client.ParsePort(args[1])
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Invalid port number.")
			return err
		}
		cmd.SilenceUsage = true

		conn, err := client.Dial(cmd.Context(), ip, port)
		if err != nil {
			return err
		}
		defer conn.Close()

		out := cmd.OutOrStdout()
		client.PrintConnected(out, ip, port)

		term, err := client.NewTerminal(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		defer term.Close()

		if err := conn.Interact(term, out); err != nil {
			return err
		}

		conn.Close()
		client.PrintDisconnected(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
