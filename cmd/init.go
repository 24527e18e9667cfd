package cmd

import (
	"github.com/josephlewis42/rshd/core/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// initCmd intializes the server configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the server configuration in the config directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New()
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

		_, err := config.Initialize(cfgPath, logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
