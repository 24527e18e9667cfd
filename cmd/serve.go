package cmd

import (
	"errors"

	"github.com/josephlewis42/rshd/core"
	"github.com/josephlewis42/rshd/core/logger"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var servePort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server on a local port.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		log.SetOutput(cmd.ErrOrStderr())
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		log.Info("Initializing server...")

		configuration, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			configuration.Port = servePort
		}

		appLog, err := configuration.OpenAppLog()
		if err != nil {
			return err
		}
		defer appLog.Close()

		shutdown := core.NewShutdown()
		srv, err := core.NewServer(configuration, logger.NewJsonLinesLogRecorder(appLog), shutdown)
		if err != nil {
			return err
		}

		log.Info("- Starting interrupt handler")
		release := shutdown.HandleInterrupts(cmd.OutOrStdout())
		defer release()

		err = srv.ListenAndServe(cmd.Context())
		if errors.Is(err, core.ErrServerClosed) {
			log.Info("Server exited")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on, overrides the configuration.")
}
