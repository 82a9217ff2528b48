// Package root contains the root command for the application
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"iodono/rt-register/internal/config"
	"iodono/rt-register/internal/mailer"
	"iodono/rt-register/internal/queue"
	"iodono/rt-register/internal/rtparser"
	"iodono/rt-register/internal/server"
	"iodono/rt-register/internal/storage"
	"iodono/rt-register/internal/worker"
)

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "rt-register",
		Short: "A service that registers pagoPA payment receipts and sends donation confirmations.",
		Long: `rt-register ingests Ricevuta Telematica documents delivered by the pagoPA
payment system, validates them into typed records, archives the raw XML and
sends the donor a confirmation email.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to rt-register!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize and configure logging
			config.LoadEnv()
			Log = config.ConfigureLogging()

			// Set the configured logger for all packages
			rtparser.SetLogger(Log)
			server.SetLogger(Log)
			storage.SetLogger(Log)
			queue.SetLogger(Log)
			mailer.SetLogger(Log)
			worker.SetLogger(Log)
		},
	}

	// Flags of the parse command
	InputFile   string
	InputBase64 bool
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&InputFile, "input", "i", "", "Input file")
	Cmd.PersistentFlags().BoolVar(&InputBase64, "base64", false, "Treat the input file as base64-encoded")
}
