// Package worker runs the receipt email worker
package worker

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"iodono/rt-register/cmd/root"
	"iodono/rt-register/internal/config"
	"iodono/rt-register/internal/mailer"
	"iodono/rt-register/internal/queue"
	"iodono/rt-register/internal/worker"
)

// Cmd represents the worker command
var Cmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the receipt email worker",
	Long: `Consume validated payment records from the queue and send the
donation receipt email for each one.`,
	Run: workerFunc,
}

func workerFunc(cmd *cobra.Command, args []string) {
	cfg, err := config.InitializeConfig()
	if err != nil {
		root.Log.Fatalf("Error loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := queue.Connect(ctx, queue.ConnectionInfo{
		Addr:     cfg.Queue.Addr,
		Password: cfg.Queue.Password,
		DB:       cfg.Queue.DB,
	})
	if err != nil {
		root.Log.Fatalf("Error connecting to the receipt queue: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			root.Log.Warnf("Error closing queue connection: %v", err)
		}
	}()

	sender := mailer.New(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		Subject:  cfg.Mail.Subject,
	})

	w := worker.New(queue.New(rdb, cfg.Queue.Key), sender, 5*time.Second)

	root.Log.WithField("queue", cfg.Queue.Key).Info("Receipt worker started")
	w.Run(ctx)
	root.Log.Info("Receipt worker stopped")
}
