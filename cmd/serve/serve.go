// Package serve runs the payment-notification HTTP server
package serve

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"iodono/rt-register/cmd/root"
	"iodono/rt-register/internal/config"
	"iodono/rt-register/internal/queue"
	"iodono/rt-register/internal/server"
	"iodono/rt-register/internal/storage"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the payment-notification HTTP server",
	Long: `Start the HTTP endpoint that receives pagoPA payment notifications,
archives the raw receipts and enqueues validated records for email delivery.`,
	Run: serveFunc,
}

func serveFunc(cmd *cobra.Command, args []string) {
	cfg, err := config.InitializeConfig()
	if err != nil {
		root.Log.Fatalf("Error loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKey,
		SecretAccessKey: cfg.Storage.SecretKey,
		Bucket:          cfg.Storage.Bucket,
		UseSSL:          cfg.Storage.UseSSL,
		Region:          cfg.Storage.Region,
	})
	if err != nil {
		root.Log.Fatalf("Error initializing receipt storage: %v", err)
	}

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

	handler := server.NewHandler(store, queue.New(rdb, cfg.Queue.Key))

	var auth *server.BasicAuthConfig
	if cfg.Server.ClientID != "" || cfg.Server.Secret != "" {
		auth = &server.BasicAuthConfig{
			ClientID: cfg.Server.ClientID,
			Secret:   cfg.Server.Secret,
		}
	} else {
		root.Log.Warn("No Basic auth credentials configured, notification endpoint is open")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(auth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			root.Log.Warnf("Error during server shutdown: %v", err)
		}
	}()

	root.Log.WithField("addr", cfg.Server.Addr).Info("Payment notification server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		root.Log.Fatalf("Server error: %v", err)
	}
	root.Log.Info("Payment notification server stopped")
}
