// Package worker runs the asynchronous confirmation-email step. It consumes
// validated receipt records from the queue, re-validates them against the
// record schema and hands them to the mailer. Each message gets a single
// best-effort delivery attempt.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"iodono/rt-register/internal/models"
	"iodono/rt-register/internal/queue"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Source yields receipt envelopes to process.
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Envelope, error)
}

// Sender delivers the confirmation email for a validated record.
type Sender interface {
	SendReceipt(rt *models.RTData) error
}

// Worker is the consumer loop of the email step.
type Worker struct {
	source      Source
	sender      Sender
	pollTimeout time.Duration
}

// New creates a worker polling source with the given timeout per attempt.
func New(source Source, sender Sender, pollTimeout time.Duration) *Worker {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &Worker{
		source:      source,
		sender:      sender,
		pollTimeout: pollTimeout,
	}
}

// Run consumes envelopes until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	log.Info("Receipt email worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Receipt email worker stopped")
			return ctx.Err()
		default:
		}

		env, err := w.source.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Receipt email worker stopped")
				return ctx.Err()
			}
			log.WithError(err).Error("Failed to dequeue receipt envelope")
			time.Sleep(w.pollTimeout)
			continue
		}
		if env == nil {
			continue
		}

		w.Process(env)
	}
}

// Process validates one envelope and sends its confirmation email. Invalid
// records are discarded with a log entry; they never reach the mailer.
func (w *Worker) Process(env *queue.Envelope) {
	entry := log.WithField("id", env.ID)

	if env.RT == nil {
		entry.Error("Discarding envelope without receipt record")
		return
	}
	if err := env.RT.Validate(); err != nil {
		entry.WithError(err).Error("Discarding receipt record rejected by schema validation")
		return
	}

	if err := w.sender.SendReceipt(env.RT); err != nil {
		entry.WithError(err).Error("Failed to send receipt email")
		return
	}

	entry.WithField("iuv", env.RT.DatiPagamento.IdentificativoUnivocoVersamento).
		Info("Processed receipt envelope")
}
