// Package server exposes the payment-notification HTTP endpoint. The handler
// is a thin I/O wrapper around the parsing pipeline: it decodes the inbound
// payload, runs the pipeline, persists the raw document and enqueues the
// validated record for the asynchronous email step.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"iodono/rt-register/internal/models"
	"iodono/rt-register/internal/parsererror"
	"iodono/rt-register/internal/rtparser"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Notification is the inbound payload of the payment system. ReceiptXML
// carries the base64-encoded RT document.
type Notification struct {
	ReceiptXML string `json:"receiptXML"`
}

// Result is the fixed response body of the notification endpoint.
type Result struct {
	Result string `json:"result"`
}

const (
	resultOK = "OK"
	resultKO = "KO"
)

// ReceiptStore persists the raw receipt document.
type ReceiptStore interface {
	Save(ctx context.Context, name string, content []byte) error
}

// ReceiptQueue hands the validated record to the asynchronous email step.
type ReceiptQueue interface {
	Enqueue(ctx context.Context, rt *models.RTData) error
}

// Handler contains the HTTP handlers of the notification endpoint.
type Handler struct {
	store ReceiptStore
	queue ReceiptQueue
}

// NewHandler creates a handler wired to its external collaborators.
func NewHandler(store ReceiptStore, queue ReceiptQueue) *Handler {
	return &Handler{
		store: store,
		queue: queue,
	}
}

// Router builds the chi router for the service. When auth is non-nil the
// notification endpoint sits behind Basic authentication.
func (h *Handler) Router(auth *BasicAuthConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		if auth != nil {
			r.Use(BasicAuth(*auth))
		}
		r.Post("/api/v1/payments", h.RegisterPayment)
	})

	return r
}

// RegisterPayment handles one payment notification. A missing receiptXML
// field is a client error; a receipt that fails the parsing pipeline is
// reported as a processing error, mirroring upstream expectations.
func (h *Handler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	var notification Notification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		log.WithError(err).Warn("Failed to decode notification body")
		writeResult(w, http.StatusBadRequest, resultKO)
		return
	}

	if notification.ReceiptXML == "" {
		err := &parsererror.MissingPayloadError{}
		log.WithError(err).Warn("Rejected notification")
		writeResult(w, http.StatusBadRequest, resultKO)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(notification.ReceiptXML)
	if err != nil {
		decodeErr := &parsererror.DecodingError{Err: err}
		log.WithError(decodeErr).Error("Invalid RT")
		writeProblem(w, resultKO)
		return
	}

	rt, err := rtparser.ParseDocument(raw)
	if err != nil {
		log.WithError(err).Error("Invalid RT")
		writeProblem(w, resultKO)
		return
	}

	if err := h.store.Save(r.Context(), rt.BlobName(), raw); err != nil {
		log.WithError(err).Error("Failed to persist raw receipt")
		writeProblem(w, resultKO)
		return
	}

	if err := h.queue.Enqueue(r.Context(), rt); err != nil {
		log.WithError(err).Error("Failed to enqueue receipt for email delivery")
		writeProblem(w, resultKO)
		return
	}

	log.WithFields(logrus.Fields{
		"iuv":  rt.DatiPagamento.IdentificativoUnivocoVersamento,
		"blob": rt.BlobName(),
	}).Info("Registered payment receipt")
	writeResult(w, http.StatusOK, resultOK)
}

func writeResult(w http.ResponseWriter, status int, result string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encodeResult(w, result)
}

// writeProblem reports a processing failure with the problem+json content
// type used by the upstream payment system.
func writeProblem(w http.ResponseWriter, result string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusInternalServerError)
	encodeResult(w, result)
}

func encodeResult(w http.ResponseWriter, result string) {
	if err := json.NewEncoder(w).Encode(Result{Result: result}); err != nil {
		log.WithError(err).Error("Failed to write response body")
	}
}
