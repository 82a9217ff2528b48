// Package mailer renders and sends the donation receipt confirmation email.
// Sending is a single best-effort operation; retry policy belongs to the
// caller.
package mailer

import (
	"fmt"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"

	"iodono/rt-register/internal/models"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Config holds the SMTP transport parameters and the fixed sender identity.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
}

// Mailer sends donation receipt emails over SMTP.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	subject string
}

// New creates a mailer from explicit configuration. Transport parameters are
// passed in at construction time, never read from ambient globals.
func New(cfg Config) *Mailer {
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		subject: cfg.Subject,
	}
}

// SendReceipt renders the receipt templates for the record and sends the
// email to the payer's address.
func (m *Mailer) SendReceipt(rt *models.RTData) error {
	text, err := ReceiptText(m.subject, rt)
	if err != nil {
		return err
	}
	html, err := ReceiptHTML(m.subject, rt)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", rt.SoggettoPagatore.EmailPagatore)
	msg.SetHeader("Subject", m.subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending receipt email to %s failed: %w",
			rt.SoggettoPagatore.EmailPagatore, err)
	}

	log.WithFields(logrus.Fields{
		"to":  rt.SoggettoPagatore.EmailPagatore,
		"iuv": rt.DatiPagamento.IdentificativoUnivocoVersamento,
	}).Info("Sent donation receipt email")
	return nil
}
