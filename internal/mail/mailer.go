// Package mail delivers notification messages over SMTP with wneessen/go-mail.
// Transport settings live in the database and can change at runtime, so the
// mailer re-reads them on every send instead of caching a client.
package mail

import (
	"bytes"
	"context"

	"github.com/go-faster/errors"
	gomail "github.com/wneessen/go-mail"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
	"github.com/agentur-schein/propshop/internal/domain/notification"
)

// ErrNotConfigured indicates no usable SMTP transport is stored.
var ErrNotConfigured = errors.New("mail transport not configured")

var _ notification.Mailer = (*Mailer)(nil)

// Mailer implements notification.Mailer on top of the stored email settings.
type Mailer struct {
	settings catalog.SettingsRepository
}

// NewMailer creates a Mailer reading its transport from the settings store.
func NewMailer(settings catalog.SettingsRepository) *Mailer {
	return &Mailer{settings: settings}
}

// Send delivers one message. Returns ErrNotConfigured when no transport is
// stored; callers treat any error as a best-effort failure.
func (m *Mailer) Send(ctx context.Context, msg notification.Message) error {
	cfg, err := m.settings.EmailSettings(ctx)
	if err != nil {
		return errors.Wrap(err, "loading mail settings")
	}
	if !cfg.Configured() {
		return ErrNotConfigured
	}

	message := gomail.NewMsg()
	if err := message.From(cfg.Username); err != nil {
		return errors.Wrap(err, "setting sender")
	}
	if err := message.To(msg.To); err != nil {
		return errors.Wrap(err, "setting recipient")
	}
	message.Subject(msg.Subject)
	message.SetBodyString(gomail.TypeTextPlain, msg.Body)
	if len(msg.Attachment) > 0 {
		if err := message.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment)); err != nil {
			return errors.Wrap(err, "attaching document")
		}
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	}
	if cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(cfg.Server, opts...)
	if err != nil {
		return errors.Wrap(err, "creating smtp client")
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return errors.Wrap(err, "sending message")
	}
	return nil
}
