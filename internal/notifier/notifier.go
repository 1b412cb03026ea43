package notifier

import (
	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/digest"
	"github.com/example/tollgate/internal/notifier/providers"
)

// Notifier handles sending digest notifications
type Notifier struct {
	sender Sender
}

// Sender defines the interface for email sending
type Sender interface {
	Send(to, subject, htmlBody, plainBody string) error
}

// New creates a new notifier with the given sender
func New(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// NewFromConfig creates an SMTP-backed notifier from configuration
func NewFromConfig(cfg config.EmailConfig) *Notifier {
	sender := providers.NewSMTPSender(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.FromAddr,
	)
	return New(sender)
}

// SendDigest sends a digest email
func (n *Notifier) SendDigest(d *digest.Digest, toAddr string) error {
	return n.sender.Send(toAddr, d.Subject, d.HTMLBody, d.PlainBody)
}
