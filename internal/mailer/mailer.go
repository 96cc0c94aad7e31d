// Package mailer delivers one-time verification codes over SMTP.
package mailer

import (
	"fmt"

	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/wneessen/go-mail"
)

// Mailer is the outbound transport consumed by the verification engine.
// Tests substitute a recording fake.
type Mailer interface {
	SendVerificationCode(to, code string) error
}

// SMTPMailer sends codes through the configured SMTP relay.
type SMTPMailer struct {
	cfg *config.Config
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	if cfg.MailServer == "" {
		return nil, fmt.Errorf("mail server is required")
	}
	if cfg.MailSender == "" {
		return nil, fmt.Errorf("mail sender address is required")
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) SendVerificationCode(to, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.MailSender); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject("Your Verification Code")
	msg.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in 10 minutes.", code))

	opts := []mail.Option{
		mail.WithPort(m.cfg.MailPort),
	}

	switch {
	case m.cfg.MailUseSSL:
		// Implicit TLS, typically port 465.
		opts = append(opts, mail.WithSSL(), mail.WithTLSPolicy(mail.TLSMandatory))
	case m.cfg.MailUseTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if m.cfg.MailUsername != "" && m.cfg.MailPassword != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.MailUsername),
			mail.WithPassword(m.cfg.MailPassword),
		)
	}

	client, err := mail.NewClient(m.cfg.MailServer, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
