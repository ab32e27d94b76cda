// Package mailer sends bin-full alert emails over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"binsight/internal/config"
	"binsight/internal/domain"
)

type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// New builds a mailer from config. The SMTP password comes separately,
// usually from the BINSIGHT_SMTP_PASSWORD environment variable, so it
// never lives in the config file.
func New(cfg *config.Config, password string) (*Mailer, error) {
	if cfg == nil || cfg.Mail.Host == "" {
		return nil, fmt.Errorf("mail.host not configured")
	}
	return &Mailer{
		host:     cfg.Mail.Host,
		port:     cfg.Mail.Port,
		username: cfg.Mail.Username,
		password: password,
		from:     cfg.Mail.From,
	}, nil
}

// SendBinFull emails one alert saying the given bin is full.
func (m *Mailer) SendBinFull(ctx context.Context, to string, bin domain.BinCategory) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Bac %s plein", bin))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("Le bac %s de la borne de tri est plein et doit etre vide.", bin))

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithSSLPort(true),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}
	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
