// Package notify delivers the generated report sheets over SMTP to the
// configured recipient lists.
package notify

import (
	"bytes"
	"context"
	"fmt"

	"badgereg/internal/repository"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Mailer struct {
	cfg        Config
	recipients repository.RecipientRepository
	logger     *zap.Logger
}

func NewMailer(cfg Config, recipients repository.RecipientRepository, logger *zap.Logger) *Mailer {
	return &Mailer{
		cfg:        cfg,
		recipients: recipients,
		logger:     logger.Named("mailer"),
	}
}

// SendReport mails the XLSX attachment to every recipient registered for
// the given kind. When no recipients are configured the sheet goes to the
// sending account itself so a misconfigured list never loses a report.
func (m *Mailer) SendReport(ctx context.Context, kind, subject, body, attachmentName string, attachment []byte) error {
	recipients, err := m.recipients.ListByKind(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}
	if len(recipients) == 0 {
		m.logger.Warn("no recipients configured, sending to self", zap.String("kind", kind))
		recipients = []string{m.cfg.From}
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if err := msg.AttachReader(attachmentName, bytes.NewReader(attachment)); err != nil {
		return fmt.Errorf("failed to attach report: %w", err)
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to build SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send report mail: %w", err)
	}

	m.logger.Info("report mailed",
		zap.String("kind", kind),
		zap.Strings("recipients", recipients),
		zap.String("attachment", attachmentName),
	)
	return nil
}
