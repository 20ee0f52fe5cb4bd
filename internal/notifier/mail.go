package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type MailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

// Mailer отправляет html письмо через SMTP
type Mailer struct {
	client     mailSender
	from       string
	recipients []string
}

func NewMailer(cfg MailConfig) (*Mailer, error) {
	if len(cfg.Recipients) == 0 {
		return nil, errors.New("mailer: no recipients")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: create smtp client: %w", err)
	}

	return &Mailer{
		client:     client,
		from:       cfg.From,
		recipients: cfg.Recipients,
	}, nil
}

func (m *Mailer) Name() string {
	return "email"
}

func (m *Mailer) Deliver(ctx context.Context, doc Document) error {
	return m.Send(ctx, doc.Subject, doc.HTML, m.recipients)
}

// Send одно письмо всем recipients. Ошибка SMTP возвращается как есть
func (m *Mailer) Send(ctx context.Context, subject, html string, recipients []string) error {
	msg := mail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("mailer: invalid from address: %w", err)
	}

	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("mailer: invalid recipients: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}

	return nil
}
