package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/krishisetu/krishisetu/pkg/config"
	"github.com/mailersend/mailersend-go"
)

type MailerSend struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	Enabled bool
}

func NewMailerSend(cfg config.EmailConfig) *MailerSend {
	m := &MailerSend{
		Enabled: cfg.MailerSendKey != "" && cfg.FromEmail != "",
		from: mailersend.From{
			Name:  cfg.FromName,
			Email: cfg.FromEmail,
		},
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(cfg.MailerSendKey)
	}
	return m
}

func (m *MailerSend) Send(toEmail, toName, subject, text, html string) (string, error) {
	if !m.Enabled {
		return "", errors.New("mailer disabled (missing MAILERSEND_API_KEY or EMAIL_FROM)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	// MailerSend uses X-Message-Id
	return res.Header.Get("X-Message-Id"), nil
}

func (m *MailerSend) SendBookingUpdate(toEmail, toName, topic, status string) error {
	subject := "Consultation update"
	text := fmt.Sprintf("Your consultation on %q is now %s.", topic, status)
	html := fmt.Sprintf(`<p>Your consultation on <b>%s</b> is now <b>%s</b>.</p>`, topic, status)
	_, err := m.Send(toEmail, toName, subject, text, html)
	return err
}

func (m *MailerSend) SendWorkshopConfirmation(toEmail, toName, title, location string) error {
	subject := "Workshop registration confirmed"
	text := fmt.Sprintf("You are registered for %q at %s.", title, location)
	html := fmt.Sprintf(`<p>You are registered for <b>%s</b> at %s.</p>`, title, location)
	_, err := m.Send(toEmail, toName, subject, text, html)
	return err
}
