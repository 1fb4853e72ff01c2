// Package mailer delivers composed emails through an SMTP relay.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"mortgage-voice-relay/internal/domain"
)

// Client sends domain.Email values over SMTP. A new connection is dialed per
// message; there is no pooling and no retry.
type Client struct {
	settings domain.MailSettings
	newID    func() string
}

func New(settings domain.MailSettings) (*Client, error) {
	if settings.Port <= 0 {
		return nil, errors.New("mailer: port must be positive")
	}
	return &Client{settings: settings, newID: uuid.NewString}, nil
}

// Send delivers email and returns the Message-ID stamped on it.
func (c *Client) Send(ctx context.Context, email domain.Email) (string, error) {
	msg, messageID, err := c.buildMessage(email)
	if err != nil {
		return "", err
	}

	client, err := mail.NewClient(c.settings.Host, c.clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("mailer: create client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("mailer: send: %w", err)
	}
	return messageID, nil
}

func (c *Client) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(c.settings.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.settings.Username),
		mail.WithPassword(c.settings.Password),
	}
	if c.settings.Secure {
		// implicit TLS, usually port 465
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return opts
}

func (c *Client) buildMessage(email domain.Email) (*mail.Msg, string, error) {
	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return nil, "", fmt.Errorf("mailer: invalid from address: %w", err)
	}
	if err := msg.To(splitAddresses(email.To)...); err != nil {
		return nil, "", fmt.Errorf("mailer: invalid to address: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetDate()

	id := c.newID() + "@" + senderDomain(email.From)
	msg.SetMessageIDWithValue(id)

	msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	for _, a := range email.Attachments {
		err := msg.AttachReader(a.Filename, bytes.NewReader(a.Content),
			mail.WithFileContentType(mail.ContentType(a.ContentType)))
		if err != nil {
			return nil, "", fmt.Errorf("mailer: attach %q: %w", a.Filename, err)
		}
	}
	return msg, "<" + id + ">", nil
}

// splitAddresses accepts a comma-separated recipient list.
func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// senderDomain extracts the domain of an address such as
// "Jess <jess@omni.example>", falling back to localhost.
func senderDomain(from string) string {
	from = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(from), ">"))
	at := strings.LastIndex(from, "@")
	if at < 0 || at == len(from)-1 {
		return "localhost"
	}
	return from[at+1:]
}
