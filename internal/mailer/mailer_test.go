package mailer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mortgage-voice-relay/internal/domain"
)

func testSettings() domain.MailSettings {
	return domain.MailSettings{
		Host:     "127.0.0.1",
		Port:     1,
		Username: "relay",
		Password: "secret",
		From:     "agent@omni.example",
		To:       "loans@omni.example",
	}
}

func testEmail() domain.Email {
	return domain.Email{
		From:    "Jess <agent@omni.example>",
		To:      "loans@omni.example, backup@omni.example",
		Subject: "Call Summary",
		HTML:    "<p>&lt;b&gt;hi&lt;/b&gt;</p>",
		Attachments: []domain.Attachment{
			{Filename: "call.webm", ContentType: "audio/webm", Content: []byte{0x1a, 0x45, 0xdf, 0xa3}},
			{Filename: "summary.txt", ContentType: "text/plain; charset=utf-8", Content: []byte("- Intent: refinance")},
			{Filename: "transcript.txt", ContentType: "text/plain; charset=utf-8", Content: []byte("User: hi")},
		},
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(testSettings())
	require.NoError(t, err)
	c.newID = func() string { return "fixed-id" }
	return c
}

func TestNew_RejectsBadPort(t *testing.T) {
	s := testSettings()
	s.Port = 0
	_, err := New(s)
	require.Error(t, err)
	require.Contains(t, err.Error(), "port")
}

func TestBuildMessage_IDAndAttachmentOrder(t *testing.T) {
	c := newTestClient(t)

	msg, id, err := c.buildMessage(testEmail())
	require.NoError(t, err)
	require.Equal(t, "<fixed-id@omni.example>", id)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()

	require.Contains(t, out, "<fixed-id@omni.example>")
	require.Contains(t, out, "loans@omni.example")
	require.Contains(t, out, "backup@omni.example")
	require.Contains(t, out, "text/html")

	rec := strings.Index(out, "call.webm")
	sum := strings.Index(out, "summary.txt")
	tr := strings.Index(out, "transcript.txt")
	require.True(t, rec >= 0 && sum >= 0 && tr >= 0, "all attachments present")
	require.Less(t, rec, sum)
	require.Less(t, sum, tr)
}

func TestBuildMessage_InvalidAddress(t *testing.T) {
	c := newTestClient(t)
	email := testEmail()
	email.From = "not an address"
	_, _, err := c.buildMessage(email)
	require.Error(t, err)
	require.Contains(t, err.Error(), "from address")
}

func TestSend_ConnectionRefused(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := c.Send(ctx, testEmail())
	require.Error(t, err)
	require.Contains(t, err.Error(), "mailer:")
}

func TestSplitAddresses(t *testing.T) {
	require.Equal(t, []string{"a@x.io"}, splitAddresses("a@x.io"))
	require.Equal(t, []string{"a@x.io", "b@x.io"}, splitAddresses(" a@x.io , b@x.io ,"))
	require.Nil(t, splitAddresses(" "))
}

func TestSenderDomain(t *testing.T) {
	cases := map[string]string{
		"agent@omni.example":        "omni.example",
		"Jess <jess@omni.example>":  "omni.example",
		" jess@mail.omni.example  ": "mail.omni.example",
		"no-at-sign":                "localhost",
		"trailing@":                 "localhost",
	}
	for in, want := range cases {
		require.Equal(t, want, senderDomain(in), "from=%q", in)
	}
}
