package domain

import "strings"

// Attachment is a single file attached to an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Email is a fully composed message ready for the SMTP transport.
type Email struct {
	From        string
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// MailSettings is the SMTP relay configuration used by the email relay.
type MailSettings struct {
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
	From     string
	To       string
	Subject  string
}

// MissingKeys lists the environment keys whose values are absent, in a fixed
// order. Port, Secure and Subject have defaults and are never reported.
func (s MailSettings) MissingKeys() []string {
	var missing []string
	for _, f := range []struct {
		key string
		val string
	}{
		{"SMTP_HOST", s.Host},
		{"SMTP_USER", s.Username},
		{"SMTP_PASS", s.Password},
		{"EMAIL_FROM", s.From},
		{"EMAIL_TO", s.To},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.key)
		}
	}
	return missing
}
