package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mortgage-voice-relay/internal/domain"
)

// DefaultEmailSubject is used when EMAIL_SUBJECT is unset.
const DefaultEmailSubject = "Omni Mortgage — Call Summary & Recording"

// MailSender delivers a composed email and returns its Message-ID.
type MailSender interface {
	Send(ctx context.Context, email domain.Email) (string, error)
}

// DeliveryLogger persists a record of each successful delivery.
type DeliveryLogger interface {
	RecordDelivery(ctx context.Context, rec domain.DeliveryRecord) error
}

// Recording is the optional audio upload.
type Recording struct {
	Filename    string
	ContentType string
	Content     []byte
}

type EmailInput struct {
	Transcript string
	Summary    string
	Recording  *Recording
}

type EmailOutput struct {
	MessageID string
}

// EmailService composes and sends the call summary email.
type EmailService struct {
	settings   domain.MailSettings
	sender     MailSender
	deliveries DeliveryLogger
	now        func() time.Time
}

// NewEmailService builds the service. deliveries may be nil.
func NewEmailService(settings domain.MailSettings, sender MailSender, deliveries DeliveryLogger) (*EmailService, error) {
	if sender == nil {
		return nil, errors.New("usecase: mail sender must not be nil")
	}
	if strings.TrimSpace(settings.Subject) == "" {
		settings.Subject = DefaultEmailSubject
	}
	return &EmailService{
		settings:   settings,
		sender:     sender,
		deliveries: deliveries,
		now:        time.Now,
	}, nil
}

func (s *EmailService) Deliver(ctx context.Context, in EmailInput) (EmailOutput, error) {
	if missing := s.settings.MissingKeys(); len(missing) > 0 {
		return EmailOutput{}, &Error{
			Code:    ErrorConfig,
			Reason:  "smtp_config_missing",
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("Missing SMTP environment variables (%s)", strings.Join(missing, ", ")),
		}
	}

	email, err := composeEmail(s.settings, in)
	if err != nil {
		return EmailOutput{}, newError(ErrorInternal, "email_compose_error", err)
	}

	messageID, err := s.sender.Send(ctx, email)
	if err != nil {
		return EmailOutput{}, &Error{
			Code:   ErrorUpstream,
			Reason: "smtp_send_error",
			Status: http.StatusInternalServerError,
			Err:    err,
		}
	}

	s.recordDelivery(ctx, messageID, in)
	return EmailOutput{MessageID: messageID}, nil
}

// recordDelivery never fails the request; the email is already sent.
func (s *EmailService) recordDelivery(ctx context.Context, messageID string, in EmailInput) {
	if s.deliveries == nil {
		return
	}
	rec := domain.DeliveryRecord{
		MessageID:       messageID,
		SentAt:          s.now().UTC().Format(time.RFC3339),
		Recipient:       s.settings.To,
		HasRecording:    in.Recording != nil,
		TranscriptBytes: len(in.Transcript),
		SummaryBytes:    len(in.Summary),
	}
	if in.Recording != nil {
		rec.RecordingName = orPlaceholder(in.Recording.Filename, defaultRecordingName)
	}
	if err := s.deliveries.RecordDelivery(ctx, rec); err != nil {
		slog.WarnContext(ctx, "failed to record email delivery", "message_id", messageID, "err", err)
	}
}
