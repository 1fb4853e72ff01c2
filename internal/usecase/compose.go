package usecase

import (
	"bytes"
	"fmt"
	"html/template"

	"mortgage-voice-relay/internal/domain"
)

const (
	noSummaryPlaceholder    = "No summary provided."
	noTranscriptPlaceholder = "No transcript provided."

	defaultRecordingName = "recording.webm"
	defaultRecordingType = "audio/webm"
	textAttachmentType   = "text/plain; charset=utf-8"
)

// emailBodyTemplate is rendered with html/template, so every interpolated
// value is HTML-escaped.
var emailBodyTemplate = template.Must(template.New("email").Parse(`<div style="font-family: Arial, sans-serif; line-height:1.5; color:#111;">
  <h1>Mortgage Inquiry — Call Summary</h1>
  <p style="color:#666;">Summary, transcript{{if .HasRecording}} and recording{{end}} attached.</p>

  <h2>Summary</h2>
  <div style="background:#f8f9fa; padding:12px; border-radius:6px; white-space:pre-wrap;">{{.Summary}}</div>

  <h2>Full Transcript</h2>
  <div style="background:#f8f9fa; padding:12px; border-radius:6px; max-height:500px; overflow:auto; white-space:pre-wrap;">{{.Transcript}}</div>

  <p style="margin-top:1.5rem; color:#666; font-size:0.9em;">Sent from Omni Mortgage Voice Agent</p>
</div>
`))

type emailBodyData struct {
	Summary      string
	Transcript   string
	HasRecording bool
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// renderEmailBody renders the HTML body for a call summary email.
func renderEmailBody(summary, transcript string, hasRecording bool) (string, error) {
	var buf bytes.Buffer
	err := emailBodyTemplate.Execute(&buf, emailBodyData{
		Summary:      orPlaceholder(summary, noSummaryPlaceholder),
		Transcript:   orPlaceholder(transcript, noTranscriptPlaceholder),
		HasRecording: hasRecording,
	})
	if err != nil {
		return "", fmt.Errorf("usecase: render email body: %w", err)
	}
	return buf.String(), nil
}

// buildAttachments returns the recording (when present) followed by
// summary.txt and transcript.txt. Text attachments carry the raw text.
func buildAttachments(in EmailInput) []domain.Attachment {
	attachments := make([]domain.Attachment, 0, 3)
	if in.Recording != nil {
		attachments = append(attachments, domain.Attachment{
			Filename:    orPlaceholder(in.Recording.Filename, defaultRecordingName),
			ContentType: orPlaceholder(in.Recording.ContentType, defaultRecordingType),
			Content:     in.Recording.Content,
		})
	}
	return append(attachments,
		domain.Attachment{
			Filename:    "summary.txt",
			ContentType: textAttachmentType,
			Content:     []byte(orPlaceholder(in.Summary, noSummaryPlaceholder)),
		},
		domain.Attachment{
			Filename:    "transcript.txt",
			ContentType: textAttachmentType,
			Content:     []byte(orPlaceholder(in.Transcript, noTranscriptPlaceholder)),
		},
	)
}

func composeEmail(settings domain.MailSettings, in EmailInput) (domain.Email, error) {
	html, err := renderEmailBody(in.Summary, in.Transcript, in.Recording != nil)
	if err != nil {
		return domain.Email{}, err
	}
	return domain.Email{
		From:        settings.From,
		To:          settings.To,
		Subject:     settings.Subject,
		HTML:        html,
		Attachments: buildAttachments(in),
	}, nil
}
