package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mortgage-voice-relay/internal/domain"
)

func TestRenderEmailBody_EscapesUserText(t *testing.T) {
	html, err := renderEmailBody(`<b>x</b>`, `Tom & "Jerry" said 'hi' <script>`, false)
	require.NoError(t, err)

	require.Contains(t, html, "&lt;b&gt;x&lt;/b&gt;")
	require.NotContains(t, html, "<b>")
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "Tom &amp; &#34;Jerry&#34; said &#39;hi&#39; &lt;script&gt;")
}

func TestRenderEmailBody_Placeholders(t *testing.T) {
	html, err := renderEmailBody("", "", false)
	require.NoError(t, err)
	require.Contains(t, html, "No summary provided.")
	require.Contains(t, html, "No transcript provided.")
	require.Contains(t, html, "Summary, transcript attached.")
}

func TestRenderEmailBody_MentionsRecording(t *testing.T) {
	html, err := renderEmailBody("s", "t", true)
	require.NoError(t, err)
	require.Contains(t, html, "Summary, transcript and recording attached.")
}

func TestBuildAttachments_RecordingFirst(t *testing.T) {
	got := buildAttachments(EmailInput{
		Transcript: "User: <hi>",
		Summary:    "- Intent: buy",
		Recording:  &Recording{Filename: "call.mp3", ContentType: "audio/mpeg", Content: []byte("ID3")},
	})

	require.Equal(t, []domain.Attachment{
		{Filename: "call.mp3", ContentType: "audio/mpeg", Content: []byte("ID3")},
		{Filename: "summary.txt", ContentType: textAttachmentType, Content: []byte("- Intent: buy")},
		{Filename: "transcript.txt", ContentType: textAttachmentType, Content: []byte("User: <hi>")},
	}, got)
}

func TestBuildAttachments_RecordingDefaults(t *testing.T) {
	got := buildAttachments(EmailInput{Recording: &Recording{Content: []byte{0x1a}}})
	require.Len(t, got, 3)
	require.Equal(t, "recording.webm", got[0].Filename)
	require.Equal(t, "audio/webm", got[0].ContentType)
}

func TestBuildAttachments_NoRecording(t *testing.T) {
	got := buildAttachments(EmailInput{})
	require.Equal(t, []domain.Attachment{
		{Filename: "summary.txt", ContentType: textAttachmentType, Content: []byte("No summary provided.")},
		{Filename: "transcript.txt", ContentType: textAttachmentType, Content: []byte("No transcript provided.")},
	}, got)
}
