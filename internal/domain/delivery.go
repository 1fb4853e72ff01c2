package domain

// DeliveryRecord is the log entry written after a successful email delivery.
type DeliveryRecord struct {
	PK              string
	SK              string
	MessageID       string
	SentAt          string
	Recipient       string
	HasRecording    bool
	RecordingName   string
	TranscriptBytes int
	SummaryBytes    int
	TTL             int64
}
