package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"mortgage-voice-relay/internal/usecase"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

type emailResponse struct {
	OK        bool   `json:"ok"`
	MessageID string `json:"messageId"`
}

func (h *Handler) handleEmail(w http.ResponseWriter, r *http.Request) {
	in, err := h.readEmailForm(w, r)
	if err != nil {
		writeError(w, r, "email", err)
		return
	}

	out, err := h.email.Deliver(r.Context(), in)
	if err != nil {
		writeError(w, r, "email", err)
		return
	}
	writeJSON(w, http.StatusOK, emailResponse{OK: true, MessageID: out.MessageID})
}

// readEmailForm parses the multipart submission. A non-multipart body is read
// as an urlencoded form, which simply carries no recording.
func (h *Handler) readEmailForm(w http.ResponseWriter, r *http.Request) (usecase.EmailInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return usecase.EmailInput{}, formError(err)
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	in := usecase.EmailInput{
		Transcript: r.PostFormValue("transcript"),
		Summary:    r.PostFormValue("summary"),
	}

	if r.MultipartForm == nil {
		return in, nil
	}
	file, header, err := r.FormFile("recording")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return usecase.EmailInput{}, formError(err)
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return usecase.EmailInput{}, formError(fmt.Errorf("read recording: %w", err))
	}
	in.Recording = &usecase.Recording{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}
	return in, nil
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &usecase.Error{
			Code:    usecase.ErrorInvalidInput,
			Reason:  "upload_too_large",
			Status:  http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
			Err:     err,
		}
	}
	return &usecase.Error{
		Code:    usecase.ErrorInvalidInput,
		Reason:  "invalid_form",
		Message: "invalid multipart form",
		Err:     err,
	}
}
