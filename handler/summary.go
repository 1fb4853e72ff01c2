package handler

import (
	"encoding/json"
	"net/http"

	"mortgage-voice-relay/internal/usecase"
)

type summaryResponse struct {
	Summary string          `json:"summary"`
	Raw     json.RawMessage `json:"raw"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeObject(w, r)
	if err != nil {
		writeError(w, r, "summary", err)
		return
	}

	out, err := h.summary.Summarize(r.Context(), usecase.TranscriptFromFields(fields))
	if err != nil {
		writeError(w, r, "summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: out.Summary, Raw: out.Raw})
}
