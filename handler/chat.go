package handler

import (
	"encoding/json"
	"net/http"

	"mortgage-voice-relay/internal/usecase"
)

type chatResponse struct {
	Assistant string          `json:"assistant"`
	Raw       json.RawMessage `json:"raw"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeObject(w, r)
	if err != nil {
		writeError(w, r, "chat", err)
		return
	}

	out, err := h.chat.Reply(r.Context(), usecase.ChatInputFromFields(fields))
	if err != nil {
		writeError(w, r, "chat", err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Assistant: out.Assistant, Raw: out.Raw})
}
