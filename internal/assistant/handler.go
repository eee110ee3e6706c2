package assistant

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"chatline/internal/api/httpx"
)

type Handler struct {
	generator Generator // nil when no credential was configured
	logger    *zap.Logger
}

func NewHandler(generator Generator, logger *zap.Logger) *Handler {
	return &Handler{generator: generator, logger: logger}
}

// Relay handles POST /api/ai. Upstream detail is logged server-side only; the
// caller sees a generic failure.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		httpx.Error(w, http.StatusBadRequest, "Message is required")
		return
	}

	if h.generator == nil {
		httpx.Error(w, http.StatusInternalServerError, "Gemini API key not configured")
		return
	}

	text, err := h.generator.Generate(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("gemini relay failed", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to get AI response")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"response": text})
}
