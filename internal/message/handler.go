package message

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"chatline/internal/api/httpx"
	"chatline/internal/auth"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Get handles GET /api/messages?userId=<id>.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserID(r.Context())
	otherID := r.URL.Query().Get("userId")

	msgs, err := h.service.Conversation(r.Context(), callerID, otherID)
	if err != nil {
		if errors.Is(err, ErrMissingCounterpart) {
			httpx.Error(w, http.StatusBadRequest, "userId is required")
			return
		}
		h.logger.Error("failed to fetch conversation",
			zap.String("userId", callerID), zap.String("otherId", otherID), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	httpx.JSON(w, http.StatusOK, msgs)
}

// Post handles POST /api/messages.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserID(r.Context())

	var req struct {
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.service.Send(r.Context(), callerID, req.ReceiverID, req.Content)
	if err != nil {
		if errors.Is(err, ErrMissingReceiver) {
			httpx.Error(w, http.StatusBadRequest, "receiverId and content are required")
			return
		}
		h.logger.Error("failed to send message",
			zap.String("userId", callerID), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	httpx.JSON(w, http.StatusOK, msg)
}
