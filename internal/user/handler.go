package user

import (
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

// List handles GET /api/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserID(r.Context())

	contacts, err := h.service.Directory(r.Context(), callerID)
	if err != nil {
		h.logger.Error("failed to build contact directory",
			zap.String("userId", callerID), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	httpx.JSON(w, http.StatusOK, contacts)
}
