package handler

import (
	"complykit/internal/model"
	"complykit/internal/questionnaire"
	"complykit/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service and questionnaire errors to status codes
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *questionnaire.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   verr.Error(),
			"missing": verr.Missing,
		})
	case errors.Is(err, questionnaire.ErrCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNoQuestionnaire):
		writeError(w, http.StatusConflict, service.NoQuestionnaireMessage)
	case errors.Is(err, service.ErrOwnerRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
