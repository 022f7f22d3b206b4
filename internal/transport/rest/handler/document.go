package handler

import (
	"complykit/internal/model"
	"complykit/internal/service"
	"complykit/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DocumentHandler handles compliance document endpoints
type DocumentHandler struct {
	documentSvc *service.DocumentService
	log         *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentSvc *service.DocumentService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc, log: log}
}

// Generate handles POST /v1/documents/{kind}
func (h *DocumentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	kind, err := model.ParseDocumentKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.documentSvc.Generate(r.Context(), user.ID, kind)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Get handles GET /v1/documents/{kind}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	kind, err := model.ParseDocumentKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.documentSvc.Get(r.Context(), user.ID, kind)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Preview handles GET /v1/documents/{kind}/preview
func (h *DocumentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	kind, err := model.ParseDocumentKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.documentSvc.Preview(r.Context(), user.ID, kind)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}
