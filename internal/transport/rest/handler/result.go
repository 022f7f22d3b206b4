package handler

import (
	"complykit/internal/service"
	"complykit/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ResultHandler handles result submission, history and summaries
type ResultHandler struct {
	questionnaireSvc *service.QuestionnaireService
	resultSvc        *service.ResultService
	summarySvc       *service.SummaryService
	log              *zap.Logger
}

// NewResultHandler creates a new result handler
func NewResultHandler(questionnaireSvc *service.QuestionnaireService, resultSvc *service.ResultService, summarySvc *service.SummaryService, log *zap.Logger) *ResultHandler {
	return &ResultHandler{
		questionnaireSvc: questionnaireSvc,
		resultSvc:        resultSvc,
		summarySvc:       summarySvc,
		log:              log,
	}
}

// Submit handles POST /v1/results with a complete answer set
func (h *ResultHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := decodeValidated(r, answersSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome := h.questionnaireSvc.Assess(r.Context(), middleware.GetOwner(r.Context()), req.SubmissionID, req.Answers)
	writeJSON(w, http.StatusCreated, outcome)
}

// History handles GET /v1/results
func (h *ResultHandler) History(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	results, err := h.resultSvc.History(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Latest handles GET /v1/results/latest
func (h *ResultHandler) Latest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.resultSvc.Latest(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Claim handles POST /v1/results/claim. The middleware already replays on
// every authenticated request with a client id; this endpoint reports the
// outcome explicitly.
func (h *ResultHandler) Claim(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.resultSvc.ReplayPending(r.Context(), user.ID, middleware.GetClientID(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Summary handles GET /v1/results/{id}/summary
func (h *ResultHandler) Summary(w http.ResponseWriter, r *http.Request) {
	resultID := mux.Vars(r)["id"]

	summary, err := h.summarySvc.Get(r.Context(), resultID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "not_started"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
