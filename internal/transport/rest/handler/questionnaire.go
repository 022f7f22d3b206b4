package handler

import (
	"complykit/internal/model"
	"complykit/internal/risk"
	"complykit/internal/service"
	"complykit/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type answersRequest struct {
	Answers      model.AnswerSet `json:"answers"`
	SubmissionID string          `json:"submissionId"` // Optional, makes retries idempotent
}

type answerValueRequest struct {
	Value model.AnswerValue `json:"value"`
}

// classifyResponse is the stateless classification result
type classifyResponse struct {
	RiskLevel model.RiskLevel `json:"riskLevel"`
	Rule      string          `json:"rule"`
	Score     int             `json:"score"`
	Copy      risk.Copy       `json:"copy"`
}

// QuestionnaireHandler serves the step catalogue and questionnaire sessions
type QuestionnaireHandler struct {
	questionnaireSvc *service.QuestionnaireService
	log              *zap.Logger
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(questionnaireSvc *service.QuestionnaireService, log *zap.Logger) *QuestionnaireHandler {
	return &QuestionnaireHandler{questionnaireSvc: questionnaireSvc, log: log}
}

// Steps handles GET /v1/questionnaire/steps
func (h *QuestionnaireHandler) Steps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"steps": h.questionnaireSvc.Catalog().Steps(),
	})
}

// Classify handles POST /v1/assessments/classify. Nothing is stored.
func (h *QuestionnaireHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := decodeValidated(r, answersSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	level, rule := risk.Explain(req.Answers)
	writeJSON(w, http.StatusOK, classifyResponse{
		RiskLevel: level,
		Rule:      rule,
		Score:     risk.Score(req.Answers),
		Copy:      risk.CopyFor(level),
	})
}

// Start handles POST /v1/sessions
func (h *QuestionnaireHandler) Start(w http.ResponseWriter, r *http.Request) {
	view, err := h.questionnaireSvc.Start(r.Context(), middleware.GetOwner(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/sessions/{id}
func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.questionnaireSvc.Get(r.Context(), mux.Vars(r)["id"], middleware.GetOwner(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetAnswer handles PUT /v1/sessions/{id}/answers/{questionId}
func (h *QuestionnaireHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req answerValueRequest
	if err := decodeValidated(r, answerValueSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.questionnaireSvc.SetAnswer(r.Context(), vars["id"], middleware.GetOwner(r.Context()), vars["questionId"], req.Value)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Advance handles POST /v1/sessions/{id}/advance
func (h *QuestionnaireHandler) Advance(w http.ResponseWriter, r *http.Request) {
	view, err := h.questionnaireSvc.Advance(r.Context(), mux.Vars(r)["id"], middleware.GetOwner(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Retreat handles POST /v1/sessions/{id}/retreat
func (h *QuestionnaireHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	view, err := h.questionnaireSvc.Retreat(r.Context(), mux.Vars(r)["id"], middleware.GetOwner(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
