package service

import (
	"complykit/internal/cache"
	"complykit/internal/metrics"
	"complykit/internal/model"
	"complykit/internal/questionnaire"
	"complykit/internal/risk"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionView is a session plus what a client needs to render its step
type SessionView struct {
	Session  *model.Session     `json:"session"`
	Step     model.Step         `json:"step"`
	Visible  []model.Question   `json:"visibleQuestions"`
	Progress int                `json:"progress"`
	IsFirst  bool               `json:"isFirstStep"`
	IsLast   bool               `json:"isLastStep"`
	Outcome  *AssessmentOutcome `json:"outcome,omitempty"`
}

// AssessmentOutcome is returned once an answer set has been classified
type AssessmentOutcome struct {
	RiskLevel model.RiskLevel            `json:"riskLevel"`
	Rule      string                     `json:"rule"`
	Copy      risk.Copy                  `json:"copy"`
	Result    *model.QuestionnaireResult `json:"result,omitempty"`
	Persisted bool                       `json:"persisted"`
}

// QuestionnaireService drives questionnaire sessions stored in Redis
type QuestionnaireService struct {
	catalog   *questionnaire.Catalog
	sessions  cache.SessionCache
	results   *ResultService
	summaries *SummaryService
	log       *zap.Logger
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(
	catalog *questionnaire.Catalog,
	sessions cache.SessionCache,
	results *ResultService,
	summaries *SummaryService,
	log *zap.Logger,
) *QuestionnaireService {
	return &QuestionnaireService{
		catalog:   catalog,
		sessions:  sessions,
		results:   results,
		summaries: summaries,
		log:       log,
	}
}

// Catalog returns the step catalogue
func (s *QuestionnaireService) Catalog() *questionnaire.Catalog {
	return s.catalog
}

// Start creates a session at the first step. The owner needs a user or
// client id, otherwise no later call could reach the session.
func (s *QuestionnaireService) Start(ctx context.Context, owner model.Owner) (*SessionView, error) {
	if !owner.IsAuthenticated() && owner.ClientID == "" {
		return nil, ErrOwnerRequired
	}
	now := time.Now().UTC()
	session := &model.Session{
		ID:        uuid.New().String(),
		Owner:     owner,
		Answers:   model.AnswerSet{},
		Status:    model.SessionInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session, questionnaire.NewMachine(s.catalog), nil), nil
}

// Get loads a session owned by owner
func (s *QuestionnaireService) Get(ctx context.Context, id string, owner model.Owner) (*SessionView, error) {
	session, m, err := s.load(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	return s.view(session, m, nil), nil
}

// SetAnswer records one answer
func (s *QuestionnaireService) SetAnswer(ctx context.Context, id string, owner model.Owner, questionID string, value model.AnswerValue) (*SessionView, error) {
	session, m, err := s.load(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	m.SetAnswer(questionID, value)
	if err := s.save(ctx, session, m); err != nil {
		return nil, err
	}
	return s.view(session, m, nil), nil
}

// Advance moves to the next step. On the last step the answers are
// classified, submitted, and the summary is requested. A
// *questionnaire.ValidationError leaves the session unchanged.
func (s *QuestionnaireService) Advance(ctx context.Context, id string, owner model.Owner) (*SessionView, error) {
	session, m, err := s.load(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	stepID := m.CurrentStep().ID
	state, err := m.Advance()
	if err != nil {
		var verr *questionnaire.ValidationError
		if errors.As(err, &verr) {
			metrics.ValidationFailures.WithLabelValues(stepID).Inc()
		}
		return nil, err
	}

	var outcome *AssessmentOutcome
	if state.Completed {
		outcome = s.complete(ctx, owner, session.ID, m.Answers(), state.RiskLevel)
		session.ResultID = outcome.Result.ID
	}

	if err := s.save(ctx, session, m); err != nil {
		if outcome == nil {
			return nil, err
		}
		// The result is already stored; the level must still reach the client.
		s.log.Warn("failed to save completed session", zap.String("session_id", id), zap.Error(err))
	}
	return s.view(session, m, outcome), nil
}

// Retreat moves back one step
func (s *QuestionnaireService) Retreat(ctx context.Context, id string, owner model.Owner) (*SessionView, error) {
	session, m, err := s.load(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if _, err := m.Retreat(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session, m); err != nil {
		return nil, err
	}
	return s.view(session, m, nil), nil
}

// Assess classifies a full answer set directly, without a session.
// submissionID may be empty; see ResultService.Submit.
func (s *QuestionnaireService) Assess(ctx context.Context, owner model.Owner, submissionID string, answers model.AnswerSet) *AssessmentOutcome {
	return s.complete(ctx, owner, submissionID, answers, risk.Classify(answers))
}

func (s *QuestionnaireService) complete(ctx context.Context, owner model.Owner, submissionID string, answers model.AnswerSet, level model.RiskLevel) *AssessmentOutcome {
	_, rule := risk.Explain(answers)
	metrics.Classifications.WithLabelValues(string(level), rule).Inc()

	sub := s.results.Submit(ctx, owner, submissionID, answers, level)
	s.summaries.Request(sub.Result.ID, answers, level)

	return &AssessmentOutcome{
		RiskLevel: level,
		Rule:      rule,
		Copy:      risk.CopyFor(level),
		Result:    sub.Result,
		Persisted: sub.Persisted,
	}
}

func (s *QuestionnaireService) load(ctx context.Context, id string, owner model.Owner) (*model.Session, *questionnaire.Machine, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session == nil || !ownedBy(session.Owner, owner) {
		return nil, nil, ErrSessionNotFound
	}

	m, err := questionnaire.Restore(s.catalog, session)
	if err != nil {
		return nil, nil, err
	}
	return session, m, nil
}

func (s *QuestionnaireService) save(ctx context.Context, session *model.Session, m *questionnaire.Machine) error {
	m.Snapshot(session)
	session.UpdatedAt = time.Now().UTC()
	return s.sessions.Set(ctx, session)
}

func (s *QuestionnaireService) view(session *model.Session, m *questionnaire.Machine, outcome *AssessmentOutcome) *SessionView {
	m.Snapshot(session)
	return &SessionView{
		Session:  session,
		Step:     m.CurrentStep(),
		Visible:  m.VisibleQuestions(),
		Progress: m.Progress(),
		IsFirst:  m.IsFirstStep(),
		IsLast:   m.IsLastStep(),
		Outcome:  outcome,
	}
}

// ownedBy lets a session follow its creator across login: a session started
// anonymously stays reachable with the same client id after a token appears.
func ownedBy(sessionOwner, caller model.Owner) bool {
	if sessionOwner.UserID != "" {
		return sessionOwner.UserID == caller.UserID
	}
	return sessionOwner.ClientID != "" && sessionOwner.ClientID == caller.ClientID
}
