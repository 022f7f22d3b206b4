package model

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Session is a questionnaire run stored between requests
type Session struct {
	ID        string        `json:"id"`
	Owner     Owner         `json:"owner"`
	StepIndex int           `json:"stepIndex"`
	Answers   AnswerSet     `json:"answers"`
	Status    SessionStatus `json:"status"`
	RiskLevel RiskLevel     `json:"riskLevel,omitempty"`
	ResultID  string        `json:"resultId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
