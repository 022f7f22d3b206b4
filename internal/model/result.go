package model

import "time"

// QuestionnaireResult is a completed, classified submission. Never mutated after creation.
type QuestionnaireResult struct {
	ID     string `json:"id" bson:"_id,omitempty"`
	UserID string `json:"userId" bson:"userId"` // Empty while pending for an anonymous client
	// SubmissionID is chosen by the submitter. A user stores at most one
	// result per submission id, so retries and replays cannot duplicate it.
	SubmissionID string    `json:"submissionId,omitempty" bson:"submissionId,omitempty"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
	Answers      AnswerSet `json:"answers" bson:"answers"`
	Score        int       `json:"score" bson:"score"`
	RiskLevel    RiskLevel `json:"riskLevel" bson:"riskLevel"`
}

// LatestSubmission is the most recent submission kept as a backup per owner
type LatestSubmission struct {
	ResultID    string    `json:"resultId,omitempty"`
	Answers     AnswerSet `json:"answers"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Owner identifies who a submission belongs to
type Owner struct {
	UserID   string `json:"userId,omitempty"`   // From the identity provider
	ClientID string `json:"clientId,omitempty"` // Opaque per-browser/CLI id
}

// IsAuthenticated reports whether a user is attached
func (o Owner) IsAuthenticated() bool {
	return o.UserID != ""
}

// Key returns the cache key segment for the owner
func (o Owner) Key() string {
	if o.UserID != "" {
		return "user:" + o.UserID
	}
	return "client:" + o.ClientID
}
