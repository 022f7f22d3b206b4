package model

import "time"

type SummaryStatus string

const (
	SummaryPending SummaryStatus = "pending"
	SummaryReady   SummaryStatus = "ready"
	SummaryFailed  SummaryStatus = "failed" // Text holds the fallback message
)

// Summary is the narrative compliance summary for a result
type Summary struct {
	ResultID  string        `json:"resultId"`
	Status    SummaryStatus `json:"status"`
	Text      string        `json:"text,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
