package questionnaire

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCompleted = errors.New("questionnaire already completed")
)

// ValidationError lists required questions that block Advance
type ValidationError struct {
	StepID  string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %q has unanswered required questions: %s", e.StepID, strings.Join(e.Missing, ", "))
}
