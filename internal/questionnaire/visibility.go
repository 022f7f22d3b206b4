package questionnaire

import "complykit/internal/model"

// Visible reports whether q is shown given the current answers.
// A dependent question is visible only when the dependency's answer equals
// the required value exactly.
func Visible(q model.Question, answers model.AnswerSet) bool {
	if q.DependsOn == nil {
		return true
	}
	v, ok := answers.Get(q.DependsOn.QuestionID)
	if !ok || v.IsList() {
		return false
	}
	return v.Text() == q.DependsOn.Value
}

// VisibleQuestions filters a step's questions down to the visible ones
func VisibleQuestions(step model.Step, answers model.AnswerSet) []model.Question {
	out := make([]model.Question, 0, len(step.Questions))
	for _, q := range step.Questions {
		if Visible(q, answers) {
			out = append(out, q)
		}
	}
	return out
}

// Missing returns the ids of visible required questions without a defined answer
func Missing(step model.Step, answers model.AnswerSet) []string {
	var missing []string
	for _, q := range step.Questions {
		if !q.Required || !Visible(q, answers) {
			continue
		}
		if !answers.Defined(q.ID) {
			missing = append(missing, q.ID)
		}
	}
	return missing
}
