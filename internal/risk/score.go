package risk

import (
	"complykit/internal/model"
	"math"
)

const (
	pointsPerSignal = 20
	maxPoints       = 3 * pointsPerSignal
)

// Score derives the 0..100 readiness score stored on results.
// Each of the three compliance signals is worth the same weight.
func Score(answers model.AnswerSet) int {
	earned := 0
	if is(answers.Scalar(FieldUsesAI), answerYes) {
		earned += pointsPerSignal
	}
	if is(answers.Scalar(FieldEUReach), answerYes) {
		earned += pointsPerSignal
	}
	if is(answers.Scalar(FieldHumanOversight), OversightAlways) {
		earned += pointsPerSignal
	}
	return int(math.Round(100 * float64(earned) / maxPoints))
}
