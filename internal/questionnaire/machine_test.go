package questionnaire

import (
	"complykit/internal/model"
	"complykit/internal/risk"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answerStep fills every visible question of the current step
func answerStep(m *Machine, values map[string]model.AnswerValue) {
	for id, v := range values {
		m.SetAnswer(id, v)
	}
}

func completeAnswers() map[string]model.AnswerValue {
	return map[string]model.AnswerValue{
		"company_name":     model.Scalar("Celestial AI Inc."),
		"role":             model.Scalar("CTO"),
		"uses_ai":          model.Scalar("Yes"),
		"eu_reach":         model.Scalar("Yes"),
		"purpose":          model.Scalar("Screens CVs for open roles"),
		"users":            model.Scalar(risk.UsersB2C),
		"human_oversight":  model.Scalar("Yes, sometimes"),
		"use_areas":        model.List(risk.AreaHiring),
		"data_types":       model.List("None of the above"),
		"ai_interaction":   model.Scalar("No"),
		"compliance_email": model.Scalar("compliance@celestial.ai"),
		"website":          model.Scalar("https://www.celestial.ai"),
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 5, c.Len())

	ids := make([]string, 0, c.Len())
	for _, s := range c.Steps() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"basics", "scope", "ai_profile", "risk_assessment", "contact"}, ids)

	q, ok := c.Question("eu_reach")
	require.True(t, ok)
	require.NotNil(t, q.DependsOn)
	assert.Equal(t, "uses_ai", q.DependsOn.QuestionID)
	assert.Equal(t, "Yes", q.DependsOn.Value)
	assert.Equal(t, []string{"Yes", "No", "Not sure yet"}, q.Options)

	q, ok = c.Question("use_areas")
	require.True(t, ok)
	assert.Equal(t, model.QuestionTypeCheckbox, q.Type)
	assert.Len(t, q.Options, 8)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "[]"},
		{"unknown type", "- id: a\n  questions:\n    - id: q\n      type: slider\n"},
		{"missing options", "- id: a\n  questions:\n    - id: q\n      type: radio\n"},
		{"duplicate question", "- id: a\n  questions:\n    - {id: q, type: text}\n    - {id: q, type: text}\n"},
		{"forward dependency", "- id: a\n  questions:\n    - {id: q, type: text, dependsOn: {questionId: r, value: x}}\n    - {id: r, type: text}\n"},
		{"dependency on non-option", "- id: a\n  questions:\n    - {id: r, type: radio, options: [\"Yes\"]}\n    - {id: q, type: text, dependsOn: {questionId: r, value: Maybe}}\n"},
		{"unknown field", "- id: a\n  colour: red\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestVisible(t *testing.T) {
	q, _ := Default().Question("eu_reach")

	assert.False(t, Visible(q, model.AnswerSet{}))
	assert.False(t, Visible(q, model.AnswerSet{"uses_ai": model.Scalar("No")}))
	assert.False(t, Visible(q, model.AnswerSet{"uses_ai": model.List("Yes")}))
	assert.True(t, Visible(q, model.AnswerSet{"uses_ai": model.Scalar("Yes")}))

	purpose, _ := Default().Question("purpose")
	assert.True(t, Visible(purpose, nil))
}

func TestMissing(t *testing.T) {
	scope := Default().Step(1)

	assert.Equal(t, []string{"uses_ai"}, Missing(scope, model.AnswerSet{}))
	assert.Empty(t, Missing(scope, model.AnswerSet{"uses_ai": model.Scalar("No")}))
	assert.Equal(t, []string{"eu_reach"}, Missing(scope, model.AnswerSet{"uses_ai": model.Scalar("Yes")}))

	risky := Default().Step(3)
	answers := model.AnswerSet{
		"use_areas":      model.List(),
		"data_types":     model.List("Voice patterns"),
		"ai_interaction": model.Scalar("   "),
	}
	assert.Equal(t, []string{"use_areas", "ai_interaction"}, Missing(risky, answers))
}

func TestMachine_HiddenRequiredQuestionDoesNotBlock(t *testing.T) {
	m := NewMachine(Default())
	answerStep(m, map[string]model.AnswerValue{
		"company_name": model.Scalar("Acme"),
		"role":         model.Scalar("Engineer"),
	})
	_, err := m.Advance()
	require.NoError(t, err)

	m.SetAnswer("uses_ai", model.Scalar("No"))
	state, err := m.Advance()
	require.NoError(t, err)
	assert.Equal(t, 2, state.StepIndex)
}

func TestMachine_AdvanceValidation(t *testing.T) {
	m := NewMachine(Default())
	m.SetAnswer("company_name", model.Scalar("Acme"))

	state, err := m.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "basics", verr.StepID)
	assert.Equal(t, []string{"role"}, verr.Missing)
	assert.Equal(t, 0, state.StepIndex)
	assert.False(t, state.Completed)
}

func TestMachine_CompletesWithClassification(t *testing.T) {
	m := NewMachine(Default())
	answers := completeAnswers()

	for !m.IsLastStep() {
		for _, q := range m.CurrentStep().Questions {
			m.SetAnswer(q.ID, answers[q.ID])
		}
		_, err := m.Advance()
		require.NoError(t, err)
	}
	for _, q := range m.CurrentStep().Questions {
		m.SetAnswer(q.ID, answers[q.ID])
	}

	snapshot := m.Answers()
	state, err := m.Advance()
	require.NoError(t, err)
	assert.True(t, state.Completed)
	assert.Equal(t, risk.Classify(snapshot), state.RiskLevel)
	assert.Equal(t, model.RiskHigh, state.RiskLevel)
	assert.Equal(t, 100, m.Progress())

	// Completed machines ignore edits and refuse navigation.
	m.SetAnswer("uses_ai", model.Scalar("No"))
	assert.Equal(t, "Yes", m.Answers().Scalar("uses_ai"))
	_, err = m.Retreat()
	assert.ErrorIs(t, err, ErrCompleted)
	_, err = m.Advance()
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestMachine_UsesInjectedClassifier(t *testing.T) {
	calls := 0
	m := NewMachine(Default(), WithClassifier(func(a model.AnswerSet) model.RiskLevel {
		calls++
		return model.RiskMinimal
	}))
	m.stepIndex = Default().Len() - 1
	answerStep(m, map[string]model.AnswerValue{
		"compliance_email": model.Scalar("a@b.c"),
		"website":          model.Scalar("https://b.c"),
	})

	state, err := m.Advance()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, model.RiskMinimal, state.RiskLevel)
}

func TestMachine_RetreatFloor(t *testing.T) {
	m := NewMachine(Default())
	assert.True(t, m.IsFirstStep())

	state, err := m.Retreat()
	require.NoError(t, err)
	assert.Equal(t, 0, state.StepIndex)

	answerStep(m, map[string]model.AnswerValue{
		"company_name": model.Scalar("Acme"),
		"role":         model.Scalar("Other"),
	})
	_, err = m.Advance()
	require.NoError(t, err)
	assert.Equal(t, 40, m.Progress())

	state, err = m.Retreat()
	require.NoError(t, err)
	assert.Equal(t, 0, state.StepIndex)
	assert.Equal(t, "Acme", m.Answers().Scalar("company_name"))
}

func TestMachine_SetAnswerLastWriteWins(t *testing.T) {
	m := NewMachine(Default())
	m.SetAnswer("role", model.Scalar("CTO"))
	m.SetAnswer("role", model.Scalar("Engineer"))
	assert.Equal(t, "Engineer", m.Answers().Scalar("role"))
	assert.Equal(t, 0, m.State().StepIndex)
}

func TestRestoreAndSnapshot(t *testing.T) {
	s := &model.Session{
		ID:        "s1",
		StepIndex: 2,
		Answers:   model.AnswerSet{"uses_ai": model.Scalar("Yes")},
		Status:    model.SessionInProgress,
	}
	m, err := Restore(Default(), s)
	require.NoError(t, err)
	assert.Equal(t, "ai_profile", m.CurrentStep().ID)

	m.SetAnswer("purpose", model.Scalar("Forecasts demand"))
	_, err = m.Retreat()
	require.NoError(t, err)

	var out model.Session
	m.Snapshot(&out)
	assert.Equal(t, 1, out.StepIndex)
	assert.Equal(t, model.SessionInProgress, out.Status)
	assert.Equal(t, "Forecasts demand", out.Answers.Scalar("purpose"))

	_, err = Restore(Default(), &model.Session{ID: "bad", StepIndex: 9})
	assert.Error(t, err)
}
