package questionnaire

import (
	"fmt"
	"math"

	"complykit/internal/model"
	"complykit/internal/risk"
)

// Classifier maps a complete answer set to a risk level
type Classifier func(model.AnswerSet) model.RiskLevel

// State is the machine's externally visible position
type State struct {
	StepIndex int             `json:"stepIndex"`
	Completed bool            `json:"completed"`
	RiskLevel model.RiskLevel `json:"riskLevel,omitempty"`
}

// Machine walks one respondent through a catalogue. It is not safe for
// concurrent use; callers own one machine per session.
type Machine struct {
	catalog   *Catalog
	classify  Classifier
	stepIndex int
	answers   model.AnswerSet
	completed bool
	level     model.RiskLevel
}

type Option func(*Machine)

// WithClassifier replaces the default rule-table classifier
func WithClassifier(fn Classifier) Option {
	return func(m *Machine) {
		m.classify = fn
	}
}

// NewMachine starts a machine at the first step with no answers
func NewMachine(catalog *Catalog, opts ...Option) *Machine {
	m := &Machine{
		catalog:  catalog,
		classify: risk.Classify,
		answers:  make(model.AnswerSet),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore rebuilds a machine from a stored session
func Restore(catalog *Catalog, s *model.Session, opts ...Option) (*Machine, error) {
	m := NewMachine(catalog, opts...)
	if s.StepIndex < 0 || s.StepIndex >= catalog.Len() {
		return nil, fmt.Errorf("session %s: step index %d out of range", s.ID, s.StepIndex)
	}
	m.stepIndex = s.StepIndex
	if s.Answers != nil {
		m.answers = s.Answers.Clone()
	}
	if s.Status == model.SessionCompleted {
		m.completed = true
		m.level = s.RiskLevel
	}
	return m, nil
}

// Snapshot writes the machine's state into s
func (m *Machine) Snapshot(s *model.Session) {
	s.StepIndex = m.stepIndex
	s.Answers = m.answers.Clone()
	if m.completed {
		s.Status = model.SessionCompleted
		s.RiskLevel = m.level
	} else {
		s.Status = model.SessionInProgress
		s.RiskLevel = ""
	}
}

// SetAnswer records an answer without validation. Writes after completion
// are dropped.
func (m *Machine) SetAnswer(questionID string, value model.AnswerValue) {
	if m.completed {
		return
	}
	m.answers.Set(questionID, value)
}

// Advance moves to the next step, or classifies and completes on the last
// step. A *ValidationError is returned, and nothing changes, when a visible
// required question is unanswered.
func (m *Machine) Advance() (State, error) {
	if m.completed {
		return m.State(), ErrCompleted
	}

	step := m.CurrentStep()
	if missing := Missing(step, m.answers); len(missing) > 0 {
		return m.State(), &ValidationError{StepID: step.ID, Missing: missing}
	}

	if m.IsLastStep() {
		m.level = m.classify(m.answers.Clone())
		m.completed = true
		return m.State(), nil
	}

	m.stepIndex++
	return m.State(), nil
}

// Retreat moves back one step, stopping at the first
func (m *Machine) Retreat() (State, error) {
	if m.completed {
		return m.State(), ErrCompleted
	}
	if m.stepIndex > 0 {
		m.stepIndex--
	}
	return m.State(), nil
}

func (m *Machine) State() State {
	return State{StepIndex: m.stepIndex, Completed: m.completed, RiskLevel: m.level}
}

func (m *Machine) CurrentStep() model.Step {
	return m.catalog.Step(m.stepIndex)
}

// VisibleQuestions returns the current step's visible questions
func (m *Machine) VisibleQuestions() []model.Question {
	return VisibleQuestions(m.CurrentStep(), m.answers)
}

// Answers returns a copy of the collected answers
func (m *Machine) Answers() model.AnswerSet {
	return m.answers.Clone()
}

func (m *Machine) Completed() bool {
	return m.completed
}

func (m *Machine) RiskLevel() model.RiskLevel {
	return m.level
}

func (m *Machine) IsFirstStep() bool {
	return m.stepIndex == 0
}

func (m *Machine) IsLastStep() bool {
	return m.stepIndex == m.catalog.Len()-1
}

// Progress is the percentage of steps reached, 100 once completed
func (m *Machine) Progress() int {
	if m.completed {
		return 100
	}
	return int(math.Round(float64(m.stepIndex+1) / float64(m.catalog.Len()) * 100))
}
