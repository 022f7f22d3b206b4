package model

// QuestionType defines how a question is answered
type QuestionType string

const (
	QuestionTypeText     QuestionType = "text"     // Free text
	QuestionTypeSelect   QuestionType = "select"   // Single-select dropdown
	QuestionTypeRadio    QuestionType = "radio"    // Single-select buttons
	QuestionTypeCheckbox QuestionType = "checkbox" // Multi-select
	QuestionTypeEmail    QuestionType = "email"
	QuestionTypeURL      QuestionType = "url"
)

// IsMultiSelect reports whether answers to this type are lists
func (t QuestionType) IsMultiSelect() bool {
	return t == QuestionTypeCheckbox
}

// HasOptions reports whether the type picks from a fixed option list
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeSelect || t == QuestionTypeRadio || t == QuestionTypeCheckbox
}

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeSelect, QuestionTypeRadio, QuestionTypeCheckbox, QuestionTypeEmail, QuestionTypeURL:
		return true
	}
	return false
}

// Dependency makes a question visible only when another answer equals Value
type Dependency struct {
	QuestionID string `json:"questionId" yaml:"questionId"`
	Value      string `json:"value" yaml:"value"`
}

// Question is a static questionnaire question
type Question struct {
	ID         string       `json:"id" yaml:"id"`
	Text       string       `json:"text" yaml:"text"`
	Type       QuestionType `json:"type" yaml:"type"`
	HelperText string       `json:"helperText,omitempty" yaml:"helperText,omitempty"`
	Options    []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Required   bool         `json:"required" yaml:"required"`
	DependsOn  *Dependency  `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
}

// Step is an ordered group of questions shown together
type Step struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Questions   []Question `json:"questions" yaml:"questions"`
}
