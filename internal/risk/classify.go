// Package risk classifies questionnaire answers into EU AI Act risk tiers.
//
// Classification is ordered rule precedence: the first matching rule wins and
// later rules are never consulted. The table below is the only copy of the
// rules in the module.
package risk

import (
	"complykit/internal/model"
	"strings"
)

// facts are the normalized answer values the rules read
type facts struct {
	usesAI         string
	euReach        string
	purpose        string // case-folded
	useAreas       []string
	dataTypes      []string
	humanOversight string
	users          string
	aiInteraction  string
}

func deriveFacts(answers model.AnswerSet) facts {
	return facts{
		usesAI:         strings.TrimSpace(answers.Scalar(FieldUsesAI)),
		euReach:        strings.TrimSpace(answers.Scalar(FieldEUReach)),
		purpose:        strings.ToLower(answers.Scalar(FieldPurpose)),
		useAreas:       answers.List(FieldUseAreas),
		dataTypes:      answers.List(FieldDataTypes),
		humanOversight: strings.TrimSpace(answers.Scalar(FieldHumanOversight)),
		users:          strings.TrimSpace(answers.Scalar(FieldUsers)),
		aiInteraction:  strings.TrimSpace(answers.Scalar(FieldAIInteraction)),
	}
}

// Rule is one row of the classification table
type Rule struct {
	Name  string
	Level model.RiskLevel
	match func(f facts) bool
}

var rules = []Rule{
	{
		Name:  "out-of-scope",
		Level: model.RiskOutOfScope,
		match: func(f facts) bool {
			// No confirmed AI component means the regulation does not apply.
			return f.usesAI == "" || is(f.usesAI, answerNo) || is(f.euReach, answerNo)
		},
	},
	{
		Name:  "social-scoring",
		Level: model.RiskUnacceptable,
		match: func(f facts) bool {
			return includes(f.dataTypes, DataProfiling) && containsAny(f.purpose, socialScoringTerms)
		},
	},
	{
		Name:  "emotion-recognition",
		Level: model.RiskUnacceptable,
		match: func(f facts) bool {
			return includes(f.dataTypes, DataEmotion) &&
				includesAny(f.useAreas, AreaHiring, AreaEducation, AreaLawEnforcement)
		},
	},
	{
		Name:  "critical-domain",
		Level: model.RiskHigh,
		match: func(f facts) bool {
			return includesAny(f.useAreas, AreaInfrastructure, AreaLawEnforcement, AreaMigration, AreaBiometricID)
		},
	},
	{
		Name:  "consumer-decisions",
		Level: model.RiskHigh,
		match: func(f facts) bool {
			return includesAny(f.useAreas, AreaCredit, AreaHiring) && is(f.users, UsersB2C)
		},
	},
	{
		Name:  "biometric-data",
		Level: model.RiskHigh,
		match: func(f facts) bool {
			return includesAny(f.dataTypes, DataBiometric, DataVoice)
		},
	},
	{
		Name:  "autonomous-decisions",
		Level: model.RiskHigh,
		match: func(f facts) bool {
			return is(f.humanOversight, OversightAutonomous) &&
				includesAny(f.useAreas, AreaCredit, AreaHiring, AreaEducation)
		},
	},
	{
		Name:  "transparency",
		Level: model.RiskLimited,
		match: func(f facts) bool {
			return is(f.aiInteraction, answerYes) || containsAny(f.purpose, transparencyTerms)
		},
	},
	{
		Name:  "public-audience",
		Level: model.RiskLimited,
		match: func(f facts) bool {
			return is(f.users, UsersB2C)
		},
	},
	{
		Name:  "minimal",
		Level: model.RiskMinimal,
		match: func(f facts) bool {
			return is(f.users, UsersInternal) ||
				(is(f.users, UsersB2B) && !is(f.humanOversight, OversightAutonomous))
		},
	},
}

// DefaultRule applies when no rule in the table matches
const DefaultRule = "default"

// Classify returns the risk level for answers. It is total and pure.
func Classify(answers model.AnswerSet) model.RiskLevel {
	level, _ := Explain(answers)
	return level
}

// Explain returns the risk level and the name of the rule that produced it
func Explain(answers model.AnswerSet) (model.RiskLevel, string) {
	f := deriveFacts(answers)
	for _, r := range rules {
		if r.match(f) {
			return r.Level, r.Name
		}
	}
	return model.RiskLimited, DefaultRule
}

// Rules returns the classification table in evaluation order
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

func is(value, option string) bool {
	return strings.EqualFold(strings.TrimSpace(value), option)
}

func includes(values []string, option string) bool {
	for _, v := range values {
		if is(v, option) {
			return true
		}
	}
	return false
}

func includesAny(values []string, options ...string) bool {
	for _, o := range options {
		if includes(values, o) {
			return true
		}
	}
	return false
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
