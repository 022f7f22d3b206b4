package risk

import "complykit/internal/model"

// ValueProp is one offering shown with a result
type ValueProp struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Copy is the static explanatory content for a risk level
type Copy struct {
	Level           model.RiskLevel `json:"riskLevel"`
	Emoji           string          `json:"emoji"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	MainMessage     string          `json:"mainMessage"`
	Reasons         []string        `json:"reasons"`
	Impact          string          `json:"impact"`
	ValueProps      []ValueProp     `json:"valueProps"`
	TrustIndicators []string        `json:"trustIndicators"`
}

// AnalysisSteps are the progress labels shown while a summary is generated
var AnalysisSteps = []string{
	"Analyzing system characteristics",
	"Evaluating compliance requirements",
	"Generating personalized insights",
	"Preparing detailed recommendations",
}

var copies = map[model.RiskLevel]Copy{
	model.RiskHigh: {
		Emoji:       "🔴",
		Title:       "High-Risk AI System",
		Description: "Your AI system requires comprehensive compliance measures",
		MainMessage: "We understand the weight of compliance on your shoulders",
		Reasons: []string{
			"Your system operates in a regulated sector (healthcare, finance, or hiring)",
			"It processes sensitive data like biometric information",
			"It makes significant decisions about people's lives",
			"It falls under Article 6 of the EU AI Act",
		},
		Impact: "This classification means you need to implement comprehensive risk management and documentation before deployment.",
		ValueProps: []ValueProp{
			{"Complete Documentation Suite", "All required EU AI Act documents, pre-filled with your system details", "📋"},
			{"Risk Management System", "End-to-end risk assessment and mitigation framework", "🛡️"},
			{"Expert Guidance", "Step-by-step support from AI compliance specialists", "👥"},
			{"Ongoing Updates", "Automatic updates as regulations evolve", "🔄"},
		},
		TrustIndicators: []string{"Used by 1000+ AI companies", "24/7 expert support", "30-day money-back guarantee", "Regular compliance audits"},
	},
	model.RiskLimited: {
		Emoji:       "🟡",
		Title:       "Limited Risk AI System",
		Description: "Your AI system needs transparency measures",
		MainMessage: "Let us handle the transparency requirements",
		Reasons: []string{
			"Your system interacts directly with users",
			"It generates or manipulates content",
			"It requires transparency about AI usage",
			"It falls under Article 52 of the EU AI Act",
		},
		Impact: "This classification means you need to implement specific transparency measures and maintain clear documentation.",
		ValueProps: []ValueProp{
			{"Transparency Package", "Custom transparency notices and user communications", "📢"},
			{"User Guidelines", "Clear documentation for user interaction", "📝"},
			{"Compliance Monitoring", "Regular checks to ensure ongoing compliance", "👀"},
			{"Update Service", "Automatic updates for new requirements", "🔄"},
		},
		TrustIndicators: []string{"Trusted by 800+ companies", "24/7 support", "30-day guarantee", "Regular compliance checks"},
	},
	model.RiskMinimal: {
		Emoji:       "🟢",
		Title:       "Minimal Risk AI System",
		Description: "Your AI system has minimal compliance requirements",
		MainMessage: "Stay ahead of evolving regulations",
		Reasons: []string{
			"Your system doesn't fall under specific EU AI Act categories",
			"It has limited impact on individuals",
			"It operates in a non-regulated domain",
			"It doesn't process sensitive data",
		},
		Impact: "While your current obligations are minimal, staying informed about regulatory changes is important.",
		ValueProps: []ValueProp{
			{"Compliance Monitoring", "Regular checks to maintain your compliant status", "📊"},
			{"Early Warning System", "Get notified of regulatory changes before they impact you", "🔔"},
			{"Documentation Updates", "Automatic updates to your compliance documents", "📝"},
			{"Expert Support", "Access to compliance experts when needed", "👥"},
		},
		TrustIndicators: []string{"Used by 500+ companies", "24/7 support", "30-day guarantee", "Regular updates"},
	},
	model.RiskUnacceptable: {
		Emoji:       "❗",
		Title:       "Unacceptable Risk Detected",
		Description: "Your AI system requires immediate attention",
		MainMessage: "Let's work together to make your system compliant",
		Reasons: []string{
			"Your system may involve prohibited practices like social scoring",
			"It could be used in ways that violate the EU AI Act",
			"It falls under Article 5 of the EU AI Act",
			"It requires immediate modification to ensure compliance",
		},
		Impact: "This classification means your system cannot be deployed in its current form and requires significant modifications.",
		ValueProps: []ValueProp{
			{"System Modification Guide", "Step-by-step guidance to make your system compliant", "🛠️"},
			{"Compliance Strategy", "Custom strategy to meet all requirements", "📈"},
			{"Risk Mitigation", "Comprehensive risk reduction plan", "🎯"},
			{"Ongoing Support", "Continuous monitoring and assistance", "🤝"},
		},
		TrustIndicators: []string{"Expert guidance", "24/7 support", "30-day guarantee", "Regular audits"},
	},
	model.RiskOutOfScope: {
		Emoji:       "✅",
		Title:       "Out of Scope",
		Description: "Your system is not subject to the EU AI Act",
		MainMessage: "Stay prepared for future compliance needs",
		Reasons: []string{
			"Your system doesn't use AI as defined by the regulation",
			"It has no operational link to the European Union",
			"It falls outside the scope of the regulation",
			"It doesn't meet the criteria for any risk level",
		},
		Impact: "While you're currently exempt, expanding to the EU or evolving your system could bring you under regulation.",
		ValueProps: []ValueProp{
			{"Scope Monitoring", "Regular checks to ensure you stay out of scope", "📊"},
			{"Early Warning System", "Get notified if regulations change", "🔔"},
			{"Compliance Readiness", "Preparation for potential future requirements", "📝"},
			{"Expert Support", "Access to compliance experts when needed", "👥"},
		},
		TrustIndicators: []string{"Used by 300+ companies", "24/7 support", "30-day guarantee", "Regular updates"},
	},
}

// CopyFor returns the static copy for level. Unknown levels get the
// LIMITED_RISK copy, matching the classifier's default.
func CopyFor(level model.RiskLevel) Copy {
	c, ok := copies[level]
	if !ok {
		level = model.RiskLimited
		c = copies[level]
	}
	c.Level = level
	return c
}
