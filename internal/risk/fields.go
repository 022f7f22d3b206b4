package risk

// Question IDs the rules read
const (
	FieldUsesAI         = "uses_ai"
	FieldEUReach        = "eu_reach"
	FieldPurpose        = "purpose"
	FieldUseAreas       = "use_areas"
	FieldDataTypes      = "data_types"
	FieldHumanOversight = "human_oversight"
	FieldUsers          = "users"
	FieldAIInteraction  = "ai_interaction"
	FieldCompanyName    = "company_name"
)

const (
	answerYes = "Yes"
	answerNo  = "No"
)

// Use areas
const (
	AreaHiring         = "Hiring & Employee Management"
	AreaInfrastructure = "Critical Infrastructure"
	AreaEducation      = "Education"
	AreaCredit         = "Access to Services or Credit"
	AreaLawEnforcement = "Law Enforcement & Justice"
	AreaMigration      = "Migration & Border Control"
	AreaBiometricID    = "Biometric Identification"
)

// Data types
const (
	DataBiometric = "Facial images or biometric data"
	DataEmotion   = "Emotional state recognition"
	DataProfiling = "Profiling or scoring individuals"
	DataVoice     = "Voice patterns"
)

// Audiences
const (
	UsersInternal = "Our internal team only"
	UsersB2B      = "Business customers (B2B)"
	UsersB2C      = "The general public (B2C)"
)

// Oversight levels
const (
	OversightAlways     = "Yes, always"
	OversightAutonomous = "No, it's fully autonomous"
)

var (
	socialScoringTerms = []string{"social score", "social credit", "citizen score", "trustworthiness score"}
	transparencyTerms  = []string{"avatar", "generate video", "voice cloning", "deepfake", "chatbot", "virtual assistant"}
)
