package model

// RiskLevel is the EU AI Act tier assigned to a described AI system
type RiskLevel string

const (
	RiskUnacceptable RiskLevel = "UNACCEPTABLE_RISK"
	RiskHigh         RiskLevel = "HIGH_RISK"
	RiskLimited      RiskLevel = "LIMITED_RISK"
	RiskMinimal      RiskLevel = "MINIMAL_RISK"
	RiskOutOfScope   RiskLevel = "OUT_OF_SCOPE"
)

// RiskLevels lists every level from most to least restrictive
var RiskLevels = []RiskLevel{RiskUnacceptable, RiskHigh, RiskLimited, RiskMinimal, RiskOutOfScope}

// Severity returns 0 for the most restrictive level, -1 for unknown values
func (r RiskLevel) Severity() int {
	for i, l := range RiskLevels {
		if l == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is one of the five levels
func (r RiskLevel) Valid() bool {
	return r.Severity() >= 0
}
