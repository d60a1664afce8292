package appointments

import "strings"

// conditionToSpecialty maps pre-booking questionnaire conditions to the
// doctor specialty that should handle them. Conditions without a mapping
// ("other") mean every doctor is a candidate.
var conditionToSpecialty = map[string]string{
	"heart":         "Cardiologist",
	"general":       "General Physician",
	"neurological":  "Neurologist",
	"orthopedic":    "Orthopedic Surgeon",
	"skin":          "Dermatologist",
	"pediatric":     "Pediatrician",
	"mental_health": "Psychiatrist",
	"cancer":        "Oncologist",
}

// SpecialtyForCondition returns the recommended specialty for a patient
// condition, or "" to show all doctors.
func SpecialtyForCondition(condition string) string {
	return conditionToSpecialty[strings.ToLower(strings.TrimSpace(condition))]
}
