package triage

import "medassist-backend/internal/models"

// Accumulate merges freshly extracted terms into current.
// Each field is a set union: existing terms keep their position, new terms are
// appended once. current is not modified. DiagnosisHints is carried over as is.
func Accumulate(current models.SessionContext, symptoms, specialists []string) models.SessionContext {
	current = current.Normalized()
	return models.SessionContext{
		Symptoms:             union(current.Symptoms, symptoms),
		SuggestedSpecialists: union(current.SuggestedSpecialists, specialists),
		DiagnosisHints:       append([]string{}, current.DiagnosisHints...),
	}
}

func union(existing, added []string) []string {
	out := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]struct{}, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, term := range list {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}
