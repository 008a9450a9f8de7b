package triage_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist-backend/internal/models"
	"medassist-backend/internal/triage"
)

func TestExtractSymptoms(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"fever and headache", "I have a fever and headache", []string{"fever", "headache"}},
		{"no reordering of multi-word terms", "pain in my chest", []string{"pain"}},
		{"contiguous multi-word term", "Sharp CHEST PAIN since morning", []string{"pain", "chest pain"}},
		{"case insensitive", "FATIGUE and Dizziness", []string{"fatigue", "dizziness"}},
		{"empty input", "", []string{}},
		{"no match", "I feel great today", []string{}},
		{"vocabulary order", "insomnia then a cough", []string{"cough", "insomnia"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triage.ExtractSymptoms(tt.message)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSymptomsReportsRepeatedTermOnce(t *testing.T) {
	got := triage.ExtractSymptoms(strings.Repeat("cough ", 10))
	assert.Equal(t, []string{"cough"}, got)
}

func TestExtractSpecialists(t *testing.T) {
	got := triage.ExtractSpecialists("You should see a cardiologist or a general physician")
	assert.ElementsMatch(t, []string{"cardiologist", "general physician"}, got)

	assert.Empty(t, triage.ExtractSpecialists("Drink water and rest."))
	assert.Equal(t, []string{"dermatologist"}, triage.ExtractSpecialists("A Dermatologist, yes, a dermatologist."))
}

func TestExtractedTermsStayInVocabulary(t *testing.T) {
	text := "fever cough rash back pain joint pain sore throat with a neurologist and an urologist"
	for _, term := range triage.ExtractSymptoms(text) {
		assert.True(t, triage.Symptoms.Contains(term), term)
	}
	for _, term := range triage.ExtractSpecialists(text) {
		assert.True(t, triage.Specialists.Contains(term), term)
	}
}

func TestKeywordExtractorUsesCustomVocabulary(t *testing.T) {
	e := triage.KeywordExtractor{
		SymptomTerms:    triage.Vocabulary{"itch"},
		SpecialistTerms: triage.Vocabulary{"allergist"},
	}
	assert.Equal(t, []string{"itch"}, e.Symptoms("it itches"))
	assert.Equal(t, []string{"allergist"}, e.Specialists("see an Allergist"))
}

func TestAccumulate(t *testing.T) {
	current := models.SessionContext{
		Symptoms:             []string{"fever"},
		SuggestedSpecialists: []string{"general physician"},
	}

	got := triage.Accumulate(current, []string{"fever", "cough"}, []string{"pulmonologist"})

	assert.Equal(t, []string{"fever", "cough"}, got.Symptoms)
	assert.Equal(t, []string{"general physician", "pulmonologist"}, got.SuggestedSpecialists)
	assert.Equal(t, []string{}, got.DiagnosisHints)
	assert.Equal(t, []string{"fever"}, current.Symptoms, "input must not be mutated")
}

func TestAccumulateIsIdempotent(t *testing.T) {
	symptoms := []string{"headache", "nausea"}
	specialists := []string{"neurologist"}

	once := triage.Accumulate(models.EmptySessionContext(), symptoms, specialists)
	twice := triage.Accumulate(once, symptoms, specialists)

	assert.Equal(t, once, twice)
}

func TestAccumulateIsMonotonic(t *testing.T) {
	ctx := models.EmptySessionContext()
	turns := []string{"I have a fever", "now a cough too", "just tired", "fever again"}

	for _, msg := range turns {
		before := len(ctx.Symptoms)
		ctx = triage.Accumulate(ctx, triage.ExtractSymptoms(msg), nil)
		require.GreaterOrEqual(t, len(ctx.Symptoms), before)
	}
	assert.Equal(t, []string{"fever", "cough"}, ctx.Symptoms)
}

func TestAccumulateFromZeroValue(t *testing.T) {
	got := triage.Accumulate(models.SessionContext{}, nil, nil)
	assert.NotNil(t, got.Symptoms)
	assert.NotNil(t, got.SuggestedSpecialists)
	assert.NotNil(t, got.DiagnosisHints)
}
