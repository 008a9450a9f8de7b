// Package triage derives lightweight clinical context from chat text:
// which symptoms a patient mentioned and which specialists the assistant
// suggested.
package triage

import "strings"

// Vocabulary is an ordered set of lowercase terms.
type Vocabulary []string

// Symptoms is matched against what the patient writes.
var Symptoms = Vocabulary{
	"fever",
	"headache",
	"cough",
	"pain",
	"nausea",
	"vomiting",
	"diarrhea",
	"fatigue",
	"dizziness",
	"chest pain",
	"shortness of breath",
	"rash",
	"sore throat",
	"stomach ache",
	"back pain",
	"joint pain",
	"insomnia",
}

// Specialists is matched against what the assistant replies.
var Specialists = Vocabulary{
	"cardiologist",
	"dermatologist",
	"neurologist",
	"orthopedic",
	"pediatrician",
	"psychiatrist",
	"gastroenterologist",
	"pulmonologist",
	"endocrinologist",
	"ophthalmologist",
	"urologist",
	"gynecologist",
	"general physician",
}

// Match returns every term that occurs as a case-insensitive substring of text,
// in vocabulary order. Multi-word terms only match contiguously.
func (v Vocabulary) Match(text string) []string {
	folded := strings.ToLower(text)
	matches := make([]string, 0)
	for _, term := range v {
		if strings.Contains(folded, term) {
			matches = append(matches, term)
		}
	}
	return matches
}

// Contains reports whether term is part of the vocabulary.
func (v Vocabulary) Contains(term string) bool {
	for _, t := range v {
		if t == term {
			return true
		}
	}
	return false
}

// Extractor turns a chat turn into symptom and specialist terms.
type Extractor interface {
	Symptoms(userMessage string) []string
	Specialists(assistantReply string) []string
}

// KeywordExtractor is the substring-matching Extractor.
type KeywordExtractor struct {
	SymptomTerms    Vocabulary
	SpecialistTerms Vocabulary
}

// NewKeywordExtractor returns an Extractor over the built-in vocabularies.
func NewKeywordExtractor() KeywordExtractor {
	return KeywordExtractor{SymptomTerms: Symptoms, SpecialistTerms: Specialists}
}

func (e KeywordExtractor) Symptoms(userMessage string) []string {
	return e.SymptomTerms.Match(userMessage)
}

func (e KeywordExtractor) Specialists(assistantReply string) []string {
	return e.SpecialistTerms.Match(assistantReply)
}

// ExtractSymptoms matches the built-in symptom vocabulary.
func ExtractSymptoms(text string) []string {
	return Symptoms.Match(text)
}

// ExtractSpecialists matches the built-in specialist vocabulary.
func ExtractSpecialists(text string) []string {
	return Specialists.Match(text)
}
