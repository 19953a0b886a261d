package sentiment

import (
	"github.com/pemistahl/lingua-go"
)

// LanguageGate reports whether text is in a language the lexicon can score.
type LanguageGate interface {
	Supported(text string) bool
}

// LinguaGate rejects text that is confidently detected as a language other
// than English.
type LinguaGate struct {
	detector      lingua.LanguageDetector
	minConfidence float64
}

// Languages the detector chooses between. Reddit's non-English traffic is
// dominated by these.
var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Polish,
	lingua.Russian,
	lingua.Turkish,
}

func NewLinguaGate(minEnglishConfidence float64) *LinguaGate {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(detectableLanguages...).
		Build()

	return &LinguaGate{
		detector:      detector,
		minConfidence: minEnglishConfidence,
	}
}

func (g *LinguaGate) Supported(text string) bool {
	language, ok := g.detector.DetectLanguageOf(text)
	if !ok || language == lingua.English {
		return true
	}
	return g.detector.ComputeLanguageConfidence(text, lingua.English) >= g.minConfidence
}
