// Package detector guesses whether a text is English or Japanese.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/frametran/internal/lang"
)

var toLang = map[lingua.Language]lang.Language{
	lingua.English:  lang.English,
	lingua.Japanese: lang.Japanese,
}

// Detector wraps a lingua detector limited to the supported languages.
// It is safe for concurrent use.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector for English and Japanese.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Japanese).
		Build()

	return &Detector{detector: detector}
}

// Detect returns the language of text, or false when it cannot tell.
func (d *Detector) Detect(text string) (lang.Language, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	detected, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	l, known := toLang[detected]
	return l, known
}

// Confidence returns lingua's confidence, between 0 and 1, that text is in l.
func (d *Detector) Confidence(text string, l lang.Language) float64 {
	target := lingua.English
	if l == lang.Japanese {
		target = lingua.Japanese
	}
	return d.detector.ComputeLanguageConfidence(text, target)
}
