// Package validator checks that a finished translation is written in the
// target language. It only reports; callers decide what to do with a miss.
package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/valpere/frametran/internal/detector"
	"github.com/valpere/frametran/internal/lang"
)

// minDetectionLength is the rune count below which lingua is not consulted
// for English targets.
const minDetectionLength = 20

// ErrEmpty is returned for a blank translation.
var ErrEmpty = errors.New("translation is empty")

// Validator checks translations. The detector is costly to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// IsValid reports whether text looks like target.
//
// A Japanese target needs at least one kana or kanji rune. An English target
// must contain no Japanese script; from minDetectionLength runes on, lingua
// must also agree that it is English.
func (v *Validator) IsValid(text string, target lang.Language) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, ErrEmpty
	}

	switch target {
	case lang.Japanese:
		if !HasJapaneseScript(text) {
			return false, fmt.Errorf("expected Japanese but found no kana or kanji")
		}
		return true, nil

	case lang.English:
		if HasJapaneseScript(text) {
			return false, fmt.Errorf("expected English but found Japanese script")
		}
		if len([]rune(text)) < minDetectionLength {
			return true, nil
		}
		if detected, ok := v.det.Detect(text); ok && detected != lang.English {
			return false, fmt.Errorf("expected English but detected %s", detected)
		}
		return true, nil
	}

	return true, nil
}

// HasJapaneseScript reports whether s contains hiragana, katakana or han runes.
func HasJapaneseScript(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}
