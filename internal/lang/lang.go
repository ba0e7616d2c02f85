// Package lang defines the language pair the translator supports.
package lang

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported source or target language, named the way prompts
// and frame files refer to it.
type Language string

const (
	English  Language = "English"
	Japanese Language = "Japanese"
)

// ErrUnsupported is returned by Parse for anything other than English or Japanese.
var ErrUnsupported = errors.New("unsupported language")

// Parse accepts a language name (case-insensitive) or its ISO 639-1 code.
func Parse(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english", "en":
		return English, nil
	case "japanese", "ja", "jp":
		return Japanese, nil
	}
	return "", fmt.Errorf("%w: %q (must be English or Japanese)", ErrUnsupported, s)
}

// Tag returns the BCP 47 tag for l.
func (l Language) Tag() language.Tag {
	switch l {
	case Japanese:
		return language.Japanese
	default:
		return language.English
	}
}

// Code returns the ISO 639-1 code for l.
func (l Language) Code() string {
	base, _ := l.Tag().Base()
	return base.String()
}

func (l Language) String() string { return string(l) }
