// Package frame holds the frame-semantic definitions that steer a translation:
// the frame data model, the flattening of its roles into element descriptors,
// and the on-disk catalog of frame files.
//
// A Definition is read-only once loaded. It is shared by reference across the
// stages of one workflow run and may be read concurrently by independent runs.
package frame

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/valpere/frametran/internal/lang"
)

// Definition is a frame file as described by the frame resource format.
type Definition struct {
	ID               string               `json:"frame_id"`
	Name             string               `json:"frame_name"`
	Description      string               `json:"description"`
	LexicalUnits     []LexicalUnit        `json:"lexical_units"`
	Elements         ElementGroups        `json:"frame_elements"`
	ExampleSentences []json.RawMessage    `json:"example_sentences"`
	Variations       map[string]Variation `json:"language_specific_variations"`
	FewShot          FewShot              `json:"few_shot_prompts"`
}

// LexicalUnit is a word that evokes the frame.
type LexicalUnit struct {
	Lemma string `json:"lemma"`
	POS   string `json:"pos,omitempty"`
}

// ElementGroups splits the frame's roles into core and non-core lists.
type ElementGroups struct {
	Core    []Element `json:"core_elements"`
	NonCore []Element `json:"non_core_elements"`
}

// Element is a single role record. Records decoded from JSON remember which
// required keys were absent so ExtractElements can reject them.
type Element struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	missing []string
}

// UnmarshalJSON decodes an element and records missing or null name/description keys.
func (e *Element) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Element{}
	if raw.Name != nil {
		e.Name = *raw.Name
	} else {
		e.missing = append(e.missing, "name")
	}
	if raw.Description != nil {
		e.Description = *raw.Description
	} else {
		e.missing = append(e.missing, "description")
	}
	return nil
}

// Variation carries target-language notes used by the translation prompt.
type Variation struct {
	LexicalUnits     []string          `json:"lexical_units"`
	GrammaticalNotes string            `json:"grammatical_notes"`
	CulturalNotes    string            `json:"cultural_notes"`
	Examples         []json.RawMessage `json:"examples"`
}

// FewShot holds the worked examples embedded in the analysis and translation prompts.
type FewShot struct {
	IdentificationPrompt string          `json:"identification_prompt,omitempty"`
	ExpectedResponse     json.RawMessage `json:"expected_response,omitempty"`
	TranslationPrompt    string          `json:"translation_prompt,omitempty"`
	ExpectedTranslation  Translations    `json:"expected_translation,omitempty"`
}

// HasIdentificationExample reports whether both halves of the analysis example exist.
func (f FewShot) HasIdentificationExample() bool {
	resp := bytes.TrimSpace(f.ExpectedResponse)
	return f.IdentificationPrompt != "" && len(resp) > 0 && !bytes.Equal(resp, []byte("null"))
}

// HasTranslationExample reports whether a worked translation example exists.
func (f FewShot) HasTranslationExample() bool {
	return f.TranslationPrompt != "" && len(f.ExpectedTranslation) > 0
}

// LangText is one entry of an expected_translation object.
type LangText struct {
	Language string
	Text     string
}

// Translations is a language → text object that keeps document order, so the
// rendered example lines are stable between runs.
type Translations []LangText

// UnmarshalJSON reads the object key by key.
func (t *Translations) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected_translation must be an object")
	}

	var out Translations
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		text := string(raw)
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			text = s
		}
		out = append(out, LangText{Language: key, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*t = out
	return nil
}

// MarshalJSON writes the entries back as an object in their original order.
func (t Translations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lt := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(lt.Language)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(lt.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Variation returns the notes for l, or the zero Variation when the frame has none.
func (d *Definition) Variation(l lang.Language) (Variation, bool) {
	v, ok := d.Variations[l.String()]
	return v, ok
}

// Examples returns the frame's example sentences, preferring the
// language-specific examples when the frame provides a non-empty list for l.
func (d *Definition) Examples(l lang.Language) []json.RawMessage {
	if v, ok := d.Variation(l); ok && len(v.Examples) > 0 {
		return v.Examples
	}
	return d.ExampleSentences
}

// Lemmas returns the lemma of every lexical unit in order.
func (d *Definition) Lemmas() []string {
	out := make([]string, 0, len(d.LexicalUnits))
	for _, lu := range d.LexicalUnits {
		out = append(out, lu.Lemma)
	}
	return out
}

// Info is the summary shown by "frames show" and the frame-info endpoint.
type Info struct {
	FrameName       string    `json:"frame_name"`
	Description     string    `json:"description"`
	LexicalUnits    []string  `json:"lexical_units"`
	CoreElements    []Element `json:"core_elements"`
	NonCoreElements []Element `json:"non_core_elements"`
}

// Info summarises d. Unlike ExtractElements it never fails: absent fields
// show up as empty strings.
func (d *Definition) Info() Info {
	info := Info{
		FrameName:       d.Name,
		Description:     d.Description,
		LexicalUnits:    d.Lemmas(),
		CoreElements:    make([]Element, 0, len(d.Elements.Core)),
		NonCoreElements: make([]Element, 0, len(d.Elements.NonCore)),
	}
	for _, el := range d.Elements.Core {
		info.CoreElements = append(info.CoreElements, Element{Name: el.Name, Description: el.Description})
	}
	for _, el := range d.Elements.NonCore {
		info.NonCoreElements = append(info.NonCoreElements, Element{Name: el.Name, Description: el.Description})
	}
	return info
}
