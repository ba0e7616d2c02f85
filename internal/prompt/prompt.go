// Package prompt renders the three prompts of a frame-guided translation: the
// system prompt, the Stage-1 analysis prompt and the Stage-2 translation
// prompt.
//
// Rendering is deterministic and never fails. Optional frame data that is
// absent shows up as an explicit placeholder, so every prompt keeps the same
// sections whatever the frame provides.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valpere/frametran/internal/analysis"
	"github.com/valpere/frametran/internal/frame"
	"github.com/valpere/frametran/internal/lang"
)

// NoInfo stands in for missing target-language notes.
const NoInfo = "No specific information"

// Request carries everything the analysis and translation prompts embed.
type Request struct {
	Frame      *frame.Definition
	Elements   []frame.ElementDescriptor
	SourceText string
	Source     lang.Language
	Target     lang.Language
	// Analysis is the Stage-1 result; only the translation prompt reads it.
	Analysis analysis.Analysis
}

// SystemPrompt states the assistant's role for def.
func SystemPrompt(def *frame.Definition) string {
	var name, desc string
	if def != nil {
		name, desc = def.Name, def.Description
	}

	var sb strings.Builder
	sb.WriteString("You are a professional translation assistant based on Frame semantic understanding.\n")
	sb.WriteString("Your task is to perform high-quality translations between Japanese and English while maintaining consistency in the Frame semantic structure.\n\n")
	sb.WriteString("You will work with the following Frame:\n")
	sb.WriteString(fmt.Sprintf("- Frame name: %s\n", name))
	sb.WriteString(fmt.Sprintf("- Frame description: %s\n\n", desc))
	sb.WriteString("During the translation process, you need to:\n")
	sb.WriteString("1. Identify Frame elements in the source text\n")
	sb.WriteString("2. Ensure the same Frame elements are preserved in the translated text\n")
	sb.WriteString("3. Consider the grammar and cultural aspects of the target language\n")
	sb.WriteString("4. Provide clear and natural translations\n\n")
	sb.WriteString("Remember, your goal is to create a translation that is both accurate and natural, while maintaining the Frame semantic structure of the original text.\n")
	return sb.String()
}

// AnalysisPrompt asks the model to map frame roles to spans of the source text.
func AnalysisPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Please analyze the following %s text and identify the Frame elements.\n\n", req.Source))
	sb.WriteString(fmt.Sprintf("Text: %s\n\n", req.SourceText))
	sb.WriteString("Frame elements:\n")
	sb.WriteString(ElementList(req.Elements))
	sb.WriteString("\n\n")

	if req.Frame != nil && req.Frame.FewShot.HasIdentificationExample() {
		fs := req.Frame.FewShot
		sb.WriteString("Example:\n")
		sb.WriteString(fmt.Sprintf("Question: %s\n", fs.IdentificationPrompt))
		sb.WriteString(fmt.Sprintf("Answer: %s\n", indentJSON(fs.ExpectedResponse)))
	}

	sb.WriteString("\nPlease return the analysis results in JSON format, including each identified Frame element and its corresponding part in the text.\n")
	sb.WriteString("Return only JSON, without any additional explanation.\n")
	return sb.String()
}

// TranslationPrompt asks for a plain-text translation that keeps the roles
// found by Stage 1.
func TranslationPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Please translate the following %s text to %s, while maintaining consistency of Frame elements.\n\n", req.Source, req.Target))
	sb.WriteString(fmt.Sprintf("Source text: %s\n\n", req.SourceText))
	sb.WriteString("Frame analysis results:\n")
	sb.WriteString(req.Analysis.Indent())
	sb.WriteString("\n\n")

	sb.WriteString(LanguageNotes(req.Frame, req.Target))
	sb.WriteString("\n")

	if ex := TranslationExample(req.Frame); ex != "" {
		sb.WriteString(ex)
		sb.WriteString("\n")
	}

	sb.WriteString("Please provide an accurate and natural translation, ensuring all Frame elements from the original text are preserved. Also, follow the grammar and cultural conventions of the target language.\n\n")
	sb.WriteString("IMPORTANT: Return ONLY the translation result as plain text, without any JSON formatting, without any additional explanation, and without annotations or markup.\n")
	return sb.String()
}

// ElementList renders one "- name: description (type element)" line per role.
func ElementList(elements []frame.ElementDescriptor) string {
	lines := make([]string, 0, len(elements))
	for _, el := range elements {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s element)", el.Name, el.Description, el.Type))
	}
	return strings.Join(lines, "\n")
}

// LanguageNotes renders the target-language block. Each line falls back to
// NoInfo, including when the frame has no variation for target at all.
func LanguageNotes(def *frame.Definition, target lang.Language) string {
	var v frame.Variation
	if def != nil {
		v, _ = def.Variation(target)
	}

	units := NoInfo
	if len(v.LexicalUnits) > 0 {
		units = strings.Join(v.LexicalUnits, ", ")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target language (%s) specific information:\n", target))
	sb.WriteString(fmt.Sprintf("- Lexical units: %s\n", units))
	sb.WriteString(fmt.Sprintf("- Grammatical notes: %s\n", orNoInfo(v.GrammaticalNotes)))
	sb.WriteString(fmt.Sprintf("- Cultural notes: %s\n", orNoInfo(v.CulturalNotes)))
	return sb.String()
}

// TranslationExample renders the frame's worked translation with one
// "language: text" line per language, or "" when the frame has none.
func TranslationExample(def *frame.Definition) string {
	if def == nil || !def.FewShot.HasTranslationExample() {
		return ""
	}
	fs := def.FewShot

	var sb strings.Builder
	sb.WriteString("Translation example:\n")
	sb.WriteString(fmt.Sprintf("Original: %s\n", fs.TranslationPrompt))
	sb.WriteString("Translation examples:\n")
	for _, lt := range fs.ExpectedTranslation {
		sb.WriteString(fmt.Sprintf("%s: %s\n", lt.Language, lt.Text))
	}
	return sb.String()
}

func orNoInfo(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoInfo
	}
	return s
}

// indentJSON re-indents raw with two spaces, keeping key order and text as written.
func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
