// Package postprocess strips the wrapping that chat models put around a
// plain-text answer: reasoning blocks, "Here is the translation:" lead-ins,
// code fences and enclosing quotation marks.
//
// Clean is applied to the Stage-2 answer before it becomes the translation.
// It repeats its passes until the text stops changing, so Clean(Clean(s)) ==
// Clean(s) for every s.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean returns text without model artifacts, trimmed of surrounding whitespace.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	// Every pass that changes the text makes it shorter, so this terminates.
	for {
		next := pass(text)
		if next == text {
			return text
		}
		text = next
	}
}

func pass(text string) string {
	text = stripReasoning(text)
	text = stripLeadIn(text)
	text = unwrapFence(text)
	text = unwrapQuotes(text)
	return strings.TrimSpace(text)
}

// reasoningRe matches a closed reasoning block. RE2 has no backreferences,
// so each tag is spelled out.
var reasoningRe = regexp.MustCompile(
	`(?is)<think>.*?</think>|<thinking>.*?</thinking>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// openReasoningRe matches a reasoning block cut off before its closing tag.
var openReasoningRe = regexp.MustCompile(`(?is)<(?:think|thinking|reasoning|reflection)>.*$`)

func stripReasoning(text string) string {
	text = reasoningRe.ReplaceAllString(text, "")
	text = openReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// leadInRes match introductions a model adds on a line of their own before
// the answer. A label followed by text on the same line is part of the
// translation and is kept.
var leadInRes = []*regexp.Regexp{
	// "Here is / Here's [the] [Japanese|English] translation:"
	regexp.MustCompile(`(?i)^(?:(?:certainly|sure|of course|okay|ok)[,.!]?\s+)?here(?:'s| is)(?: the| your| my)?(?: (?:japanese|english|final|natural))? (?:translation|translated text|result)[ \t]*:[ \t]*\r?\n`),
	// "[The] [Japanese] translation:", "Translation (Japanese):"
	regexp.MustCompile(`(?i)^(?:the )?(?:(?:japanese|english|final) )?(?:translation|translated text)(?:\s*\((?:japanese|english|ja|en)\))?[ \t]*:[ \t]*\r?\n`),
	// "翻訳:" / "翻訳："
	regexp.MustCompile(`^(?:翻訳|訳文)[ \t]*[:：][ \t]*\r?\n`),
}

func stripLeadIn(text string) string {
	for _, re := range leadInRes {
		if loc := re.FindStringIndex(text); loc != nil {
			return strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// fenceRe matches text that is entirely one fenced block, with any info string.
var fenceRe = regexp.MustCompile("(?s)^```[\\w+-]*[ \\t]*\\r?\\n(.*?)\\r?\\n?[ \\t]*```$")

func unwrapFence(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

type quotePair struct{ open, close rune }

var quotePairs = []quotePair{
	{'"', '"'},
	{'\'', '\''},
	{'“', '”'}, // “ ”
	{'‘', '’'}, // ‘ ’
	{'«', '»'},
	{'「', '」'},
	{'『', '』'},
}

// unwrapQuotes removes one pair of quotes enclosing the whole text. The
// pair is only removed when the opening mark is closed by the final rune,
// so `"a" and "b"` is left alone.
func unwrapQuotes(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	for _, p := range quotePairs {
		if runes[0] != p.open || runes[n-1] != p.close {
			continue
		}
		inner := runes[1 : n-1]
		if !enclosesAll(inner, p) {
			return text
		}
		return strings.TrimSpace(string(inner))
	}
	return text
}

func enclosesAll(inner []rune, p quotePair) bool {
	if p.open == p.close {
		for _, r := range inner {
			if r == p.open {
				return false
			}
		}
		return true
	}
	depth := 0
	for _, r := range inner {
		switch r {
		case p.open:
			depth++
		case p.close:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
