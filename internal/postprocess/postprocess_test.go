package postprocess

import (
	"strings"
	"testing"
)

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"no block", "彼女は車を買った。", "彼女は車を買った。"},
		{"think block", "<think>Buyer is she</think>彼女は車を買った。", "彼女は車を買った。"},
		{"reasoning block upper case", "<REASONING>x</REASONING>Done", "Done"},
		{"two blocks", "<thinking>a</thinking>mid<reflection>b</reflection>", "mid"},
		{"multiline block", "<think>\nline one\nline two\n</think>\nAnswer", "Answer"},
		{"cut off block", "Answer<think>still going", "Answer"},
		{"cut off block only", "<reasoning>never closed", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripReasoning(tt.input); got != tt.expected {
				t.Errorf("stripReasoning(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripLeadIn(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"none", "She bought a car.", "She bought a car."},
		{"here is the translation", "Here is the translation:\n彼女は車を買った。", "彼女は車を買った。"},
		{"here's the japanese translation", "Here's the Japanese translation:\n彼女は車を買った。", "彼女は車を買った。"},
		{"sure here is", "Sure, here is the translation: \nText", "Text"},
		{"crlf after label", "Translation:\r\nShe bought a car.", "She bought a car."},
		{"labelled with language", "Translation (English):\nShe bought a car.", "She bought a car."},
		{"japanese label on own line", "翻訳：\n彼女は車を買った。", "彼女は車を買った。"},
		{"label on same line is content", "Translation: She bought a car.", "Translation: She bought a car."},
		{"japanese label on same line is content", "翻訳：短いガイド。", "翻訳：短いガイド。"},
		{"here is on same line is content", "Here is the translation: Text", "Here is the translation: Text"},
		{"not at start", "She said: Translation:\nx", "She said: Translation:\nx"},
		{"no colon", "Here is the translation of it", "Here is the translation of it"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripLeadIn(tt.input); got != tt.expected {
				t.Errorf("stripLeadIn(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUnwrapFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "text", "text"},
		{"bare fence", "```\n彼女は車を買った。\n```", "彼女は車を買った。"},
		{"fence with info string", "```text\nShe bought a car.\n```", "She bought a car."},
		{"fence with crlf", "```\r\nShe bought a car.\r\n```", "She bought a car."},
		{"fence not covering everything", "Result:\n```\nx\n```", "Result:\n```\nx\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unwrapFence(tt.input); got != tt.expected {
				t.Errorf("unwrapFence(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUnwrapQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single rune", "\"", "\""},
		{"double quotes", "\"She bought a car.\"", "She bought a car."},
		{"single quotes", "'She bought a car.'", "She bought a car."},
		{"curly quotes", "“She bought a car.”", "She bought a car."},
		{"guillemets", "«Bonjour»", "Bonjour"},
		{"corner brackets", "「彼女は車を買った。」", "彼女は車を買った。"},
		{"white corner brackets", "『彼女は車を買った。』", "彼女は車を買った。"},
		{"mismatched pair", "\"Hello'", "\"Hello'"},
		{"two quoted parts", "\"a\" and \"b\"", "\"a\" and \"b\""},
		{"two bracketed parts", "「はい」と「いいえ」", "「はい」と「いいえ」"},
		{"nested brackets", "「彼は『はい』と言った」", "彼は『はい』と言った"},
		{"whitespace inside", "\"  padded  \"", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unwrapQuotes(tt.input); got != tt.expected {
				t.Errorf("unwrapQuotes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"already clean", "彼女は車を買った。", "彼女は車を買った。"},
		{"surrounding whitespace", "\n  彼女は車を買った。  \n", "彼女は車を買った。"},
		{"quoted", "\"彼女は車を買った。\"", "彼女は車を買った。"},
		{"fenced then quoted", "```\n\"彼女は車を買った。\"\n```", "彼女は車を買った。"},
		{"quoted fence", "\"```\n彼女は車を買った。\n```\"", "彼女は車を買った。"},
		{"reasoning lead-in and quotes", "<think>ok</think>\nHere is the translation:\n「彼女は車を買った。」", "彼女は車を買った。"},
		{"json-looking text stays text", `{"translation": "x"}`, `{"translation": "x"}`},
		{"leading label kept", "翻訳：短いガイド。", "翻訳：短いガイド。"},
		{"leading english label kept", "Translation: a short guide.", "Translation: a short guide."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"\"'double wrapped'\"",
		"```\n```\nnested fence\n```\n```",
		"<think>a</think>Translation: \"「x」\"",
		"\"a\" and \"b\"",
		"  Here's the translation: ```text\nShe bought a car.\n```  ",
		strings.Repeat("Translation:\n", 20) + "彼女は車を買った。",
		strings.Repeat("「", 30) + "x" + strings.Repeat("」", 30),
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestClean_DeepNesting(t *testing.T) {
	in := strings.Repeat("Translation:\n「", 20) + "彼女は車を買った。" + strings.Repeat("」", 20)

	if got := Clean(in); got != "彼女は車を買った。" {
		t.Errorf("Clean left wrapping behind: %q", got)
	}
}
