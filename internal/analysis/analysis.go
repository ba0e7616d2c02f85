// Package analysis turns a model's free-form Stage-1 answer into a frame
// analysis. Extraction never fails: text that cannot be read as a JSON object
// by any strategy becomes an Unparsed result carrying the raw response.
package analysis

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// ErrorUnparsable is the error marker rendered for an Unparsed analysis.
const ErrorUnparsable = "unable to parse"

// Kind tags an Analysis.
type Kind int

const (
	// None is the zero Kind: no analysis has been produced yet.
	None Kind = iota
	// KindParsed holds a role → span mapping.
	KindParsed
	// KindUnparsed holds the raw model text that could not be decoded.
	KindUnparsed
)

func (k Kind) String() string {
	switch k {
	case KindParsed:
		return "parsed"
	case KindUnparsed:
		return "unparsed"
	default:
		return "none"
	}
}

// Strategy records which extraction step produced a result.
type Strategy string

const (
	StrategyDirect Strategy = "direct"
	StrategyFenced Strategy = "fenced"
	StrategyNone   Strategy = "none"
)

// Analysis is the tagged Stage-1 result. Values are immutable; Roles returns a copy.
type Analysis struct {
	kind     Kind
	roles    map[string]any
	raw      string
	strategy Strategy
}

// Parsed returns a parsed analysis over roles.
func Parsed(roles map[string]any) Analysis {
	cp := make(map[string]any, len(roles))
	for k, v := range roles {
		cp[k] = v
	}
	return Analysis{kind: KindParsed, roles: cp, strategy: StrategyDirect}
}

// Unparsed returns the error variant carrying raw.
func Unparsed(raw string) Analysis {
	return Analysis{kind: KindUnparsed, raw: raw, strategy: StrategyNone}
}

// Kind reports the variant.
func (a Analysis) Kind() Kind { return a.kind }

// IsParsed reports whether a holds a role mapping.
func (a Analysis) IsParsed() bool { return a.kind == KindParsed }

// IsZero reports whether no analysis has been set.
func (a Analysis) IsZero() bool { return a.kind == None }

// Strategy reports how the analysis was extracted.
func (a Analysis) Strategy() Strategy { return a.strategy }

// Raw returns the unparsed model text. It is empty for parsed results.
func (a Analysis) Raw() string { return a.raw }

// Roles returns a copy of the role mapping, or nil when a is not parsed.
func (a Analysis) Roles() map[string]any {
	if a.kind != KindParsed {
		return nil
	}
	cp := make(map[string]any, len(a.roles))
	for k, v := range a.roles {
		cp[k] = v
	}
	return cp
}

// RoleNames returns the parsed role names, sorted.
func (a Analysis) RoleNames() []string {
	names := make([]string, 0, len(a.roles))
	for k := range a.roles {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// UnknownRoles returns the parsed role names that are not in declared, sorted.
func (a Analysis) UnknownRoles(declared []string) []string {
	known := make(map[string]struct{}, len(declared))
	for _, d := range declared {
		known[d] = struct{}{}
	}
	var out []string
	for _, name := range a.RoleNames() {
		if _, ok := known[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// fencedJSONRe matches the body of a ```json fenced block.
var fencedJSONRe = regexp.MustCompile("(?s)```json[ \\t]*\\r?\\n(.*?)\\r?\\n[ \\t]*```")

// Extract decodes text as a JSON object. It tries the whole text first, then
// every ```json fenced block in order; if neither yields an object the result
// is Unparsed(text).
func Extract(text string) Analysis {
	if roles, ok := decodeObject(text); ok {
		a := Parsed(roles)
		a.strategy = StrategyDirect
		return a
	}

	for _, m := range fencedJSONRe.FindAllStringSubmatch(text, -1) {
		if roles, ok := decodeObject(m[1]); ok {
			a := Parsed(roles)
			a.strategy = StrategyFenced
			return a
		}
	}

	return Unparsed(text)
}

func decodeObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var roles map[string]any
	if err := json.Unmarshal([]byte(s), &roles); err != nil || roles == nil {
		return nil, false
	}
	return roles, true
}

type unparsedView struct {
	Error       string `json:"error" yaml:"error"`
	RawResponse string `json:"raw_response" yaml:"raw_response"`
}

func (a Analysis) view() any {
	switch a.kind {
	case KindParsed:
		return a.roles
	case KindUnparsed:
		return unparsedView{Error: ErrorUnparsable, RawResponse: a.raw}
	default:
		return nil
	}
}

// MarshalJSON renders a parsed analysis as its mapping and an unparsed one as
// {"error": "unable to parse", "raw_response": ...}. json.Marshal escapes
// <, > and & in the result; encode with SetEscapeHTML(false) to keep them.
func (a Analysis) MarshalJSON() ([]byte, error) {
	return encode(a.view(), "")
}

// MarshalYAML mirrors MarshalJSON.
func (a Analysis) MarshalYAML() (any, error) {
	return a.view(), nil
}

// Indent renders the analysis as 2-space indented JSON with non-ASCII text
// and HTML characters left as-is.
func (a Analysis) Indent() string {
	b, err := encode(a.view(), "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
