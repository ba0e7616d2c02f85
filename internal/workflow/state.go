package workflow

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/valpere/frametran/internal/analysis"
	"github.com/valpere/frametran/internal/frame"
	"github.com/valpere/frametran/internal/lang"
	"github.com/valpere/frametran/internal/llm"
	"github.com/valpere/frametran/internal/prompt"
)

// Stage names a state of the workflow.
type Stage string

const (
	StageStart     Stage = "start"
	StageAnalyze   Stage = "analyze_frame"
	StageTranslate Stage = "translate"
	StageTerminal  Stage = "terminal"
)

// ErrInvalidInput is returned by NewInput for requests the workflow must not run.
var ErrInvalidInput = errors.New("invalid input")

// ErrStageOrder is returned when a stage function gets a state it cannot follow.
var ErrStageOrder = errors.New("stage out of order")

// Input is a validated translation request.
type Input struct {
	SourceText string
	Source     lang.Language
	Target     lang.Language
	Frame      *frame.Definition
}

// NewInput validates raw request fields the way the HTTP API reports them.
// The frame is attached by the caller.
func NewInput(text, source, target string) (Input, error) {
	if strings.TrimSpace(text) == "" {
		return Input{}, fmt.Errorf("%w: Source text cannot be empty", ErrInvalidInput)
	}
	src, err := lang.Parse(source)
	if err != nil {
		return Input{}, fmt.Errorf("%w: Source language must be English or Japanese", ErrInvalidInput)
	}
	tgt, err := lang.Parse(target)
	if err != nil {
		return Input{}, fmt.Errorf("%w: Target language must be English or Japanese", ErrInvalidInput)
	}
	if src == tgt {
		return Input{}, fmt.Errorf("%w: Source and target languages cannot be the same", ErrInvalidInput)
	}
	return Input{SourceText: text, Source: src, Target: tgt}, nil
}

// RunState is the record threaded through one workflow run. Stage functions
// take it by value and return a new one; Messages is never shared between
// the old and new value, so earlier states stay valid.
type RunState struct {
	ID         string
	Stage      Stage
	Messages   []llm.Message
	Frame      *frame.Definition
	// Input is the source text as the caller gave it; SourceText is its
	// normalized form used in prompts.
	Input      string
	SourceText string
	Source     lang.Language
	Target     lang.Language
	Elements   []frame.ElementDescriptor
	// Analysis is the zero Analysis until AnalyzeFrameElements completes.
	Analysis analysis.Analysis
	// Translation is empty until Translate completes.
	Translation string
}

// NewRunState builds the Start state: source text NFC-normalized and trimmed,
// role descriptors extracted and the system message seeded.
func NewRunState(id string, in Input) (RunState, error) {
	if in.Frame == nil {
		return RunState{}, &StageError{Stage: StageStart, Err: errors.New("no frame definition")}
	}

	elements, err := frame.ExtractElements(in.Frame)
	if err != nil {
		return RunState{}, &StageError{Stage: StageStart, Err: err}
	}

	return RunState{
		ID:         id,
		Stage:      StageStart,
		Messages:   []llm.Message{llm.System(prompt.SystemPrompt(in.Frame))},
		Frame:      in.Frame,
		Input:      in.SourceText,
		SourceText: strings.TrimSpace(norm.NFC.String(in.SourceText)),
		Source:     in.Source,
		Target:     in.Target,
		Elements:   elements,
	}, nil
}

// HasAnalysis reports whether Stage 1 has run.
func (s RunState) HasAnalysis() bool { return !s.Analysis.IsZero() }

// Done reports whether the run reached the terminal state.
func (s RunState) Done() bool { return s.Stage == StageTerminal }

func (s RunState) promptRequest() prompt.Request {
	return prompt.Request{
		Frame:      s.Frame,
		Elements:   s.Elements,
		SourceText: s.SourceText,
		Source:     s.Source,
		Target:     s.Target,
		Analysis:   s.Analysis,
	}
}

// systemMessage returns the seeded system entry.
func (s RunState) systemMessage() llm.Message {
	if len(s.Messages) > 0 {
		return s.Messages[0]
	}
	return llm.System(prompt.SystemPrompt(s.Frame))
}

// withExchange returns a copy of s with a prompt and its reply appended.
func (s RunState) withExchange(sent, received string) RunState {
	msgs := make([]llm.Message, len(s.Messages), len(s.Messages)+2)
	copy(msgs, s.Messages)
	s.Messages = append(msgs, llm.User(sent), llm.Assistant(received))
	return s
}

// Result is what a finished run exposes to its caller.
type Result struct {
	SourceText     string            `json:"source_text" yaml:"source_text"`
	SourceLanguage lang.Language     `json:"source_language" yaml:"source_language"`
	TargetLanguage lang.Language     `json:"target_language" yaml:"target_language"`
	Translation    string            `json:"translation" yaml:"translation"`
	FrameAnalysis  analysis.Analysis `json:"frame_analysis" yaml:"frame_analysis"`
}

// Result extracts the caller-visible result from a terminal state.
func (s RunState) Result() Result {
	return Result{
		SourceText:     s.Input,
		SourceLanguage: s.Source,
		TargetLanguage: s.Target,
		Translation:    s.Translation,
		FrameAnalysis:  s.Analysis,
	}
}

// StageError reports the stage a run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
