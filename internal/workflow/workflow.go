// Package workflow runs a frame-guided translation as a fixed two-stage
// sequence: Start → AnalyzeFrameElements → Translate → Terminal.
//
// Stages are plain functions from RunState to RunState. There is no
// branching: an unparsable Stage-1 answer is carried forward as an Unparsed
// analysis, and any model failure ends the run with a StageError.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valpere/frametran/internal/analysis"
	"github.com/valpere/frametran/internal/frame"
	"github.com/valpere/frametran/internal/llm"
	"github.com/valpere/frametran/internal/postprocess"
	"github.com/valpere/frametran/internal/prompt"
)

// Engine runs workflows against one model client. It holds no per-run
// state and is safe for concurrent use.
type Engine struct {
	client llm.Client
	logger *zap.Logger
}

// New returns an Engine. A nil logger discards logs.
func New(client llm.Client, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{client: client, logger: logger}
}

// Run executes a complete translation and returns its result.
func (e *Engine) Run(ctx context.Context, in Input) (Result, error) {
	state, err := e.Execute(ctx, in)
	if err != nil {
		return Result{}, err
	}
	return state.Result(), nil
}

// Execute runs every stage and returns the terminal state, including the
// full message exchange.
func (e *Engine) Execute(ctx context.Context, in Input) (RunState, error) {
	start := time.Now()

	state, err := NewRunState(uuid.NewString(), in)
	if err != nil {
		e.logger.Error("workflow start failed", zap.Error(err))
		return RunState{}, err
	}
	log := e.logger.With(zap.String("run_id", state.ID))
	log.Info("workflow started",
		zap.String("frame", state.Frame.Name),
		zap.String("source_language", state.Source.String()),
		zap.String("target_language", state.Target.String()),
		zap.Int("elements", len(state.Elements)),
	)

	for _, step := range []func(context.Context, RunState) (RunState, error){
		e.AnalyzeFrameElements,
		e.Translate,
	} {
		if state, err = step(ctx, state); err != nil {
			log.Error("workflow failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
			return RunState{}, err
		}
	}

	log.Info("workflow finished",
		zap.Duration("duration", time.Since(start)),
		zap.Int("messages", len(state.Messages)),
	)
	return state, nil
}

// AnalyzeFrameElements runs Stage 1 on a Start state: it asks the model which
// spans of the source text fill the frame's roles and records the extracted
// analysis.
func (e *Engine) AnalyzeFrameElements(ctx context.Context, s RunState) (RunState, error) {
	if s.Stage != StageStart {
		return s, &StageError{Stage: StageAnalyze, Err: fmt.Errorf("%w: got %s", ErrStageOrder, s.Stage)}
	}
	log := e.logger.With(zap.String("run_id", s.ID), zap.String("stage", string(StageAnalyze)))
	start := time.Now()

	text := prompt.AnalysisPrompt(s.promptRequest())
	reply, err := e.client.Invoke(ctx, []llm.Message{s.systemMessage(), llm.User(text)})
	if err != nil {
		return s, &StageError{Stage: StageAnalyze, Err: err}
	}

	result := analysis.Extract(reply)
	next := s.withExchange(text, reply)
	next.Analysis = result
	next.Stage = StageAnalyze

	if !result.IsParsed() {
		log.Warn("frame analysis is not valid JSON, continuing with raw response",
			zap.Int("response_length", len(reply)))
	} else if unknown := result.UnknownRoles(frame.Names(s.Elements)); len(unknown) > 0 {
		log.Warn("frame analysis names undeclared roles", zap.Strings("roles", unknown))
	}
	log.Info("stage complete",
		zap.Duration("duration", time.Since(start)),
		zap.Bool("analysis_parsed", result.IsParsed()),
		zap.String("strategy", string(result.Strategy())),
	)
	return next, nil
}

// Translate runs Stage 2 on a state that has been through
// AnalyzeFrameElements. The reply is cleaned as plain text and never parsed.
func (e *Engine) Translate(ctx context.Context, s RunState) (RunState, error) {
	if s.Stage != StageAnalyze || !s.HasAnalysis() {
		return s, &StageError{Stage: StageTranslate, Err: fmt.Errorf("%w: got %s", ErrStageOrder, s.Stage)}
	}
	log := e.logger.With(zap.String("run_id", s.ID), zap.String("stage", string(StageTranslate)))
	start := time.Now()

	text := prompt.TranslationPrompt(s.promptRequest())
	reply, err := e.client.Invoke(ctx, []llm.Message{s.systemMessage(), llm.User(text)})
	if err != nil {
		return s, &StageError{Stage: StageTranslate, Err: err}
	}

	next := s.withExchange(text, reply)
	next.Translation = postprocess.Clean(reply)
	next.Stage = StageTerminal

	if next.Translation == "" {
		log.Warn("translation is empty after cleanup", zap.Int("response_length", len(reply)))
	}
	log.Info("stage complete",
		zap.Duration("duration", time.Since(start)),
		zap.Int("translation_length", len([]rune(next.Translation))),
	)
	return next, nil
}
