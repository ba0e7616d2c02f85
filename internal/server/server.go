// Package server exposes the translation workflow and the frame catalog over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/frametran/internal/frame"
	"github.com/valpere/frametran/internal/lang"
	"github.com/valpere/frametran/internal/markdown"
	"github.com/valpere/frametran/internal/workflow"
)

const maxBodyBytes = 1 << 20

// Translator runs one translation. *workflow.Engine implements it.
type Translator interface {
	Run(ctx context.Context, in workflow.Input) (workflow.Result, error)
}

// TargetChecker reports whether a translation is written in the target
// language. *validator.Validator implements it.
type TargetChecker interface {
	IsValid(text string, target lang.Language) (bool, error)
}

// Options configures a Server.
type Options struct {
	Catalog      *frame.Catalog
	DefaultFrame string
	Translator   Translator
	// Checker is optional; a failed check is logged, never returned.
	Checker TargetChecker
	// RequestTimeout bounds each translation; zero means no limit.
	RequestTimeout time.Duration
	Version        string
	Logger         *zap.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	catalog        *frame.Catalog
	defaultFrame   string
	translator     Translator
	checker        TargetChecker
	requestTimeout time.Duration
	version        string
	logger         *zap.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		catalog:        opts.Catalog,
		defaultFrame:   opts.DefaultFrame,
		translator:     opts.Translator,
		checker:        opts.Checker,
		requestTimeout: opts.RequestTimeout,
		version:        opts.Version,
		logger:         logger,
	}
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /frames/{name}", s.handleFramePage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/frames", s.handleFrames)
	mux.HandleFunc("GET /api/frame-info", s.handleFrameInfo)
	mux.HandleFunc("POST /api/translate", s.handleTranslate)

	return Chain(Recovery(s.logger), RequestID, Logger(s.logger))(mux)
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	names, err := s.catalog.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Unable to list frames: %v", err))
		return
	}
	writeSuccess(w, names)
}

func (s *Server) handleFrameInfo(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("path")
	if ref == "" {
		ref = s.defaultFrame
	}

	def, err := s.catalog.Load(ref)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Unable to load Frame data: %v", err))
		return
	}
	writeSuccess(w, def.Info())
}

type translateRequest struct {
	SourceText     string `json:"source_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	FramePath      string `json:"frame_path"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTranslateRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Request data is empty")
		return
	}

	in, err := workflow.NewInput(req.SourceText, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		writeError(w, http.StatusBadRequest, inputMessage(err))
		return
	}

	ref := req.FramePath
	if ref == "" {
		ref = s.defaultFrame
	}
	if in.Frame, err = s.catalog.Load(ref); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error during translation: %v", err))
		return
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	result, err := s.translator.Run(ctx, in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error during translation: %v", err))
		return
	}

	if s.checker != nil {
		if valid, err := s.checker.IsValid(result.Translation, result.TargetLanguage); !valid {
			s.logger.Warn("translation does not look like the target language",
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.String("target_language", result.TargetLanguage.String()),
				zap.Error(err),
			)
		}
	}

	writeSuccess(w, result)
}

// decodeTranslateRequest reads the body. A missing, malformed or empty JSON
// object is reported as empty request data.
func decodeTranslateRequest(r *http.Request) (translateRequest, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return translateRequest{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return translateRequest{}, false
	}

	var req translateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return translateRequest{}, false
	}
	return req, true
}

func inputMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, workflow.ErrInvalidInput) {
		msg = strings.TrimPrefix(msg, workflow.ErrInvalidInput.Error()+": ")
	}
	return msg
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.catalog.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, "FrameTran", markdown.Index(names))
}

func (s *Server) handleFramePage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if strings.ContainsAny(name, `/\`) {
		http.NotFound(w, r)
		return
	}

	def, err := s.catalog.Load(name)
	if errors.Is(err, frame.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, def.Name, markdown.Frame(def))
}

func (s *Server) writePage(w http.ResponseWriter, title, md string) {
	page, err := markdown.Page(title, md)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page) //nolint:errcheck
}

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   s.version,
		Timestamp: time.Now(),
	})
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: "error", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v) //nolint:errcheck
}
