package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/valpere/frametran/internal/frame"
	"github.com/valpere/frametran/internal/lang"
	"github.com/valpere/frametran/internal/llm"
	"github.com/valpere/frametran/internal/workflow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type translatorFunc func(ctx context.Context, in workflow.Input) (workflow.Result, error)

func (f translatorFunc) Run(ctx context.Context, in workflow.Input) (workflow.Result, error) {
	return f(ctx, in)
}

type checkerFunc func(text string, target lang.Language) (bool, error)

func (f checkerFunc) IsValid(text string, target lang.Language) (bool, error) { return f(text, target) }

func testCatalog() *frame.Catalog {
	return frame.NewCatalog(filepath.Join("..", "frame", "testdata"), false)
}

// modelReplies returns an engine whose model answers Stage 1 and Stage 2 in turn.
func modelReplies(analysisReply, translationReply string) *workflow.Engine {
	call := 0
	return workflow.New(llm.ClientFunc(func(ctx context.Context, messages []llm.Message) (string, error) {
		call++
		if call%2 == 1 {
			return analysisReply, nil
		}
		return translationReply, nil
	}), nil)
}

func newTestServer(t *testing.T, tr Translator, logger *zap.Logger) http.Handler {
	t.Helper()
	return New(Options{
		Catalog:        testCatalog(),
		DefaultFrame:   "commerce-buy-frame",
		Translator:     tr,
		RequestTimeout: time.Second,
		Version:        "test",
		Logger:         logger,
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func TestTranslate_Success(t *testing.T) {
	h := newTestServer(t, modelReplies(`{"Buyer": "She", "Goods": "a car"}`, "彼女は車を買った。"), nil)

	rec, resp := do(t, h, http.MethodPost, "/api/translate",
		`{"source_text": "She bought a car.", "source_language": "English", "target_language": "Japanese"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)

	var data struct {
		SourceText     string            `json:"source_text"`
		SourceLanguage string            `json:"source_language"`
		TargetLanguage string            `json:"target_language"`
		Translation    string            `json:"translation"`
		FrameAnalysis  map[string]string `json:"frame_analysis"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "She bought a car.", data.SourceText)
	assert.Equal(t, "English", data.SourceLanguage)
	assert.Equal(t, "Japanese", data.TargetLanguage)
	assert.Equal(t, "彼女は車を買った。", data.Translation)
	assert.Equal(t, map[string]string{"Buyer": "She", "Goods": "a car"}, data.FrameAnalysis)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestTranslate_UnparsedAnalysis(t *testing.T) {
	h := newTestServer(t, modelReplies("Buyer is She & Goods is <a car>", "彼女は車を買った。"), nil)

	rec, resp := do(t, h, http.MethodPost, "/api/translate",
		`{"source_text": "She bought a car.", "source_language": "English", "target_language": "Japanese", "frame_path": "commerce-buy-frame.json"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"raw_response":"Buyer is She & Goods is <a car>"`)
	assert.Contains(t, string(resp.Data), `"error":"unable to parse"`)
}

func TestTranslate_BadRequests(t *testing.T) {
	never := translatorFunc(func(context.Context, workflow.Input) (workflow.Result, error) {
		t.Error("translator must not run for a rejected request")
		return workflow.Result{}, nil
	})
	h := newTestServer(t, never, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"no body", "", "Request data is empty"},
		{"empty object", "{}", "Request data is empty"},
		{"not json", "source_text=hi", "Request data is empty"},
		{"empty text", `{"source_text": "", "source_language": "English", "target_language": "Japanese"}`, "Source text cannot be empty"},
		{"bad source", `{"source_text": "hi", "source_language": "French", "target_language": "Japanese"}`, "Source language must be English or Japanese"},
		{"bad target", `{"source_text": "hi", "source_language": "English", "target_language": "German"}`, "Target language must be English or Japanese"},
		{"same language", `{"source_text": "hi", "source_language": "English", "target_language": "English"}`, "Source and target languages cannot be the same"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(t, h, http.MethodPost, "/api/translate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.want, resp.Message)
		})
	}
}

func TestTranslate_RunFailure(t *testing.T) {
	failing := translatorFunc(func(context.Context, workflow.Input) (workflow.Result, error) {
		return workflow.Result{}, &workflow.StageError{Stage: workflow.StageAnalyze, Err: errors.New("connection refused")}
	})
	h := newTestServer(t, failing, nil)

	rec, resp := do(t, h, http.MethodPost, "/api/translate",
		`{"source_text": "She bought a car.", "source_language": "English", "target_language": "Japanese"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Error during translation: analyze_frame: connection refused", resp.Message)
}

func TestTranslate_UnknownFrame(t *testing.T) {
	h := newTestServer(t, modelReplies("{}", "x"), nil)

	rec, resp := do(t, h, http.MethodPost, "/api/translate",
		`{"source_text": "hi", "source_language": "English", "target_language": "Japanese", "frame_path": "nope.json"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.HasPrefix(resp.Message, "Error during translation: "), resp.Message)
}

func TestTranslate_RequestTimeout(t *testing.T) {
	var deadline time.Time
	tr := translatorFunc(func(ctx context.Context, in workflow.Input) (workflow.Result, error) {
		deadline, _ = ctx.Deadline()
		return workflow.Result{Translation: "x", TargetLanguage: in.Target}, nil
	})
	h := newTestServer(t, tr, nil)

	rec, _ := do(t, h, http.MethodPost, "/api/translate",
		`{"source_text": "hi", "source_language": "English", "target_language": "Japanese"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, deadline.IsZero(), "translation should run under a deadline")
}

func TestTranslate_CheckerWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := New(Options{
		Catalog:      testCatalog(),
		DefaultFrame: "commerce-buy-frame",
		Translator:   modelReplies("{}", "She bought a car."),
		Checker: checkerFunc(func(text string, target lang.Language) (bool, error) {
			return false, errors.New("no Japanese script")
		}),
		Logger: zap.New(core),
	}).Handler()

	rec, _ := do(t, h, http.MethodPost, "/api/translate",
		`{"source_text": "She bought a car.", "source_language": "English", "target_language": "Japanese"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("translation does not look like the target language").Len())
}

func TestFrameInfo(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec, resp := do(t, h, http.MethodGet, "/api/frame-info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info frame.Info
	require.NoError(t, json.Unmarshal(resp.Data, &info))
	assert.Equal(t, "Commerce_buy", info.FrameName)
	assert.Contains(t, info.LexicalUnits, "buy")
	require.NotEmpty(t, info.CoreElements)
	assert.Equal(t, "Buyer", info.CoreElements[0].Name)

	rec, resp = do(t, h, http.MethodGet, "/api/frame-info?path=minimal-frame", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &info))
	assert.Equal(t, "Minimal", info.FrameName)
	assert.Empty(t, info.CoreElements)
}

func TestFrameInfo_LoadFailure(t *testing.T) {
	h := newTestServer(t, nil, nil)

	for _, path := range []string{"missing-frame", "../../../go.mod"} {
		rec, resp := do(t, h, http.MethodGet, "/api/frame-info?path="+path, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "error", resp.Status)
		assert.True(t, strings.HasPrefix(resp.Message, "Unable to load Frame data: "), resp.Message)
	}
}

func TestFrames(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec, resp := do(t, h, http.MethodGet, "/api/frames", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var names []string
	require.NoError(t, json.Unmarshal(resp.Data, &names))
	assert.Equal(t, []string{"broken-element-frame", "commerce-buy-frame", "minimal-frame"}, names)
}

func TestPages(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec, _ := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `href="/frames/commerce-buy-frame"`)

	rec, _ = do(t, h, http.MethodGet, "/frames/commerce-buy-frame", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Commerce_buy</title>")
	assert.Contains(t, rec.Body.String(), "<td>Buyer</td>")

	rec, _ = do(t, h, http.MethodGet, "/frames/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec, _ := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec, _ := do(t, h, http.MethodGet, "/api/translate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEndToEnd(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, modelReplies(`{"Buyer": "彼女"}`, "She bought a car."), nil))
	defer srv.Close()

	client := srv.Client()
	resp, err := client.Post(srv.URL+"/api/translate", "application/json",
		strings.NewReader(`{"source_text": "彼女は車を買った。", "source_language": "Japanese", "target_language": "English"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body.Status)
	assert.Contains(t, string(body.Data), `"translation":"She bought a car."`)
	client.CloseIdleConnections()
}
