package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/valpere/frametran/internal/analysis"
	"github.com/valpere/frametran/internal/baseline"
	"github.com/valpere/frametran/internal/lang"
	"github.com/valpere/frametran/internal/llm"
	"github.com/valpere/frametran/internal/workflow"
)

func sampleReport() report {
	return report{
		Result: workflow.Result{
			SourceText:     "Chuck bought a car from Jerry for $1000.",
			SourceLanguage: lang.English,
			TargetLanguage: lang.Japanese,
			Translation:    "チャックはジェリーから車を1000ドルで買った。",
			FrameAnalysis:  analysis.Parsed(map[string]any{"Buyer": "Chuck", "Goods": "a car"}),
		},
		RunID: "run-1",
		Frame: "Commerce_buy",
	}
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, "json", sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "チャックはジェリーから車を1000ドルで買った。", got["translation"])
	assert.Equal(t, "English", got["source_language"])
	assert.Equal(t, map[string]any{"Buyer": "Chuck", "Goods": "a car"}, got["frame_analysis"])
	assert.Equal(t, "run-1", got["run_id"])
	assert.NotContains(t, got, "baseline")
	assert.NotContains(t, got, "messages")
	assert.Contains(t, buf.String(), "$1000", "text must not be HTML-escaped")
}

func TestWriteReport_YAML(t *testing.T) {
	r := sampleReport()
	r.FrameAnalysis = analysis.Unparsed("not json")
	r.Messages = []llm.Message{llm.System("sys"), llm.User("prompt")}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, "yaml", r))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Japanese", got["target_language"])
	assert.Equal(t, map[string]any{"error": "unable to parse", "raw_response": "not json"}, got["frame_analysis"])

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestWriteReport_Text(t *testing.T) {
	r := sampleReport()
	r.Baseline = &baseline.Result{Service: "google", Translation: "チャックはジェリーから車を買った。", Latency: 120 * time.Millisecond}
	r.Warnings = []string{"looks odd"}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, "text", r))

	out := buf.String()
	for _, want := range []string{
		"Chuck bought a car from Jerry for $1000.",
		"チャックはジェリーから車を1000ドルで買った。",
		`"Buyer": "Chuck"`,
		"Baseline (google, 120ms)",
		"warning: looks odd",
	} {
		assert.True(t, strings.Contains(out, want), "text output missing %q:\n%s", want, out)
	}
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	err := writeReport(&bytes.Buffer{}, "xml", sampleReport())
	assert.Error(t, err)
}

func TestReadText(t *testing.T) {
	got, err := readText([]string{"hello"}, "")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = readText([]string{"hello"}, "file.txt")
	assert.Error(t, err)

	_, err = readText(nil, "")
	assert.Error(t, err)
}

func TestOther(t *testing.T) {
	assert.Equal(t, lang.Japanese, other(lang.English))
	assert.Equal(t, lang.English, other(lang.Japanese))
}

func TestNewBaseline(t *testing.T) {
	assert.IsType(t, &baseline.GoogleService{}, newBaseline(""))
}
