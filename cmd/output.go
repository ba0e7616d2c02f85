/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/valpere/frametran/internal/baseline"
	"github.com/valpere/frametran/internal/llm"
	"github.com/valpere/frametran/internal/workflow"
)

// report is what "translate" prints.
type report struct {
	workflow.Result `yaml:",inline"`

	RunID    string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Frame    string           `json:"frame,omitempty" yaml:"frame,omitempty"`
	Baseline *baseline.Result `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Messages []llm.Message    `json:"messages,omitempty" yaml:"messages,omitempty"`
	Warnings []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("69")).
			Padding(0, 1)
)

func writeReport(w io.Writer, format string, r report) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case "text", "":
		_, err := io.WriteString(w, renderText(r))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want json, yaml or text)", format)
	}
}

func renderText(r report) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s → %s", r.SourceLanguage, r.TargetLanguage)))
	if r.Frame != "" {
		sb.WriteString(labelStyle.Render("  frame: " + r.Frame))
	}
	sb.WriteString("\n\n")

	sb.WriteString(labelStyle.Render("Source") + "\n")
	sb.WriteString(r.SourceText + "\n\n")

	sb.WriteString(labelStyle.Render("Translation") + "\n")
	sb.WriteString(boxStyle.Render(r.Translation) + "\n\n")

	sb.WriteString(labelStyle.Render("Frame analysis") + "\n")
	sb.WriteString(r.FrameAnalysis.Indent() + "\n")

	if r.Baseline != nil {
		sb.WriteString("\n" + labelStyle.Render(fmt.Sprintf("Baseline (%s, %s)", r.Baseline.Service, r.Baseline.Latency.Round(time.Millisecond))) + "\n")
		sb.WriteString(r.Baseline.Translation + "\n")
	}

	for _, w := range r.Warnings {
		sb.WriteString("\n" + warnStyle.Render("warning: "+w) + "\n")
	}

	if len(r.Messages) > 0 {
		sb.WriteString("\n" + titleStyle.Render("Messages") + "\n")
		for i, m := range r.Messages {
			sb.WriteString(fmt.Sprintf("\n%s\n%s\n", labelStyle.Render(fmt.Sprintf("[%d] %s", i+1, m.Role)), m.Text))
		}
	}
	return sb.String()
}
