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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/valpere/frametran/internal/frame"
	"github.com/valpere/frametran/internal/llm"
	"github.com/valpere/frametran/internal/workflow"
)

// newEngine builds the model client from configuration. Missing credentials
// and unknown backends surface here, before any workflow runs.
func newEngine(ctx context.Context) (*workflow.Engine, error) {
	client, err := llm.New(ctx, cfg.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure model: %w", err)
	}
	return workflow.New(client, logger), nil
}

// newCatalog opens the configured frame directory. The CLI may load frame
// files from anywhere; the server may not.
func newCatalog(allowOutside bool) *frame.Catalog {
	return frame.NewCatalog(cfg.Frames.Dir, allowOutside)
}

// readText returns the text to translate: the first argument, the contents
// of inputFile, or stdin when inputFile is "-".
func readText(args []string, inputFile string) (string, error) {
	switch {
	case len(args) > 0 && inputFile != "":
		return "", fmt.Errorf("pass the text as an argument or with --input, not both")
	case len(args) > 0:
		return args[0], nil
	case inputFile == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("no text to translate")
	}
}
