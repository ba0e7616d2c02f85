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
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/frametran/internal/baseline"
	"github.com/valpere/frametran/internal/detector"
	"github.com/valpere/frametran/internal/lang"
	"github.com/valpere/frametran/internal/validator"
	"github.com/valpere/frametran/internal/workflow"
)

var (
	inputFile    string
	sourceLang   string
	targetLang   string
	frameRef     string
	outputFormat string
	showMessages bool
	useBaseline  bool
	credentials  string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text between English and Japanese",
	Long: `Translate text between English and Japanese in two model calls:

  1. frame analysis  the model marks which spans of the source fill the
                     frame's roles and answers with JSON
  2. translation     the model translates with that analysis, the frame's
                     target-language notes and its example in view

The frame analysis is printed with the translation. If the model's first
answer is not valid JSON it is shown raw and the translation still runs.

Examples:
  frametran translate "Chuck bought a car from Jerry for $1000." -s English -t Japanese
  frametran translate -i article.txt --source auto --output yaml
  echo "彼は本を買った。" | frametran translate -i - -s ja -t en --baseline`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, err := readText(args, inputFile)
		if err != nil {
			return err
		}

		source := sourceLang
		if source == "auto" {
			det := detector.New()
			detected, ok := det.Detect(text)
			if !ok {
				return fmt.Errorf("could not detect the source language; pass --source English or --source Japanese")
			}
			source = detected.String()
			logger.Info("detected source language",
				zap.String("language", source),
				zap.Float64("confidence", det.Confidence(text, detected)))
		}

		target := targetLang
		if target == "" {
			if src, err := lang.Parse(source); err == nil {
				target = other(src).String()
			}
		}

		in, err := workflow.NewInput(text, source, target)
		if err != nil {
			return err
		}

		engine, err := newEngine(ctx)
		if err != nil {
			return err
		}

		ref := frameRef
		if ref == "" {
			ref = cfg.Frames.Default
		}
		if in.Frame, err = newCatalog(true).Load(ref); err != nil {
			return fmt.Errorf("failed to load frame: %w", err)
		}

		state, err := engine.Execute(ctx, in)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		out := report{
			Result: state.Result(),
			RunID:  state.ID,
			Frame:  state.Frame.Name,
		}
		if showMessages {
			out.Messages = state.Messages
		}

		if valid, err := validator.New().IsValid(out.Translation, out.TargetLanguage); !valid {
			logger.Warn("translation does not look like the target language",
				zap.String("run_id", state.ID), zap.Error(err))
			if err != nil {
				out.Warnings = append(out.Warnings, err.Error())
			}
		}

		if useBaseline {
			creds := credentials
			if creds == "" {
				creds = cfg.Baseline.CredentialsFile
			}
			res, err := newBaseline(creds).Translate(ctx, state.SourceText, state.Source, state.Target)
			if err != nil {
				logger.Warn("baseline translation failed", zap.Error(err))
				out.Warnings = append(out.Warnings, err.Error())
			} else {
				out.Baseline = &res
			}
		}

		return writeReport(cmd.OutOrStdout(), outputFormat, out)
	},
}

// newBaseline builds the comparison translator for --baseline.
var newBaseline = func(credentialsFile string) baseline.Translator {
	return baseline.NewGoogleService(credentialsFile)
}

func other(l lang.Language) lang.Language {
	if l == lang.English {
		return lang.Japanese
	}
	return lang.English
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", `Read the text from a file ("-" for stdin)`)
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "English", `Source language: English, Japanese or "auto"`)
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language (default: the other one)")
	translateCmd.Flags().StringVarP(&frameRef, "frame", "f", "", "Frame name in the frames directory, or a path to a frame JSON file")
	translateCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")
	translateCmd.Flags().BoolVar(&showMessages, "show-messages", false, "Include the full model exchange in the output")
	translateCmd.Flags().BoolVar(&useBaseline, "baseline", false, "Also translate with Google Translate for comparison")
	translateCmd.Flags().StringVarP(&credentials, "credentials", "c", "", "Path to Google Cloud credentials for --baseline")
}
