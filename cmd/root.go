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
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/frametran/internal/config"
)

var version = "0.1.0"

var (
	cfgFile string
	verbose bool

	v      = config.New()
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "frametran",
	Short: "Frame-semantic English/Japanese translator",
	Long: `A CLI application that translates between English and Japanese in two
model calls: the first identifies which words of the source fill the roles of a
semantic frame (Buyer, Goods, Seller, ...), the second translates with that
analysis and the frame's language notes in view.

Frames are JSON files in the frames directory (--frames-dir).

Use "frametran translate --help" for translation options.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		if err := config.ReadFile(v, cfgFile); err != nil {
			return err
		}
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err = cfg.Log.Build(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./frametran.yaml)")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug logging")

	flags.String("model", "", "Model name, e.g. deepseek-chat, gpt-4o, claude-sonnet-4-5, qwen3:14b")
	flags.String("backend", "", "Model backend: deepseek, openai, openrouter, ollama, anthropic, gemini (inferred from --model if empty)")
	flags.String("base-url", "", "Override the backend API base URL")
	flags.Int("max-attempts", 1, "Total attempts per model call including the first (1 = no retries)")
	flags.String("frames-dir", "", "Directory holding frame JSON files")

	bindFlag(config.KeyModelName, "model")
	bindFlag(config.KeyModelBackend, "backend")
	bindFlag(config.KeyModelBaseURL, "base-url")
	bindFlag(config.KeyModelMaxAttempts, "max-attempts")
	bindFlag(config.KeyFramesDir, "frames-dir")
}

// bindFlag ties a persistent flag to a config key. The flag only wins when
// set explicitly.
func bindFlag(key, name string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}
