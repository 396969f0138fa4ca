package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/code-review-api/internal/config"
)

var (
	githubToken string
	ollamaHost  string
	modelName   string
	workers     int
)

var rootCmd = &cobra.Command{
	Use:   "review-cli",
	Short: "review-cli reviews GitHub pull requests with a local language model.",
	Long:  `A CLI for the code review API. It runs the same per-file review pipeline as the server without starting it, and reads saved review history.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&githubToken, "github-token", "t", "", "GitHub Token")
	flags.StringVar(&ollamaHost, "ollama-host", "", "Ollama server URL")
	flags.StringVarP(&modelName, "model", "m", "", "Generator model name")
	flags.IntVarP(&workers, "workers", "w", 0, "Number of files reviewed concurrently")

	for key, flag := range map[string]string{
		"GITHUB_TOKEN":         "github-token",
		"OLLAMA_HOST":          "ollama-host",
		"GENERATOR_MODEL_NAME": "model",
		"REVIEW_WORKERS":       "workers",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			slog.Error("Error binding flag", "flag", flag, "error", err)
			os.Exit(1)
		}
	}
}

// initConfig reads in ENV variables with the CR_ prefix.
func initConfig() {
	viper.SetEnvPrefix("CR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig loads the shared configuration and applies command-line
// overrides on top of it.
func loadConfig() (*config.Config, error) {
	// The flag may be the only source of the token.
	if token := viper.GetString("GITHUB_TOKEN"); token != "" {
		if err := os.Setenv("GITHUB_TOKEN", token); err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadCLIConfig()
	if err != nil {
		return nil, err
	}

	if v := viper.GetString("OLLAMA_HOST"); v != "" {
		cfg.AI.OllamaHost = v
	}
	if v := viper.GetString("GENERATOR_MODEL_NAME"); v != "" {
		cfg.AI.GeneratorModel = v
	}
	if v := viper.GetInt("REVIEW_WORKERS"); v > 0 {
		cfg.Review.Workers = v
	}
	return cfg, nil
}
