// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-assistant CLI. The serve
// command runs the web UI; sections, summarize, and review run the same
// pipeline against local PDF files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the research-assistant CLI.
var rootCmd = &cobra.Command{
	Use:   "research-assistant",
	Short: "Summarize research papers and draft literature reviews",
	Long: `research-assistant splits a research paper into its standard sections,
summarizes each one with a language model, and answers a research question
against the summaries. It can also summarize up to five papers and synthesize
a cited literature review.

Run "research-assistant serve" for the web UI, or use the sections,
summarize, and review commands on local files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-assistant.yaml or ~/.config/research-assistant/research-assistant.yaml)")
	pf.String("provider", "", "model provider: openai or anthropic")
	pf.String("model", "", "model identifier (default gpt-4)")
	pf.String("section-mode", "", "heading detection: keywords, capitalization, or auto")
	pf.String("extractor", "", "PDF text extractor: native or markitdown")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	bindFlag("ai.provider", "provider")
	bindFlag("ai.model", "model")
	bindFlag("sections.mode", "section-mode")
	bindFlag("extraction.backend", "extractor")
	bindFlag("log.level", "log-level")

	setDefaults(viper.GetViper(), types.Defaults())
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-assistant")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-assistant"))
		}
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindEnv maps keys to RESEARCH_ASSISTANT_ variables, so ai.model is read
// from RESEARCH_ASSISTANT_AI_MODEL.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("RESEARCH_ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults registers every configuration key so environment variables
// can override keys that appear in no config file.
func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("ai.provider", string(d.AI.Provider))
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.base_url", d.AI.BaseURL)
	v.SetDefault("ai.max_retries", d.AI.MaxRetries)
	v.SetDefault("ai.timeout", d.AI.Timeout)

	v.SetDefault("extraction.backend", string(d.Extraction.Backend))
	v.SetDefault("extraction.max_upload_bytes", d.Extraction.MaxUploadBytes)

	v.SetDefault("sections.mode", d.Sections.Mode)
	v.SetDefault("sections.max_section_chars", d.Sections.MaxSectionChars)

	v.SetDefault("review.timeout", d.Review.Timeout)
	v.SetDefault("review.user_agent", d.Review.UserAgent)
	v.SetDefault("review.max_document_chars", d.Review.MaxDocumentChars)
	v.SetDefault("review.openalex_lookup", d.Review.OpenAlexLookup)
	v.SetDefault("review.openalex_email", d.Review.OpenAlexEmail)

	v.SetDefault("session.backend", string(d.Session.Backend))
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.cleanup_interval", d.Session.CleanupInterval)
	v.SetDefault("session.redis_url", d.Session.RedisURL)
	v.SetDefault("session.cookie_name", d.Session.CookieName)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.env", d.Server.Env)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.development", d.Log.Development)
}

// loadConfig decodes v into a Config and fills API credentials from the
// secrets directory or the environment when the config leaves them empty.
func loadConfig(v *viper.Viper, loaded map[string]string) (types.Config, error) {
	cfg := types.Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.AI.APIKey == "" {
		key := secrets.OpenAIKey
		if cfg.AI.Provider == types.ProviderAnthropic {
			key = secrets.AnthropicKey
		}
		cfg.AI.APIKey = secrets.Resolve(loaded, key)
	}
	if cfg.Review.OpenAlexEmail == "" {
		cfg.Review.OpenAlexEmail = secrets.Resolve(loaded, secrets.OpenAlexEmail)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
