// Package runtimeinit bootstraps the shared runtime: configuration,
// logging, the vision model, and capture devices. Both the resident
// process and the standalone one-shot path go through it.
package runtimeinit

import (
	"fmt"
	"log"

	"screen-problem-llm/src/clipboard"
	"screen-problem-llm/src/config"
	"screen-problem-llm/src/llm"
	"screen-problem-llm/src/notification"
	"screen-problem-llm/src/screenshot"
)

type Options struct {
	LoadOptions          config.LoadOptions
	SetupLogging         func(bool)
	ShowBlockingLLMError bool
}

// Bootstrap loads configuration, validates the vision model with a ping,
// and initializes capture devices. The clipboard is claimed only when
// the configuration asks for result copying.
func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required. Checked key file %s and GEMINI_API_KEY env var", cfg.APIKeyPath)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("MODEL is required. Please set it in your .env file")
	}

	llm.Init(&llm.Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})
	if err := llm.Ping(); err != nil {
		if opts.ShowBlockingLLMError {
			notification.ShowBlockingError("Vision model unavailable", fmt.Sprintf("Startup check failed: %v\n\nPlease verify your API key and network connectivity.", err))
		}
		return nil, fmt.Errorf("startup check failed: %w", err)
	}
	log.Printf("Vision model ping succeeded")

	screenshot.Init()
	if cfg.CopyResult {
		if err := clipboard.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}

	return cfg, nil
}
