package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"screen-problem-llm/src/config"
	"screen-problem-llm/src/llm"
	"screen-problem-llm/src/prompt"
)

const (
	version = "0.1.0"

	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	priorPath  string
	jsonOutput bool
	verbose    bool
	apiKeyPath string
}

func main() {
	os.Args = normalizeLegacyArgs(os.Args)

	opts := &cliOptions{}
	if err := fang.Execute(
		context.Background(),
		newRootCmd(opts),
		fang.WithVersion(version),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "problem-extract",
		Short:         "Extract a programming problem from a PNG screenshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.priorPath, "prior", "", "Path to a previous extraction to merge the new image into")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(opts cliOptions) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		fmt.Fprintf(os.Stderr, "[verbose] Starting problem extraction\n")
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{APIKeyPathOverride: opts.apiKeyPath})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config loaded: Model=%s\n", cfg.Model)
		fmt.Fprintf(os.Stderr, "[verbose] Effective API key path: %s\n", cfg.APIKeyPath)
	}

	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY not found. Checked key file %s and GEMINI_API_KEY env var", cfg.APIKeyPath)
	}

	if cfg.Model == "" {
		return fmt.Errorf("MODEL is required in .env file")
	}

	llm.Init(&llm.Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Vision model initialized\n")
	}

	return processImage(opts)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		switch {
		case arg == "-file":
			normalized[i] = "--file"
		case strings.HasPrefix(arg, "-file="):
			normalized[i] = "--file=" + arg[len("-file="):]
		case arg == "-prior":
			normalized[i] = "--prior"
		case strings.HasPrefix(arg, "-prior="):
			normalized[i] = "--prior=" + arg[len("-prior="):]
		case arg == "-json":
			normalized[i] = "--json"
		case strings.HasPrefix(arg, "-json="):
			normalized[i] = "--json=" + arg[len("-json="):]
		case arg == "-verbose":
			normalized[i] = "--verbose"
		case strings.HasPrefix(arg, "-verbose="):
			normalized[i] = "--verbose=" + arg[len("-verbose="):]
		case arg == "-api-key-path":
			normalized[i] = "--api-key-path"
		case strings.HasPrefix(arg, "-api-key-path="):
			normalized[i] = "--api-key-path=" + arg[len("-api-key-path="):]
		}
	}

	return normalized
}

func validatePNG(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

// buildPrompt picks the cold-start prompt, or the incremental one when a
// non-empty prior extraction file is given.
func buildPrompt(priorPath string) (string, error) {
	if priorPath == "" {
		return prompt.ColdStart(), nil
	}
	data, err := os.ReadFile(priorPath)
	if err != nil {
		return "", fmt.Errorf("failed to read prior extraction %s: %w", priorPath, err)
	}
	prior := strings.TrimSpace(string(data))
	if prior == "" {
		return prompt.ColdStart(), nil
	}
	return prompt.Incremental(prior), nil
}

func processImage(opts cliOptions) error {
	var imageData []byte
	var err error

	if opts.filePath == "-" {
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Reading image from stdin\n")
		}
		imageData, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Reading image from file: %s\n", opts.filePath)
		}
		imageData, err = os.ReadFile(opts.filePath)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", opts.filePath, err)
		}
	}

	if err := validatePNG(imageData); err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Read %d bytes, PNG validation passed\n", len(imageData))
	}

	promptText, err := buildPrompt(opts.priorPath)
	if err != nil {
		return err
	}
	if opts.verbose && opts.priorPath != "" {
		fmt.Fprintf(os.Stderr, "[verbose] Merging into prior extraction from %s\n", opts.priorPath)
	}

	startTime := time.Now()
	text, err := llm.QueryVision(imageData, promptText)
	elapsed := time.Since(startTime)

	if err != nil {
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Extraction failed after %v: %v\n", elapsed, err)
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Extraction completed in %v, %d characters\n", elapsed, len(text))
	}

	return outputResult(text, opts.filePath, elapsed, opts.jsonOutput)
}

type ExtractionResult struct {
	Problem   string  `json:"problem"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func outputResult(text string, sourcePath string, elapsed time.Duration, jsonOutput bool) error {
	if jsonOutput {
		result := ExtractionResult{
			Problem:   text,
			Source:    sourcePath,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Duration:  elapsed.Seconds(),
			CharCount: len(text),
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	} else {
		fmt.Print(text)
	}

	return nil
}
