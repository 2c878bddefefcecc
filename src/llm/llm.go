package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNotInitialized is returned when the package is used before Init.
var ErrNotInitialized = errors.New("llm package not initialized")

type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

var config *Config

func Init(cfg *Config) {
	config = cfg
}

// QueryVision sends PNG image bytes plus a prompt to the configured model and
// returns the cleaned response text. An empty string with a nil error means
// the model answered without usable text; callers decide what that means.
func QueryVision(imageData []byte, promptText string) (string, error) {
	return QueryVisionContext(context.Background(), imageData, promptText)
}

func QueryVisionContext(ctx context.Context, imageData []byte, promptText string) (string, error) {
	cfg := config
	if cfg == nil {
		return "", ErrNotInitialized
	}
	if cfg.APIKey == "" {
		return "", fmt.Errorf("API key is not configured")
	}
	if cfg.Model == "" {
		return "", fmt.Errorf("model is not configured")
	}
	if len(imageData) == 0 {
		return "", fmt.Errorf("image data is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(float32(cfg.Temperature))

	resp, err := model.GenerateContent(ctx, genai.Text(promptText), genai.ImageData("png", imageData))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	return cleanModelResponse(text), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var sb strings.Builder
	found := false
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	return sb.String(), nil
}

// cleanModelResponse strips surrounding markdown code fences and whitespace.
// Models routinely wrap JSON answers in ```json blocks even when asked not to.
func cleanModelResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// Ping performs a minimal key and reachability check against the configured
// model. Startup-only; triggers never run through it.
func Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return PingContext(ctx)
}

func PingContext(ctx context.Context) error {
	cfg := config
	if cfg == nil {
		return ErrNotInitialized
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is not configured")
	}
	if cfg.Model == "" {
		return fmt.Errorf("model is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(cfg.Model)
	if _, err := model.CountTokens(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("gemini ping failed: %w", err)
	}

	return nil
}
