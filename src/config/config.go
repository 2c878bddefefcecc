package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath     = "/run/secrets/api_keys/gemini"
	APIKeyPathEnvVar      = "GEMINI_API_KEY_FILE"
	DefaultModel          = "gemini-2.0-flash"
	DefaultBackendURL     = "http://localhost:8000"
	DefaultCaptureHotkey  = "Shift+Q+R"
	DefaultFinalizeHotkey = "Shift+Q+F"
	DefaultTemperature    = 0.1
)

type LoadOptions struct {
	APIKeyPathOverride string
}

type Config struct {
	APIKey            string
	APIKeyPath        string
	Model             string
	Temperature       float64
	BackendURL        string
	CaptureHotkey     string
	FinalizeHotkey    string
	EnableFileLogging bool
	CopyResult        bool
	Headless          bool
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_PROBLEM_LLM env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Resolve model temperature with env override and sane default
	temperature := DefaultTemperature
	if v := os.Getenv("TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			temperature = f
		}
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	cfg := &Config{
		APIKey:            resolveAPIKey(apiKeyPath),
		APIKeyPath:        apiKeyPath,
		Model:             getEnvWithDefault("MODEL", DefaultModel),
		Temperature:       temperature,
		BackendURL:        strings.TrimRight(getEnvWithDefault("BASE_URL", DefaultBackendURL), "/"),
		CaptureHotkey:     getEnvWithDefault("HOTKEY_CAPTURE", DefaultCaptureHotkey),
		FinalizeHotkey:    getEnvWithDefault("HOTKEY_FINALIZE", DefaultFinalizeHotkey),
		EnableFileLogging: boolEnv("ENABLE_FILE_LOGGING"),
		CopyResult:        boolEnv("COPY_RESULT"),
		Headless:          boolEnv("HEADLESS"),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv("SCREEN_PROBLEM_LLM"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("GEMINI_API_KEY")
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func boolEnv(key string) bool {
	return strings.ToLower(os.Getenv(key)) == "true"
}
