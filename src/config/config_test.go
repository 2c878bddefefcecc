package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Set test environment variables
	os.Setenv("GEMINI_API_KEY", "test_api_key")
	os.Setenv("MODEL", "test_model")
	os.Setenv("BASE_URL", "http://backend.test:9000")
	os.Setenv("ENABLE_FILE_LOGGING", "true")
	os.Setenv("HOTKEY_CAPTURE", "Ctrl+Shift+R")
	os.Setenv("HOTKEY_FINALIZE", "Ctrl+Shift+F")

	defer func() {
		// Clean up environment variables
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("MODEL")
		os.Unsetenv("BASE_URL")
		os.Unsetenv("ENABLE_FILE_LOGGING")
		os.Unsetenv("HOTKEY_CAPTURE")
		os.Unsetenv("HOTKEY_FINALIZE")
	}()

	// Load the configuration
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	// Check the configuration values
	if cfg.APIKey != "test_api_key" {
		t.Errorf("Expected APIKey to be 'test_api_key', got '%s'", cfg.APIKey)
	}
	if cfg.Model != "test_model" {
		t.Errorf("Expected Model to be 'test_model', got '%s'", cfg.Model)
	}
	if cfg.BackendURL != "http://backend.test:9000" {
		t.Errorf("Expected BackendURL to be 'http://backend.test:9000', got '%s'", cfg.BackendURL)
	}
	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if cfg.CaptureHotkey != "Ctrl+Shift+R" {
		t.Errorf("Expected CaptureHotkey to be 'Ctrl+Shift+R', got '%s'", cfg.CaptureHotkey)
	}
	if cfg.FinalizeHotkey != "Ctrl+Shift+F" {
		t.Errorf("Expected FinalizeHotkey to be 'Ctrl+Shift+F', got '%s'", cfg.FinalizeHotkey)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MODEL", "BASE_URL", "HOTKEY_CAPTURE", "HOTKEY_FINALIZE", "TEMPERATURE", "HEADLESS", "COPY_RESULT"} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Model != DefaultModel {
		t.Errorf("Expected default model %q, got %q", DefaultModel, cfg.Model)
	}
	if cfg.BackendURL != DefaultBackendURL {
		t.Errorf("Expected default backend URL %q, got %q", DefaultBackendURL, cfg.BackendURL)
	}
	if cfg.CaptureHotkey != DefaultCaptureHotkey {
		t.Errorf("Expected default capture hotkey %q, got %q", DefaultCaptureHotkey, cfg.CaptureHotkey)
	}
	if cfg.FinalizeHotkey != DefaultFinalizeHotkey {
		t.Errorf("Expected default finalize hotkey %q, got %q", DefaultFinalizeHotkey, cfg.FinalizeHotkey)
	}
	if cfg.Temperature != DefaultTemperature {
		t.Errorf("Expected default temperature %v, got %v", DefaultTemperature, cfg.Temperature)
	}
	if cfg.Headless || cfg.CopyResult {
		t.Errorf("Expected viewer and clipboard toggles to default to false, got headless=%v copyResult=%v", cfg.Headless, cfg.CopyResult)
	}
}

func TestLoadTrimsBackendURL(t *testing.T) {
	os.Setenv("BASE_URL", "http://localhost:8000/")
	defer os.Unsetenv("BASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.BackendURL != "http://localhost:8000" {
		t.Errorf("Expected trailing slash to be trimmed, got %q", cfg.BackendURL)
	}
}
