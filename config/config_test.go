package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckExecutable_ValidPath(t *testing.T) {
	tempDir := t.TempDir()
	validExe := filepath.Join(tempDir, "chromium")

	file, err := os.Create(validExe)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	file.Close()

	err = os.Chmod(validExe, 0755)
	if err != nil {
		t.Fatalf("Failed to chmod file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	err = checkExecutable(validExe, logger)
	if err != nil {
		t.Errorf("Expected no error with valid path, got: %v", err)
	}
}

func TestCheckExecutable_InvalidPath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	invalidPath := "/nonexistent/path/to/chromium"
	err := checkExecutable(invalidPath, logger)
	if err == nil {
		t.Error("Expected error with invalid path, got nil")
	}
	t.Logf("Correctly returned error for invalid path: %v", err)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CHARTCONV_TEST_STR", "value")
	t.Setenv("CHARTCONV_TEST_INT", "42")
	t.Setenv("CHARTCONV_TEST_FLOAT", "1.5")
	t.Setenv("CHARTCONV_TEST_BOOL", "true")

	if got := getEnv("CHARTCONV_TEST_STR", "default"); got != "value" {
		t.Errorf("getEnv = %q, want value", got)
	}
	if got := getEnv("CHARTCONV_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv fallback = %q, want default", got)
	}
	if got := getEnvInt("CHARTCONV_TEST_INT", 0); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
	if got := getEnvFloat("CHARTCONV_TEST_FLOAT", 0); got != 1.5 {
		t.Errorf("getEnvFloat = %v, want 1.5", got)
	}
	if got := getEnvBool("CHARTCONV_TEST_BOOL", false); !got {
		t.Error("getEnvBool = false, want true")
	}
	if got := getEnvInt("CHARTCONV_TEST_STR", 7); got != 7 {
		t.Errorf("getEnvInt with bad value = %d, want fallback 7", got)
	}
}
