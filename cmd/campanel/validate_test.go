package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCmd runs the root command with args and returns captured output and
// any error.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestRunValidate_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
port: 9090
title: Living Room Tuner
fetch_timeout: 2s
poll_interval: 1s
default_upstream_port: 4022
cors_origins:
  - http://tv.local
`)

	output, err := executeCmd(t, "validate", "-c", configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Port:          9090",
		"Title:         Living Room Tuner",
		"Fetch timeout: 2s",
		"Poll interval: 1s",
		"Upstream port: editable (4022)",
		"CORS origins:  http://tv.local",
		"Log level:     info",
	}
	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\ngot: %s", phrase, output)
		}
	}
}

func TestRunValidate_Defaults(t *testing.T) {
	configPath := writeConfig(t, "# all defaults\n")

	output, err := executeCmd(t, "validate", "-c", configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	for _, phrase := range []string{"Port:          8080", "Title:         CAM Menu Management", "CORS origins:  disabled"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\ngot: %s", phrase, output)
		}
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	configPath := writeConfig(t, "poll_interval: 10ms\n")

	_, err := executeCmd(t, "validate", "-c", configPath)
	if err == nil {
		t.Fatal("validate command should fail for invalid config")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("error = %q, want to contain 'invalid config'", err.Error())
	}
	if !strings.Contains(err.Error(), "poll_interval") {
		t.Errorf("error = %q, want to mention poll_interval", err.Error())
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "validate", "-c", filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("validate command should fail for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %q, want to contain 'failed to read config file'", err.Error())
	}
}

func TestVersion(t *testing.T) {
	output, err := executeCmd(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(output, "campanel dev") {
		t.Errorf("output = %q, want version line", output)
	}
}
