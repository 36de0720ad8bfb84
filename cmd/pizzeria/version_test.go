package main

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestVersionReport(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "20260301.120000"
	GitCommit = "abc123"

	got := map[string]any{}
	for _, f := range versionReport() {
		got[f.Key] = f.Value
	}
	if got["version"] != "20260301.120000" || got["git_commit"] != "abc123" {
		t.Errorf("versionReport() = %v", got)
	}
	if got["go_version"] != runtime.Version() {
		t.Errorf("go_version = %v, want %s", got["go_version"], runtime.Version())
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--format", "json"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var v map[string]string
	if err := json.Unmarshal(out.Bytes(), &v); err != nil {
		t.Fatalf("version output is not JSON: %v\n%s", err, out.String())
	}
	if v["version"] != Version {
		t.Errorf("version = %q, want %q", v["version"], Version)
	}
	if !strings.Contains(v["os_arch"], "/") {
		t.Errorf("os_arch = %q", v["os_arch"])
	}
}
