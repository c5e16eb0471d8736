package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		debug    bool
		fallback string
		want     string
	}{
		{name: "default", want: "error"},
		{name: "fallback", fallback: "warn", want: "warn"},
		{name: "verbose", verbose: true, fallback: "warn", want: "info"},
		{name: "debug wins", verbose: true, debug: true, want: "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFor(tt.verbose, tt.debug, tt.fallback); got != tt.want {
				t.Errorf("LevelFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_WritesToLogfile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "gxcopy.log")

	logger, err := New(Config{Level: "info", Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	logger.Info("discovering folder")
	logger.Debug("suppressed")
	_ = logger.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "discovering folder") {
		t.Errorf("expected info message in log, got %q", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Errorf("debug message should be filtered at info level, got %q", out)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
