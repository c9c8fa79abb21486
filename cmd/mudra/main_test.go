package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStatusURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080/"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000/"},
	}
	for _, tt := range tests {
		if got := statusURL(tt.addr); got != tt.want {
			t.Errorf("statusURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestFindWebDir_DataDir(t *testing.T) {
	t.Chdir(t.TempDir())

	dataDir := t.TempDir()
	if got := findWebDir(dataDir); got != "" {
		t.Errorf("expected no web dir, got %q", got)
	}

	webDir := filepath.Join(dataDir, "web")
	if err := os.Mkdir(webDir, 0755); err != nil {
		t.Fatal(err)
	}
	if got := findWebDir(dataDir); got != webDir {
		t.Errorf("findWebDir() = %q, want %q", got, webDir)
	}
}
