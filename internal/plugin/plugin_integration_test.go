package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestPlugin_SystemControl_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	if runtime.GOOS != "darwin" && runtime.GOOS != "linux" {
		t.Skip("system-control plugin only works on macOS and Linux")
	}

	// The plugin binary has to be built next to its manifest.
	pluginDir := findPluginDir("system-control")
	if pluginDir == "" {
		t.Skip("system-control plugin not built")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Get("system-control")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	executor := NewExecutor(5 * time.Second)

	t.Run("unknown action", func(t *testing.T) {
		resp, err := executor.Execute(context.Background(), plug, &Request{Action: "invalid-action"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if resp.Success {
			t.Error("expected failure for invalid action")
		}
	})

	// volume-range has no side effects. Hosts without a mixer answer with
	// Success=false, which is still a well-formed response.
	t.Run("volume range", func(t *testing.T) {
		resp, err := executor.Execute(context.Background(), plug, &Request{Action: "volume-range"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !resp.Success {
			t.Skipf("no mixer available: %s", resp.Error)
		}

		var r struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		}
		if err := json.Unmarshal(resp.Data, &r); err != nil {
			t.Fatalf("unmarshal range: %v", err)
		}
		if r.Min >= r.Max {
			t.Errorf("expected min < max, got [%v, %v]", r.Min, r.Max)
		}
	})

	t.Run("volume set without level", func(t *testing.T) {
		resp, err := executor.Execute(context.Background(), plug, &Request{
			Action: "volume-set",
			Params: json.RawMessage(`{}`),
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if resp.Success {
			t.Error("expected failure for missing level")
		}
	})
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		manifest := filepath.Join(dir, ManifestFile)
		if _, err := os.Stat(manifest); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return dir
		}
	}
	return ""
}
