package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/telemetry"
	"github.com/ayusman/mudra/internal/tray"
	"github.com/ayusman/mudra/internal/volume"
)

func main() {
	fmt.Println("Mudra - Hand Gesture Volume Control")

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTelEndpoint, telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Printf("Telemetry shutdown: %v", err)
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	if cfg.JournalKeep > 0 {
		if n, err := st.Events().Prune(cfg.JournalKeep); err != nil {
			log.Printf("Prune journal: %v", err)
		} else if n > 0 {
			log.Printf("Pruned %d journal entries", n)
		}
	}

	a, err := app.New(app.Config{
		Store:    st,
		CameraID: cfg.CameraID,
		DetectorConfig: detector.Config{
			MaxHands:        cfg.MaxHands,
			MinConfidence:   cfg.DetectionConf,
			MinTrackingConf: cfg.TrackingConf,
		},
		HandIndex:       cfg.HandIndex,
		Pinch:           control.Range{Min: cfg.PinchMin, Max: cfg.PinchMax},
		Sink:            openSink(cfg),
		Draw:            cfg.Draw,
		Preview:         true,
		Journal:         cfg.Journal,
		JournalKeep:     cfg.JournalKeep,
		MotionThreshold: cfg.MotionThreshold,
		MotionHold:      cfg.MotionHold,
	})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
	})
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv}

	serveErr := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if err := a.Start(); err != nil {
		log.Printf("Camera unavailable, frame loop not started: %v", err)
	}

	if cfg.Tray {
		runTray(ctx, cfg, a)
	} else {
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if err != nil {
				log.Printf("Server failed: %v", err)
			}
		}
	}

	log.Println("Shutting down")
	a.Stop()
	srv.Close()

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(sctx)
}

// openSink connects the system-control plugin. A missing plugin leaves the
// volume gesture visual-only.
func openSink(cfg config.Config) volume.Sink {
	mgr := plugin.NewManager(cfg.PluginDir)
	if err := mgr.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
		return nil
	}

	sink, err := volume.NewPluginSink(mgr, plugin.NewExecutor(cfg.PluginTimeout), volume.SystemControlPlugin)
	if err != nil {
		log.Printf("Volume control disabled: %v", err)
		return nil
	}
	sink.SetTimeout(cfg.VolumeTimeout)
	return sink
}

// runTray shows the tray menu and blocks until it quits or ctx is done.
func runTray(ctx context.Context, cfg config.Config, a *app.App) {
	t := tray.New(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnOpen(func() { openBrowser(statusURL(cfg.Addr)) })
	a.OnReport(t.Update)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func statusURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Open %s: %v", url, err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
