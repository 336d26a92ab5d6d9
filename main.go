package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/axisremap/internal/hub"
	"github.com/soar/axisremap/internal/profile"
	"github.com/soar/axisremap/internal/remap"
	"github.com/soar/axisremap/internal/server"
	"github.com/soar/axisremap/internal/tray"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	addr := pflag.String("addr", ":8080", "HTTP listen address for the curve editor")
	profilePath := pflag.String("profile", "profile.yaml", "profile file with axis bindings and curves")
	logOutput := pflag.Bool("log-output", false, "log shaped output values instead of discarding them")
	pflag.Parse()

	// Load the profile, falling back to the starter profile on first run
	prof, err := profile.Load(*profilePath)
	if err != nil {
		log.Printf("Profile not loaded (%v), starting from defaults", err)
		prof = profile.Default()
	}

	rig, err := buildRig(prof)
	if err != nil {
		log.Fatalf("Invalid profile: %v", err)
	}

	var out remap.Output = remap.Discard{}
	if *logOutput {
		out = remap.LogOutput{}
	}

	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to wait for reader completion
	readerDone := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	// Create joystick reader
	reader := remap.NewReader(rig, out)

	// Create and start hub
	h := hub.NewHub()
	go h.Run()

	// Create broadcaster
	broadcaster := hub.NewBroadcaster(h, reader.Changes())
	go broadcaster.Run()

	// Create and start HTTP server
	srv := server.New(h, broadcaster, rig, reader, *addr)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	log.Printf("AxisRemap started: editor at http://localhost%s", *addr)

	// Channel for tray-triggered shutdown
	shutdownRequested := make(chan struct{})

	// Initialize system tray on Windows only
	if runtime.GOOS == "windows" {
		go func() {
			t := tray.New("http://localhost"+*addr, func() {
				close(shutdownRequested)
			})
			t.Run(nil)
		}()
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	// Run reader in goroutine; it locks its own OS thread for SDL.
	// Cancelling the context makes reader.Run() return.
	go func() {
		reader.Run(ctx)
		close(readerDone)
	}()

	// Wait for shutdown signal, tray request, or server error
	select {
	case <-sigCh:
		log.Println("Shutting down...")
		cancel()
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
		cancel()
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
		cancel()
	}

	// Wait for reader to finish
	<-readerDone

	// Shutdown the HTTP server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Persist any curve edits made during the run
	saveProfile(prof, rig, *profilePath)

	log.Println("AxisRemap stopped")
}

// buildRig assembles axis bindings from the profile. A stored curve
// that fails validation is replaced by the default identity curve so
// the remapper always starts in a usable state.
func buildRig(prof *profile.Profile) (*remap.Rig, error) {
	axes := make([]*remap.Axis, 0, len(prof.Axes))
	for _, ac := range prof.Axes {
		a, err := remap.NewAxis(ac.Name, ac.Index, ac.Target, ac.Invert, ac.CurveOrDefault())
		if err != nil {
			return nil, err
		}
		axes = append(axes, a)
	}
	return remap.NewRig(axes...)
}

// saveProfile writes the current curve of every axis back to the
// profile file.
func saveProfile(prof *profile.Profile, rig *remap.Rig, path string) {
	for i := range prof.Axes {
		if a, ok := rig.Axis(prof.Axes[i].Name); ok {
			prof.Axes[i].Curve = profile.FromParameters(a.Curve())
		}
	}
	if err := prof.Save(path); err != nil {
		log.Printf("Failed to save profile: %v", err)
	}
}
