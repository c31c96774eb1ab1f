// Command fixture-server serves the emulated picker page for debugging page
// objects by hand:
//
//	go run ./cmd/fixture-server --addr 127.0.0.1:8931 --overlay-delay 300ms
//	open http://127.0.0.1:8931/pickers?dateFormat=dd.MM.yyyy
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuitang/pickerpw/internal/config"
	"github.com/kuitang/pickerpw/internal/fixture"
	"github.com/kuitang/pickerpw/internal/obs"
)

func main() {
	addr, overlayDelay := config.ParseFlags()
	cfg := config.MustLoadConfig(addr, overlayDelay)

	obs.Init()
	obs.SetLevel(cfg.LogLevel)
	log := obs.Pkg("fixture-server")
	cfg.PrintStartupSummary()

	handler, err := fixture.NewHandler(cfg.OverlayDelay)
	if err != nil {
		log.Error("fixture_init_failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.FixtureAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("fixture_shutdown_failed", "error", err)
		}
	}()

	log.Info("fixture_listening", "addr", cfg.FixtureAddr, "overlay_delay_ms", cfg.OverlayDelay.Milliseconds())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("fixture_serve_failed", "error", err)
		os.Exit(1)
	}
}
