// Command stream runs a simulation in real time (scaled by the speedup
// setting) and publishes every step to websocket clients at /ws. Clients may
// send control messages to drive the lead cab live.
//
//	stream -scenario run.json [-config service.toml] [-exit]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/cxd309/traction-engine/internal/config"
	"github.com/cxd309/traction-engine/internal/engine"
	"github.com/cxd309/traction-engine/internal/logging"
	"github.com/cxd309/traction-engine/internal/stream"
)

func main() {
	var (
		configPath   = flag.String("config", "", "service settings file (toml, yaml or json)")
		scenarioPath = flag.String("scenario", "", "SimulationInput JSON file")
		exitWhenDone = flag.Bool("exit", false, "exit once the run time has elapsed")
	)
	flag.Parse()

	settings, err := config.LoadService(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading settings: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stderr, settings.LogFormat, settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings, *scenarioPath, *exitWhenDone, logger); err != nil {
		level.Error(logger).Log("msg", "stream failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, settings config.Service, scenarioPath string, exitWhenDone bool, logger log.Logger) error {
	if scenarioPath == "" {
		return errors.New("missing -scenario")
	}
	data, err := os.ReadFile(scenarioPath)
	if err != nil {
		return err
	}
	var input engine.SimulationInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("invalid input JSON: %w", err)
	}
	sim, err := engine.NewSimulation(input, engine.WithLogger(logger))
	if err != nil {
		return err
	}

	hub, err := stream.NewHub(sim.Meta(), log.With(logger, "component", "hub"))
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: settings.Listen, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "listening", "addr", settings.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	defer func() {
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	interval := time.Duration(sim.Meta().TimeStep / settings.Speedup * float64(time.Second))
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !sim.Done() {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return err
		case c := <-hub.Controls():
			if err := sim.Apply(c); err != nil {
				level.Warn(logger).Log("msg", "rejected live control", "err", err)
			}
		case <-ticker.C:
			row, err := sim.Step()
			if err != nil {
				return err
			}
			if err := hub.BroadcastRow(row); err != nil {
				return err
			}
		}
	}

	status := sim.Status()
	if err := hub.BroadcastDone(status); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "run complete", "t", sim.Time())
	if exitWhenDone {
		return nil
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-serveErr:
		return err
	}
}
