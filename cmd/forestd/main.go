// main.go - Game daemon entry point.
//
// forestd hosts the full conquest stack in one process: the JSON-file ledger,
// the in-process confidential engine, the REST surface and the websocket
// event feed. Configuration comes from a JSON file with optional .env
// overrides; games can be pre-declared in YAML preset files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"encforest/internal/ledger"
	"encforest/internal/mpc"
)

const version = "0.3.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "forestd:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "forestd.json", "path to the daemon config file")
	flag.Parse()

	// .env overrides are optional; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if addr := os.Getenv("FORESTD_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if lvl := os.Getenv("FORESTD_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	log.Info().Str("version", version).Str("addr", cfg.ListenAddr).Msg("starting forestd")

	var keys *mpc.AttestationKeys
	if cfg.AttestationEnabled {
		log.Info().Msg("compiling attestation circuit")
		ccs, err := mpc.CompileAttestation()
		if err != nil {
			return fmt.Errorf("attestation compile failed: %w", err)
		}
		if err := os.MkdirAll(cfg.KeyDir, 0755); err != nil {
			return err
		}
		pk, vk, err := mpc.SetupOrLoadKeys(ccs,
			cfg.KeyDir+"/attest_pk.bin", cfg.KeyDir+"/attest_vk.bin")
		if err != nil {
			return fmt.Errorf("attestation key setup failed: %w", err)
		}
		keys = &mpc.AttestationKeys{CCS: ccs, PK: pk, VK: vk}
	}

	engine, err := mpc.NewLocalEngine(cfg.Workers, keys, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	var store ledger.Store
	if cfg.StatePath != "" {
		fs, err := ledger.NewFileStore(cfg.StatePath)
		if err != nil {
			return err
		}
		store = fs
	} else {
		store = ledger.NewMemStore()
	}

	metrics := NewMetricsCollector()
	hub := NewHub(log)
	go hub.Run()

	// Slots advance with wall-clock seconds; per-game speed scales the
	// effective tick inside the rules.
	clock := ledger.SlotFunc(func() uint64 { return uint64(time.Now().Unix()) })

	sink := fanout{hub, metrics.Sink()}
	mgr := ledger.NewManager(store, engine, clock, sink, log)

	presets, err := LoadPresets(cfg.PresetDir)
	if err != nil {
		return err
	}
	for i := range presets {
		g := presets[i].Game()
		if err := mgr.CreateGame(g); err != nil {
			if errors.Is(err, ledger.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("preset game %d: %w", g.ID, err)
		}
		log.Info().Uint64("game", g.ID).Msg("preset game loaded")
	}

	health := NewHealthChecker(version)
	health.RegisterComponent("store", func() error {
		_, err := store.ListPlanets(0)
		return err
	})
	health.RegisterComponent("engine", func() error {
		if len(engine.ClusterPub()) == 0 {
			return errors.New("cluster key unavailable")
		}
		return nil
	})

	server := NewServer(mgr, store, hub, metrics, health, log,
		time.Duration(cfg.RequestTimeoutSeconds)*time.Second)
	limiter := NewRateLimiter(cfg.RateLimit, cfg.RateBurst, log)

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: limiter.Middleware(server.Routes()),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return engine.Close()
}

// fanout publishes every event to all wrapped sinks.
type fanout []ledger.Sink

func (f fanout) Publish(ev ledger.Event) {
	for _, s := range f {
		s.Publish(ev)
	}
}
