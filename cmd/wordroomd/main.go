package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/wordroom/config"
	"github.com/domino14/wordroom/room"
	"github.com/domino14/wordroom/store"
	"github.com/domino14/wordroom/transport/natsbridge"
	"github.com/domino14/wordroom/transport/ws"
)

var GitVersion string

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Log.Apply(os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Info().Str("version", GitVersion).Str("addr", cfg.Server.Addr).Msg("starting")
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
	log.Info().Msg("server gracefully shut down")
}

func run(cfg config.Config) error {
	gate, err := cfg.Dictionary.Gate()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events := room.NewBroadcaster(0)
	sinks := room.MultiSink{events}

	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path, cfg.Store.QueueSize)
		if err != nil {
			return err
		}
		defer st.Close()
		sinks = append(sinks, st)
	}

	var bridge *natsbridge.Bridge
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("wordroomd"))
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()
		bridge = natsbridge.New(nc, nil, cfg.Game, cfg.NATS.Prefix)
		sinks = append(sinks, bridge)
	}

	hub := room.NewHub(ctx, gate, sinks)
	if bridge != nil {
		bridge.SetHub(hub)
		if err := bridge.Start(ctx); err != nil {
			return err
		}
		defer bridge.Stop()
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(hub, events, cfg.Game, cfg.Server.AllowedOrigins))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok %d rooms\n", hub.Len())
	})
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("got quit signal...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
