package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/domino14/wordroom/config"
	"github.com/domino14/wordroom/room"
	"github.com/domino14/wordroom/shell"
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
	fmt.Println("wordroom practice console", GitVersion)

	gate, err := cfg.Dictionary.Gate()
	if err != nil {
		log.Fatal().Err(err).Msg("dictionary")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := room.NewBroadcaster(0)
	hub := room.NewHub(ctx, gate, events)

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		close(idleConnsClosed)
	}()

	sc := shell.NewShellController(hub, events, cfg.Game)
	go sc.Loop(sig)
	<-idleConnsClosed

	sc.Cleanup()
}
