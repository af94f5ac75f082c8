package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/faideww/fishon/internal/economy"
	"github.com/faideww/fishon/internal/fish"
	"github.com/faideww/fishon/internal/store"
	"github.com/faideww/fishon/internal/term"
	"github.com/gdamore/tcell/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// the screen owns stdout, so logs go to a file
	logFile, err := os.OpenFile(config.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "fishon ", log.LstdFlags)

	reg := fish.DefaultRegistry()
	if config.CatalogJson != "" {
		reg, err = fish.LoadRegistryFromJSON(config.CatalogJson)
		if err != nil {
			return err
		}
	}

	st, err := store.OpenSQLite(config.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ui *term.UI
	eco, err := economy.Open(ctx, economy.Options{
		Registry: reg,
		Persist:  st,
		Logger:   logger,
		OnLevelUp: func(from, to int) {
			ui.LevelUp(from, to)
		},
	})
	if err != nil {
		return err
	}

	var cues term.Cues
	if config.Sound {
		sound := term.NewSound(logger)
		defer sound.Close()
		cues = sound
	}
	ui = term.New(eco, term.Options{Cues: cues, Debug: config.Debug, Logger: logger})

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	logger.Printf("started, save %s in %s", economy.KeyFor(""), config.DBPath)
	ui.Run(ctx, screen)
	logger.Printf("quit with %d tokens at level %d", eco.Tokens(), eco.Level())
	return nil
}
