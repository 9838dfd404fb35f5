package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/Nityasav/wyldstoneja/pkg/config"
	"github.com/Nityasav/wyldstoneja/pkg/game"
	"github.com/Nityasav/wyldstoneja/pkg/input"
	"github.com/Nityasav/wyldstoneja/pkg/renderer"
	"github.com/Nityasav/wyldstoneja/pkg/store"
)

func main() {
	settings, err := config.LoadSettings("bracegame", os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	// The board owns the terminal; logs go to a file
	if settings.LogFile == "" {
		settings.LogFile = "bracegame.log"
	}
	log, err := settings.NewLogger()
	if err != nil {
		fmt.Println("Error opening log:", err)
		os.Exit(1)
	}

	db, err := store.Open(settings.DBPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}
	defer db.Close()

	id := uuid.NewString()
	opts := []game.Option{
		game.WithID(id),
		game.WithStore(db),
		game.WithResultSink(db),
		game.WithLogger(log),
		game.WithSpawner(game.NewSpawner(settings.Seed)),
	}
	if settings.Record {
		rec, err := game.NewRecorder(settings.RecordDir, id, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to start recorder")
		}
		defer rec.Close()
		opts = append(opts, game.WithRecorder(rec))
	}

	session := game.NewSession(opts...)
	defer session.Close()

	// Redraw requests coalesce; one pending frame is enough
	redraw := make(chan struct{}, 1)
	session.OnEvent(func(game.Event) {
		select {
		case redraw <- struct{}{}:
		default:
		}
	})

	// Initialize input handler
	inputHandler := input.NewKeyboardHandler()
	if err := inputHandler.Start(); err != nil {
		fmt.Println("Error opening keyboard:", err)
		return
	}
	defer inputHandler.Stop()

	render := renderer.NewTerminalRenderer(os.Stdout)
	render.HideCursor()
	defer render.ShowCursor()

	log.WithField("session", id).Info("Terminal game started")
	render.Render(session.Snapshot())

	inputChan := inputHandler.GetInputChan()
	for {
		select {
		case key := <-inputChan:
			cmd := input.Parse(key)
			if cmd.Action == input.ActionQuit {
				fmt.Println("\n  Thanks for playing! 👋")
				return
			}
			if err := apply(session, cmd); err != nil {
				log.WithError(err).Debug("Ignored key")
			}
			render.Render(session.Snapshot())

		case <-redraw:
			render.Render(session.Snapshot())
		}
	}
}

// apply routes a key command to the session according to its screen
func apply(s *game.Session, cmd input.Command) error {
	switch cmd.Action {
	case input.ActionSteer:
		s.Steer(cmd.Direction)
	case input.ActionSelect:
		switch s.Screen() {
		case game.ScreenCharacter:
			chars := game.Characters()
			if cmd.Index >= len(chars) {
				return fmt.Errorf("character %d: %w", cmd.Index+1, game.ErrUnknownCharacter)
			}
			return s.SelectCharacter(chars[cmd.Index].ID)
		case game.ScreenMode:
			modes := game.Modes()
			if cmd.Index >= len(modes) {
				return fmt.Errorf("mode %d: %w", cmd.Index+1, game.ErrUnknownMode)
			}
			return s.SelectMode(modes[cmd.Index].ID)
		}
	case input.ActionAgain:
		return s.PlayAgain()
	case input.ActionBack:
		return s.ChangeMode()
	}
	return nil
}
