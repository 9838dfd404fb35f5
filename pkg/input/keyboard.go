package input

import (
	"github.com/eiannone/keyboard"

	"github.com/Nityasav/wyldstoneja/pkg/game"
)

// KeyboardHandler handles keyboard input
type KeyboardHandler struct {
	inputChan chan KeyInput
	done      chan struct{}
}

// KeyInput represents a keyboard input event
type KeyInput struct {
	Char rune
	Key  keyboard.Key
}

// NewKeyboardHandler creates a new keyboard input handler
func NewKeyboardHandler() *KeyboardHandler {
	return &KeyboardHandler{
		inputChan: make(chan KeyInput),
		done:      make(chan struct{}),
	}
}

// Start begins listening for keyboard input
func (h *KeyboardHandler) Start() error {
	if err := keyboard.Open(); err != nil {
		return err
	}

	go func() {
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case h.inputChan <- KeyInput{Char: char, Key: key}:
			case <-h.done:
				return
			}
		}
	}()

	return nil
}

// Stop stops the keyboard handler
func (h *KeyboardHandler) Stop() {
	close(h.done)
	keyboard.Close()
}

// GetInputChan returns the input channel
func (h *KeyboardHandler) GetInputChan() <-chan KeyInput {
	return h.inputChan
}

// Action is what a key press asks the session to do
type Action int

const (
	ActionNone Action = iota
	ActionSteer
	ActionSelect // Pick the Index-th entry of the current menu
	ActionAgain
	ActionBack
	ActionQuit
)

// Command is a parsed key press
type Command struct {
	Action    Action
	Direction game.Direction
	Index     int
}

// Parse maps a key press to a command
func Parse(input KeyInput) Command {
	if dir, ok := ParseDirection(input); ok {
		return Command{Action: ActionSteer, Direction: dir}
	}
	switch {
	case IsQuit(input):
		return Command{Action: ActionQuit}
	case IsRestart(input):
		return Command{Action: ActionAgain}
	case IsBack(input):
		return Command{Action: ActionBack}
	}
	if input.Char >= '1' && input.Char <= '9' {
		return Command{Action: ActionSelect, Index: int(input.Char - '1')}
	}
	return Command{Action: ActionNone}
}

// ParseDirection parses a key input into a direction
func ParseDirection(input KeyInput) (dir game.Direction, isValid bool) {
	// Handle arrow keys
	switch input.Key {
	case keyboard.KeyArrowUp:
		return game.Up, true
	case keyboard.KeyArrowDown:
		return game.Down, true
	case keyboard.KeyArrowLeft:
		return game.Left, true
	case keyboard.KeyArrowRight:
		return game.Right, true
	}

	// Handle WASD keys
	switch input.Char {
	case 'w', 'W':
		return game.Up, true
	case 's', 'S':
		return game.Down, true
	case 'a', 'A':
		return game.Left, true
	case 'd', 'D':
		return game.Right, true
	}

	return game.Up, false
}

// IsQuit checks if the input is a quit command
func IsQuit(input KeyInput) bool {
	return input.Char == 'q' || input.Char == 'Q' || input.Key == keyboard.KeyCtrlC
}

// IsRestart checks if the input is a play-again command
func IsRestart(input KeyInput) bool {
	return input.Char == 'r' || input.Char == 'R' || input.Key == keyboard.KeyEnter
}

// IsBack checks if the input returns to mode select
func IsBack(input KeyInput) bool {
	return input.Char == 'm' || input.Char == 'M' || input.Key == keyboard.KeyEsc
}
