package renderer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Nityasav/wyldstoneja/pkg/config"
	"github.com/Nityasav/wyldstoneja/pkg/game"
)

// TerminalRenderer handles terminal-based rendering
type TerminalRenderer struct {
	out    io.Writer
	board  [][]int
	buffer strings.Builder
}

// Cell types for the board
const (
	cellEmpty = iota
	cellWall
	cellHead
	cellBody
	cellCrash
)

// NewTerminalRenderer creates a renderer writing to out, or stdout when nil
func NewTerminalRenderer(out io.Writer) *TerminalRenderer {
	if out == nil {
		out = os.Stdout
	}
	// The playfield plus a one-cell wall frame
	size := config.GridSize + 2
	board := make([][]int, size)
	for i := range board {
		board[i] = make([]int, size)
	}

	return &TerminalRenderer{
		out:   out,
		board: board,
	}
}

// clearScreen clears the terminal using ANSI escape codes
func (r *TerminalRenderer) clearScreen() {
	r.buffer.WriteString("\033[H\033[2J\033[3J")
}

// ShowCursor shows the cursor (call on exit)
func (r *TerminalRenderer) ShowCursor() {
	fmt.Fprint(r.out, "\033[?25h")
}

// HideCursor hides the cursor (call on start)
func (r *TerminalRenderer) HideCursor() {
	fmt.Fprint(r.out, "\033[?25l")
}

// Render draws the screen the session is on
func (r *TerminalRenderer) Render(snap game.Snapshot) {
	r.buffer.Reset()
	r.clearScreen()
	r.buffer.WriteString("\n  WYLDSTONE BRACE GAME\n\n")

	switch snap.Screen {
	case game.ScreenCharacter:
		r.renderCharacters()
	case game.ScreenMode:
		r.renderModes(snap)
	default:
		r.renderBoard(snap)
	}

	fmt.Fprint(r.out, r.buffer.String())
}

func (r *TerminalRenderer) renderCharacters() {
	r.buffer.WriteString("  Choose your spirit animal\n\n")
	for i, c := range game.Characters() {
		fmt.Fprintf(&r.buffer, "  %d) %s %s the %s\n", i+1, c.Emoji, c.Name, c.Species)
	}
	r.buffer.WriteString("\n  Q to quit\n")
}

func (r *TerminalRenderer) renderModes(snap game.Snapshot) {
	if c, err := game.LookupCharacter(snap.Character); err == nil {
		fmt.Fprintf(&r.buffer, "  Playing as %s %s\n\n", c.Emoji, c.Name)
	}
	r.buffer.WriteString("  Choose a mode\n\n")
	for i, m := range game.Modes() {
		fmt.Fprintf(&r.buffer, "  %d) %-13s %s\n", i+1, m.Name, m.Tagline)
	}
	fmt.Fprintf(&r.buffer, "\n  High score: %d\n", snap.HighScore)
	r.buffer.WriteString("  Q to quit\n")
}

func (r *TerminalRenderer) renderBoard(snap game.Snapshot) {
	// Reset board
	for y := range r.board {
		for x := range r.board[y] {
			r.board[y][x] = cellEmpty
		}
	}

	last := len(r.board) - 1
	for i := 0; i <= last; i++ {
		r.board[0][i] = cellWall
		r.board[last][i] = cellWall
		r.board[i][0] = cellWall
		r.board[i][last] = cellWall
	}

	for i, p := range snap.Snake {
		if i == 0 {
			r.board[p.Y+1][p.X+1] = cellHead
		} else {
			r.board[p.Y+1][p.X+1] = cellBody
		}
	}

	// Draw crash point if game over; a wall crash lands on the frame
	if cp := snap.CrashPoint; cp != nil && cp.X >= -1 && cp.X <= config.GridSize && cp.Y >= -1 && cp.Y <= config.GridSize {
		r.board[cp.Y+1][cp.X+1] = cellCrash
	}

	items := make(map[game.Point]string, len(snap.Beads)+len(snap.PowerUps))
	for _, b := range snap.Beads {
		items[b] = config.CharBead
	}
	for _, pu := range snap.PowerUps {
		items[pu.Pos] = pu.Kind.Emoji()
	}

	// Header with stats
	fmt.Fprintf(&r.buffer, "  %s: %d  |  High: %d  |  Bracelet: %d/%d",
		snap.ScoreLabel, snap.Score, snap.HighScore, snap.Length, snap.Target)
	if snap.Lives > 0 {
		fmt.Fprintf(&r.buffer, "  |  Lives: %d", snap.Lives)
	}
	r.buffer.WriteString("\n")

	if len(snap.Effects) > 0 {
		r.buffer.WriteString(" ")
		for _, eff := range snap.Effects {
			if eff.OneShot {
				fmt.Fprintf(&r.buffer, " %s %s", eff.Kind.Emoji(), eff.Label)
			} else {
				fmt.Fprintf(&r.buffer, " %s %s %.0fs", eff.Kind.Emoji(), eff.Label, float64(eff.RemainingMs)/1000)
			}
		}
	}
	r.buffer.WriteString("\n\n")

	// Render board
	for y, row := range r.board {
		r.buffer.WriteString("  ")
		for x, cell := range row {
			pos := game.Point{X: x - 1, Y: y - 1}
			if item, ok := items[pos]; ok && cell == cellEmpty {
				r.buffer.WriteString(item)
				continue
			}
			switch cell {
			case cellEmpty:
				r.buffer.WriteString(config.CharEmpty)
			case cellWall:
				r.buffer.WriteString(config.CharWall)
			case cellHead:
				r.buffer.WriteString(config.CharHead)
			case cellBody:
				r.buffer.WriteString(config.CharBody)
			case cellCrash:
				r.buffer.WriteString(config.CharCrash)
			}
		}
		r.buffer.WriteString("\n")
	}

	r.buffer.WriteString("\n  Use WASD or Arrow keys to move, M for modes, Q to quit\n")

	switch snap.Screen {
	case game.ScreenWon:
		fmt.Fprintf(&r.buffer, "\n  ✨ BRACELET COMPLETE! %s: %d\n", snap.ScoreLabel, snap.Score)
	case game.ScreenLost:
		fmt.Fprintf(&r.buffer, "\n  💥 GAME OVER! %s: %d\n", snap.ScoreLabel, snap.Score)
	}
	if snap.Screen == game.ScreenWon || snap.Screen == game.ScreenLost {
		if snap.NewHigh {
			r.buffer.WriteString("  🏆 New high score!\n")
		}
		r.buffer.WriteString("  Press R to play again or M to change mode\n")
	}
}
