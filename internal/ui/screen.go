// Package ui draws combat and dungeon floors to the terminal using tcell.
package ui

import "github.com/gdamore/tcell/v2"

// Screen wraps tcell.Screen with the few calls the game needs.
type Screen struct {
	screen tcell.Screen
}

// NewScreen creates and initializes the terminal screen.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return Wrap(s)
}

// Wrap initializes an existing tcell screen, such as a simulation screen
// in tests.
func Wrap(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.HideCursor()
	s.Clear()
	return &Screen{screen: s}, nil
}

// Close finalizes the screen and restores terminal state. A pending
// PollEvent returns nil afterwards.
func (s *Screen) Close() {
	s.screen.Fini()
}

// PollEvent waits for and returns the next terminal event.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// Clear blanks every cell of the back buffer.
func (s *Screen) Clear() { s.screen.Clear() }

// Show flushes the changed cells to the terminal.
func (s *Screen) Show() { s.screen.Show() }

// Sync redraws the whole terminal after a resize.
func (s *Screen) Sync() { s.screen.Sync() }

// SetContent sets a single cell.
func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	s.screen.SetContent(x, y, r, nil, style)
}

// DrawText writes text starting at (x, y), clipped to the screen width,
// one cell per rune, and returns the column after the last cell written.
func (s *Screen) DrawText(x, y int, text string, style tcell.Style) int {
	w, _ := s.screen.Size()
	for _, r := range text {
		if x >= w {
			break
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// Size returns the current terminal dimensions.
func (s *Screen) Size() (width, height int) {
	return s.screen.Size()
}
