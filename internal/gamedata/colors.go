package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ParseHexColor converts "#RRGGBB" (the # is optional) to a tcell color.
func ParseHexColor(hex string) (tcell.Color, error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) != 6 {
		return tcell.ColorDefault, fmt.Errorf("color %q: want 6 hex digits", hex)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("color %q: %w", hex, err)
	}
	return tcell.NewHexColor(int32(v)), nil
}

// TCellColor returns the enemy's display color. Content validation rejects
// malformed colors, so the white fallback only covers hand-built defs.
func (e *EnemyDef) TCellColor() tcell.Color {
	c, err := ParseHexColor(e.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return c
}
