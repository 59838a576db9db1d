package models

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a tracker color in canonical "#RRGGBB" form.
type Color string

// ParseColor accepts "#rrggbb" or "rrggbb" (any case) and returns the
// canonical form.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("color cannot be empty")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("invalid color %q (expected #RRGGBB): %w", s, err)
	}
	return Color(strings.ToUpper(c.Hex())), nil
}

func (c Color) String() string { return string(c) }

func (c Color) Valid() bool {
	_, err := ParseColor(string(c))
	return err == nil
}
