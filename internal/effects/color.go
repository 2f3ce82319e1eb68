package effects

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an opaque block color.
type RGB struct {
	R, G, B uint8
}

// Yellow is used whenever a block color cannot be parsed.
var Yellow = RGB{R: 255, G: 255, B: 0}

var hexColor = regexp.MustCompile(`^(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ParseColor reads #RGB or #RRGGBB (the leading # is optional). Any other
// input yields Yellow; a bad color never fails processing.
func ParseColor(s string) RGB {
	hex := strings.Replace(strings.TrimSpace(s), "#", "", 1)
	if !hexColor.MatchString(hex) {
		return Yellow
	}
	c, err := colorful.Hex("#" + strings.ToLower(hex))
	if err != nil {
		return Yellow
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}
}

// Hex formats the color as #RRGGBB.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
