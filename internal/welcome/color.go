package welcome

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultColor is the RGB value of #0099ff
const DefaultColor = 0x0099ff

const maxColor = 0xFFFFFF

// Color is an embed color given either as a "#RRGGBB" string or as an integer.
// The zero value means no color was given.
type Color struct {
	hex   string
	value int
	isInt bool
}

// HexColor returns a Color from a hex string such as "#0099ff".
// An empty string yields the zero Color.
func HexColor(s string) Color {
	return Color{hex: s}
}

// IntColor returns a Color from an RGB integer
func IntColor(n int) Color {
	return Color{value: n, isInt: true}
}

// IsZero reports whether no color was given
func (c Color) IsZero() bool {
	return !c.isInt && c.hex == ""
}

// IsInt reports whether the color was given as an integer
func (c Color) IsInt() bool {
	return c.isInt
}

// Int returns the integer form and whether the color was given as one
func (c Color) Int() (int, bool) {
	return c.value, c.isInt
}

// Hex returns the string form and whether the color was given as one
func (c Color) Hex() (string, bool) {
	return c.hex, !c.isInt && c.hex != ""
}

// String renders the color as "#rrggbb" for integers and verbatim for strings
func (c Color) String() string {
	if c.isInt {
		return fmt.Sprintf("#%06x", c.value)
	}
	return c.hex
}

// MarshalJSON keeps the original representation: strings stay strings,
// integers stay numbers.
func (c Color) MarshalJSON() ([]byte, error) {
	switch {
	case c.isInt:
		return json.Marshal(c.value)
	case c.hex == "":
		return []byte("null"), nil
	default:
		return json.Marshal(c.hex)
	}
}

// UnmarshalJSON accepts a JSON string, a JSON number or null
func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Color{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = HexColor(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("color must be a string or a number: %w", err)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("color must be an integer, got %v", f)
	}
	if f < 0 || f > maxColor {
		return fmt.Errorf("color %v is outside the RGB range 0-%d", f, maxColor)
	}
	*c = IntColor(int(f))
	return nil
}

// FormatError reports a color string that is not valid hexadecimal
type FormatError struct {
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid color %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid color %q", e.Value)
}

func (e *FormatError) Unwrap() error { return e.Err }

// NormalizeColor converts c to its RGB integer. Integers are returned
// unchanged; strings lose one leading '#' and are parsed as base-16.
func NormalizeColor(c Color) (int, error) {
	if c.isInt {
		return c.value, nil
	}

	s := strings.TrimPrefix(c.hex, "#")
	if s == "" {
		return 0, &FormatError{Value: c.hex}
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, &FormatError{Value: c.hex, Err: err}
	}
	if n > maxColor {
		return 0, &FormatError{Value: c.hex, Err: fmt.Errorf("out of RGB range")}
	}
	return int(n), nil
}

// EmbedColor is NormalizeColor with the send-time fallbacks applied: an
// absent color yields DefaultColor, and so does an invalid one, in which case
// the FormatError is returned alongside for the caller to log.
func EmbedColor(c Color) (int, error) {
	if c.IsZero() {
		return DefaultColor, nil
	}
	n, err := NormalizeColor(c)
	if err != nil {
		return DefaultColor, err
	}
	return n, nil
}
