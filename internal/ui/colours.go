package ui

import "fmt"

const (
	// Standard colors
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	// Inverse video colors
	RedInverse    = "\033[7;31m"
	YellowInverse = "\033[7;33m"

	ResetColor = "\033[0m" // Reset to default color
)

var MethodColors = map[string]string{
	"GET":    Green,
	"POST":   Blue,
	"PUT":    Cyan,
	"DELETE": Yellow,
	"PATCH":  Magenta,
}

// StatusColors colour ticket statuses in listings.
var StatusColors = map[string]string{
	"open":        Green,
	"in_progress": Yellow,
	"closed":      Gray,
}

// Colourize wraps s in colour when enabled and colour is known.
func Colourize(enabled bool, colour, s string) string {
	if !enabled || colour == "" {
		return s
	}
	return colour + s + ResetColor
}

// Method renders an HTTP method padded to a fixed width, coloured per MethodColors.
func Method(enabled bool, method string) string {
	padded := fmt.Sprintf(" %-7s", method)
	colour, ok := MethodColors[method]
	if !ok {
		colour = Gray
	}
	return Colourize(enabled, colour, padded)
}
