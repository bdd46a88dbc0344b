package output

import (
	"os"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}

// Colorize wraps text in the named color when color is enabled.
// Known names: red, yellow, cyan, gray, bold.
func Colorize(text, name string, color bool) string {
	if !color {
		return text
	}
	code := ""
	switch name {
	case "red":
		code = colorRed
	case "yellow":
		code = colorYellow
	case "cyan":
		code = colorCyan
	case "gray":
		code = colorGray
	case "bold":
		code = colorBold
	default:
		return text
	}
	return code + text + colorReset
}
