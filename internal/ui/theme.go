package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes - exported for use across packages.
var (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[91m"
	ColorGreen  = "\033[92m"
	ColorYellow = "\033[93m"
	ColorBlue   = "\033[94m"
	ColorPurple = "\033[95m"
	ColorCyan   = "\033[96m"
	ColorBold   = "\033[1m"
	ActiveTheme = "nordonedark"
)

// Unicode symbols
var (
	SymbolCheck    = "✓"
	SymbolCross    = "✗"
	SymbolArrow    = "→"
	SymbolDownload = "⬇"
	SymbolInfo     = "ℹ"
	SymbolWarning  = "⚠"
	SymbolStar     = "★"
)

// palette lists red, green, yellow, blue, purple, cyan per color depth.
// An empty depth keeps the basic defaults.
type palette struct {
	truecolor [6]string
	ansi256   [6]string
	basic     [6]string
}

var palettes = map[string]palette{
	"nordonedark": {
		truecolor: [6]string{
			"\033[1;38;2;224;108;117m", "\033[1;38;2;152;195;121m", "\033[1;38;2;229;192;123m",
			"\033[1;38;2;143;188;255m", "\033[1;38;2;180;142;255m", "\033[1;38;2;136;220;255m",
		},
		ansi256: [6]string{
			"\033[1;38;5;210m", "\033[1;38;5;114m", "\033[1;38;5;222m",
			"\033[1;38;5;111m", "\033[1;38;5;183m", "\033[1;38;5;159m",
		},
	},
	"vivid": {
		truecolor: [6]string{
			"\033[1;38;2;255;76;102m", "\033[1;38;2;80;250;123m", "\033[1;38;2;255;221;87m",
			"\033[1;38;2;110;196;255m", "\033[1;38;2;215;130;255m", "\033[1;38;2;0;245;255m",
		},
		ansi256: [6]string{
			"\033[1;38;5;203m", "\033[1;38;5;84m", "\033[1;38;5;227m",
			"\033[1;38;5;81m", "\033[1;38;5;177m", "\033[1;38;5;51m",
		},
		basic: [6]string{
			"\033[1;91m", "\033[1;92m", "\033[1;93m", "\033[1;94m", "\033[1;95m", "\033[1;96m",
		},
	},
}

func init() {
	InitColorPalette()
}

// InitColorPalette picks the palette named by ANYDL_THEME (nordonedark or vivid).
// NO_COLOR or a non-terminal stdout turns colors off.
func InitColorPalette() {
	theme := strings.ToLower(strings.TrimSpace(os.Getenv("ANYDL_THEME")))
	if _, ok := palettes[theme]; ok {
		ActiveTheme = theme
	}
	if os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		setColors([6]string{}, "", "")
		return
	}
	p := palettes[ActiveTheme]
	switch {
	case SupportsTruecolor():
		setColors(p.truecolor, "\033[0m", "\033[1m")
	case Supports256Color():
		setColors(p.ansi256, "\033[0m", "\033[1m")
	case p.basic[0] != "":
		setColors(p.basic, "\033[0m", "\033[1m")
	default:
		setColors([6]string{"\033[91m", "\033[92m", "\033[93m", "\033[94m", "\033[95m", "\033[96m"}, "\033[0m", "\033[1m")
	}
}

func setColors(c [6]string, reset, bold string) {
	ColorRed, ColorGreen, ColorYellow = c[0], c[1], c[2]
	ColorBlue, ColorPurple, ColorCyan = c[3], c[4], c[5]
	ColorReset, ColorBold = reset, bold
}

// SupportsTruecolor checks if the terminal supports 24-bit color.
func SupportsTruecolor() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
	return strings.Contains(colorTerm, "truecolor") ||
		strings.Contains(colorTerm, "24bit") ||
		strings.Contains(term, "truecolor") ||
		strings.Contains(term, "24bit")
}

// Supports256Color checks if the terminal supports 256 colors.
func Supports256Color() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "256color")
}
