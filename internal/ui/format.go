package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/jmagar/anydl/internal/progress"
)

// Box drawing characters
const (
	BoxTopLeft     = "┌"
	BoxTopRight    = "┐"
	BoxBottomLeft  = "└"
	BoxBottomRight = "┘"
	BoxVertical    = "│"
	BoxHorizontal  = "─"
	BoxTeeLeft     = "├"
	BoxTeeRight    = "┤"
	BoxTeeTop      = "┬"
	BoxTeeBottom   = "┴"
	BoxCross       = "┼"

	BoxDoubleHorizontal  = "═"
	BoxDoubleTopLeft     = "╔"
	BoxDoubleTopRight    = "╗"
	BoxDoubleBottomLeft  = "╚"
	BoxDoubleBottomRight = "╝"

	BulletCircle  = "•"
	BulletDiamond = "◆"
)

// AnsiRegex matches SGR escape sequences.
var AnsiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const termWidthCacheTTL = 500 * time.Millisecond

var (
	termWidthMu         sync.Mutex
	cachedTermWidth     = 80
	cachedTermWidthTime time.Time
)

// GetTermWidth returns the terminal width, defaulting to 80.
func GetTermWidth() int {
	termWidthMu.Lock()
	if time.Since(cachedTermWidthTime) <= termWidthCacheTTL && cachedTermWidth > 0 {
		width := cachedTermWidth
		termWidthMu.Unlock()
		return width
	}
	termWidthMu.Unlock()

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width == 0 {
		width = 80
	}

	termWidthMu.Lock()
	cachedTermWidth = width
	cachedTermWidthTime = time.Now()
	termWidthMu.Unlock()

	return width
}

// StripAnsiCodes removes ANSI escape sequences from a string.
func StripAnsiCodes(s string) string {
	return AnsiRegex.ReplaceAllString(s, "")
}

// VisibleLength returns the visible length of a string (excluding ANSI codes).
func VisibleLength(s string) int {
	return utf8.RuneCountInString(StripAnsiCodes(s))
}

// TruncateWithEllipsis truncates a string to maxLen with ellipsis if needed.
func TruncateWithEllipsis(s string, maxLen int) string {
	visibleLen := VisibleLength(s)
	if visibleLen <= maxLen {
		return s
	}
	if maxLen <= 3 {
		stripped := StripAnsiCodes(s)
		runes := []rune(stripped)
		if len(runes) <= maxLen {
			return stripped
		}
		return string(runes[:maxLen])
	}

	codes := AnsiRegex.FindAllString(s, -1)
	stripped := StripAnsiCodes(s)
	runes := []rune(stripped)
	truncated := string(runes[:maxLen-3]) + "..."

	if len(codes) > 0 {
		return codes[0] + truncated + ColorReset
	}

	return truncated
}

// PadRight pads a string to the specified width using visible length.
func PadRight(s string, width int) string {
	visLen := VisibleLength(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visLen)
}

// PadCenter centers a string in the specified width using visible length.
func PadCenter(s string, width int) string {
	visLen := VisibleLength(s)
	if visLen >= width {
		return s
	}
	padding := width - visLen
	leftPad := padding / 2
	rightPad := padding - leftPad
	return strings.Repeat(" ", leftPad) + s + strings.Repeat(" ", rightPad)
}

// PrintHeader prints a styled header with box drawing.
func PrintHeader(title string) {
	width := GetTermWidth()
	titleLen := VisibleLength(title) + 4

	if titleLen > width-4 {
		title = TruncateWithEllipsis(title, width-10)
	}

	lineLen := width - 2

	fmt.Printf("\n%s%s%s%s%s\n",
		ColorCyan, BoxDoubleTopLeft,
		strings.Repeat(BoxDoubleHorizontal, lineLen),
		BoxDoubleTopRight, ColorReset)

	fmt.Printf("%s%s%s %s %s%s%s\n",
		ColorCyan, BoxVertical, ColorReset,
		ColorBold+PadCenter(title, lineLen-2)+ColorReset,
		ColorCyan, BoxVertical, ColorReset)

	fmt.Printf("%s%s%s%s%s\n\n",
		ColorCyan, BoxDoubleBottomLeft,
		strings.Repeat(BoxDoubleHorizontal, lineLen),
		BoxDoubleBottomRight, ColorReset)
}

// PrintSection prints a section title with underline.
func PrintSection(title string) {
	fmt.Printf("\n%s%s %s%s\n", ColorBold, BulletDiamond, title, ColorReset)
	fmt.Printf("%s%s%s\n\n", ColorCyan, strings.Repeat(BoxHorizontal, len(title)+2), ColorReset)
}

// TableColumn represents a column in a table.
type TableColumn struct {
	Header string
	Width  int
	Align  string // "left", "right", "center"
}

// Table represents a formatted table.
type Table struct {
	Columns []TableColumn
	Rows    [][]string
}

// NewTable creates a new table.
func NewTable(columns []TableColumn) *Table {
	return &Table{
		Columns: columns,
		Rows:    make([][]string, 0),
	}
}

// AddRow adds a row, padding or cutting cells to the column count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Print renders the table to stdout, fitted to the terminal width.
func (t *Table) Print() {
	t.Render(os.Stdout, GetTermWidth())
}

// Render writes the table to w, shrinking columns proportionally when their
// combined width exceeds width.
func (t *Table) Render(w io.Writer, width int) {
	if len(t.Columns) == 0 {
		return
	}
	cols := t.fit(width)

	border := func(left, mid, right string) {
		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = strings.Repeat(BoxHorizontal, col.Width+2)
		}
		fmt.Fprintln(w, ColorCyan+left+strings.Join(parts, mid)+right+ColorReset)
	}
	sep := ColorCyan + BoxVertical + ColorReset

	border(BoxTopLeft, BoxTeeTop, BoxTopRight)
	fmt.Fprint(w, sep)
	for _, col := range cols {
		header := TruncateWithEllipsis(col.Header, col.Width)
		fmt.Fprintf(w, " %s%s%s %s", ColorBold, PadCenter(header, col.Width), ColorReset, sep)
	}
	fmt.Fprintln(w)
	border(BoxTeeLeft, BoxCross, BoxTeeRight)

	for _, row := range t.Rows {
		fmt.Fprint(w, sep)
		for i, col := range cols {
			fmt.Fprintf(w, " %s %s", alignCell(row[i], col), sep)
		}
		fmt.Fprintln(w)
	}
	border(BoxBottomLeft, BoxTeeBottom, BoxBottomRight)
}

func (t *Table) fit(width int) []TableColumn {
	available := width - (len(t.Columns) + 1) - len(t.Columns)*2
	requested := 0
	for _, col := range t.Columns {
		requested += col.Width
	}
	cols := make([]TableColumn, len(t.Columns))
	copy(cols, t.Columns)
	if requested > available && available > 0 {
		for i := range cols {
			cols[i].Width = max((cols[i].Width*available)/requested, 1)
		}
	}
	return cols
}

func alignCell(cell string, col TableColumn) string {
	cell = TruncateWithEllipsis(cell, col.Width)
	switch col.Align {
	case "right":
		if pad := col.Width - VisibleLength(cell); pad > 0 {
			return strings.Repeat(" ", pad) + cell
		}
		return cell
	case "center":
		return PadCenter(cell, col.Width)
	default:
		return PadRight(cell, col.Width)
	}
}

// PrintList prints a styled bullet list.
func PrintList(items []string, color string) {
	for _, item := range items {
		fmt.Printf("  %s%s%s %s\n", color, BulletCircle, ColorReset, item)
	}
}

// PrintKeyValue prints a key-value pair with styling.
func PrintKeyValue(key, value, valueColor string) {
	width := GetTermWidth()
	maxValueWidth := width - len(key) - 10

	if len(value) > maxValueWidth {
		value = TruncateWithEllipsis(value, maxValueWidth)
	}

	fmt.Printf("  %s%-20s%s %s%s%s\n",
		ColorCyan, key+":", ColorReset,
		valueColor, value, ColorReset)
}

// ProgressLine builds a single-line progress bar for one transfer.
// An unknown total leaves the bar empty and shows only the bytes received.
func ProgressLine(label string, r progress.Report, received, total int64) string {
	const barWidth = 30
	percentage := 0
	if r.HasPercent {
		percentage = min(max(r.Percent, 0), 100)
	}
	filled := (percentage * barWidth) / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	size := humanize.Bytes(uint64(max(received, 0)))
	if total > 0 {
		size += "/" + humanize.Bytes(uint64(total))
	}
	pct := "  ?%"
	if r.HasPercent {
		pct = fmt.Sprintf("%3d%%", percentage)
	}
	line := fmt.Sprintf("%s%s%s %s[%s%s%s]%s %s%s%s %s",
		ColorBold, label, ColorReset,
		ColorCyan, ColorGreen, bar, ColorCyan, ColorReset,
		ColorBold, pct, ColorReset, size)
	if r.Speed != "" {
		line += " @ " + r.Speed
	}
	if r.ETA != "" {
		line += ", ETA " + r.ETA
	}
	return line
}

// RenderProgress redraws the progress line in place, clipped to the terminal.
func RenderProgress(label string, r progress.Report, received, total int64) {
	line := TruncateWithEllipsis(ProgressLine(label, r, received, total), GetTermWidth()-1)
	pad := GetTermWidth() - 1 - VisibleLength(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Printf("\r%s%s", line, strings.Repeat(" ", pad))
}
