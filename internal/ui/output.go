package ui

import (
	"fmt"

	"github.com/jmagar/anydl/internal/model"
)

// RunErrorCount and RunWarningCount track errors/warnings during a run.
var RunErrorCount int
var RunWarningCount int

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorGreen, SymbolCheck, ColorReset, msg, ColorReset)
}

// PrintError prints an error message and increments the error counter.
func PrintError(msg string) {
	RunErrorCount++
	fmt.Printf("%s%s%s %s%s\n", ColorRed, SymbolCross, ColorReset, msg, ColorReset)
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorBlue, SymbolInfo, ColorReset, msg, ColorReset)
}

// PrintWarning prints a warning message and increments the warning counter.
func PrintWarning(msg string) {
	RunWarningCount++
	fmt.Printf("%s%s%s %s%s\n", ColorYellow, SymbolWarning, ColorReset, msg, ColorReset)
}

// PrintDownload prints a download message.
func PrintDownload(msg string) {
	fmt.Printf("%s%s%s %s%s\n", ColorCyan, SymbolDownload, ColorReset, msg, ColorReset)
}

// PrintFailure prints an error with its suggested fix underneath.
func PrintFailure(msg, solution string) {
	PrintError(msg)
	if solution != "" {
		fmt.Printf("  %s%s%s %s\n", ColorCyan, SymbolArrow, ColorReset, solution)
	}
}

// PrintSeverity routes msg to the printer matching severity.
func PrintSeverity(severity int, msg string) {
	switch severity {
	case model.MessagePriorityStatus:
		PrintSuccess(msg)
	case model.MessagePriorityWarning:
		PrintWarning(msg)
	default:
		PrintError(msg)
	}
}
