package ui

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	Primary   = lipgloss.Color("#0EA5E9") // Sky
	Secondary = lipgloss.Color("#3B82F6") // Blue
	Success   = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))
)

// Concurrent build tasks print through the same helpers
var mu sync.Mutex

func printLine(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Println(s)
}

// Banner returns the safecss banner
func Banner() string {
	banner := `
 █▀▀ █▀▀█ █▀▀ █▀▀ █▀▀ █▀▀ █▀▀
 ▀▀█ █▄▄█ █▀▀ █▀▀ █   ▀▀█ ▀▀█
 ▀▀▀ ▀  ▀ ▀   ▀▀▀ ▀▀▀ ▀▀▀ ▀▀▀`
	return TitleStyle.Render(banner)
}

// Header returns a section header
func Header(text string) string {
	return TitleStyle.Render("▸ " + text)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	printLine(SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	printLine(InfoStyle.Render("• " + fmt.Sprintf(format, args...)))
}

// PrintDebug prints a muted diagnostic message
func PrintDebug(format string, args ...interface{}) {
	printLine(MutedStyle.Render("  " + fmt.Sprintf(format, args...)))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	printLine(ErrorStyle.Render("✗ " + fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	printLine(WarningStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// PrintKeyValue prints a key-value pair
func PrintKeyValue(key, value string) {
	printLine(fmt.Sprintf("  %s %s", KeyStyle.Render(key+":"), ValueStyle.Render(value)))
}

// Divider returns a divider line
func Divider() string {
	return MutedStyle.Render("─────────────────────────────────────────")
}

// PrintVersion prints the version
func PrintVersion(version string) {
	printLine(ValueStyle.Render(" Version: " + version))
}

// PrintHeader prints the standard header
func PrintHeader(version string) {
	fmt.Println()
	fmt.Println(Divider())
	fmt.Println(Banner())
	PrintVersion(version)
	fmt.Println()
	fmt.Println(Divider())
	fmt.Println()
}

// FormatBytes renders a byte count for humans
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Ratio renders size as a percentage of original
func Ratio(size, original int64) string {
	if original == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(size)*100/float64(original))
}
