package bot

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const truncatedSuffix = "\n\n... (truncated)"

// formatMessage bounds the outgoing message length, preferring to cut at a
// sentence or line boundary when one exists past 70% of the limit. Cuts never
// split a multi-byte rune.
func formatMessage(text string, maxLength int) string {
	if text == "" {
		return "No response generated."
	}

	if len(text) <= maxLength {
		return text
	}

	if boundaryZone := maxLength - 100; boundaryZone > 0 {
		head := text[:runeBoundary(text, boundaryZone)]

		cut := strings.LastIndex(head, ".")
		if newline := strings.LastIndex(head, "\n"); newline > cut {
			cut = newline
		}

		if cut > maxLength*7/10 {
			return text[:cut+1] + truncatedSuffix
		}
	}

	hardCut := maxLength - len(truncatedSuffix)
	if hardCut <= 0 {
		return text[:runeBoundary(text, maxLength)]
	}

	return text[:runeBoundary(text, hardCut)] + truncatedSuffix
}

// runeBoundary backs cut off to the start of the rune it would otherwise
// split.
func runeBoundary(text string, cut int) int {
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return cut
}

// formatUptime renders a duration since start as "1d 2h 3m", skipping zero
// units and never returning an empty string.
func formatUptime(start time.Time) string {
	uptime := time.Since(start)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	if len(parts) == 0 {
		return "0m"
	}

	return strings.Join(parts, " ")
}
