// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatMoney formats a USD amount with thousands separators and cents.
// e.g., 1234.5 -> "$1,234.50", -3 -> "-$3.00"
func FormatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(whole.IntPart()), cents)
}

// FormatPercent formats a 0-100 percentage with one decimal place.
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(1) + "%"
}

// FormatPercentFloat formats a 0-100 float percentage without decimals.
func FormatPercentFloat(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatDate renders a billing date the way list rows show it ("Dec 15, 2024").
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 02, 2006")
}

// FormatAgo renders t relative to now ("3 days ago").
func FormatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatMonth returns a 3-letter month abbreviation.
func FormatMonth(t time.Time) string {
	return t.Format("Jan")
}

// FormatDelta formats a money delta with an explicit sign.
func FormatDelta(current, previous decimal.Decimal) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return FormatMoney(delta)
	}
	return "+" + FormatMoney(delta)
}

// Truncate shortens s to maxLen runes, marking the cut with an ellipsis.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen || maxLen < 1 {
		return s
	}
	return strings.TrimSpace(string(runes[:maxLen-1])) + "…"
}
