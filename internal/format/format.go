// Package format renders KPI values for display.
package format

import "fmt"

// Currency abbreviates amounts to $1.2M, $3.4K or $950.
func Currency(amount float64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.1fK", amount/1_000)
	default:
		return fmt.Sprintf("$%.0f", amount)
	}
}

// Duration renders hours, switching to days from 24 hours on.
func Duration(hours float64) string {
	if hours >= 24 {
		return fmt.Sprintf("%.1f days", hours/24)
	}
	return fmt.Sprintf("%.1f hours", hours)
}

// Percentage renders a value that is already in percent units.
func Percentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// Change renders a signed percent change such as +4.2% or -1.0%.
func Change(value float64) string {
	return fmt.Sprintf("%+.1f%%", value)
}
