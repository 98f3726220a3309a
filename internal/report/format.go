// Package report renders stored margin data as terminal tables and exports
// it to spreadsheet files.
package report

import (
	"fmt"
	"strings"
)

// FormatPct formats an optional percentage with two decimals, or "N/A" when
// the exchange published no value.
func FormatPct(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *p)
}

// FormatVol formats an optional volatility measure with four decimals, or
// "N/A" when absent.
func FormatVol(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.4f", *p)
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
