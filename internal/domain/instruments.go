package domain

import "strings"

// DefaultInstruments are the currency pairs tracked when none are configured.
var DefaultInstruments = []string{"EURUSD", "GBPUSD", "USDJPY", "AUDUSD"}

// NormalizeInstrument uppercases and strips separators, so "eur/usd" becomes "EURUSD".
func NormalizeInstrument(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)
}

// NormalizeInstruments normalizes and deduplicates the list, keeping first-seen order.
func NormalizeInstruments(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		sym := NormalizeInstrument(raw)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
