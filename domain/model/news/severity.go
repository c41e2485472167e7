package news

type Severity string

const (
	SeverityHigh   = Severity("High")
	SeverityMedium = Severity("Medium")
	SeverityLow    = Severity("Low")
)

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity maps a raw label to a known severity. Unknown labels
// fall back to Medium.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return Severity(s)
	}
	return SeverityMedium
}

// SeverityStats counts items per severity. Every known severity is
// present in the result even when zero.
func SeverityStats(items []Item) map[Severity]int {
	stats := map[Severity]int{
		SeverityHigh:   0,
		SeverityMedium: 0,
		SeverityLow:    0,
	}
	for _, it := range items {
		if _, ok := stats[it.Severity]; ok {
			stats[it.Severity]++
		}
	}
	return stats
}
