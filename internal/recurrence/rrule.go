package recurrence

import (
	"fmt"
	"strings"
)

// Freq is how often a chore repeats.
type Freq string

const (
	None    Freq = "none"
	Daily   Freq = "daily"
	Weekly  Freq = "weekly"
	Monthly Freq = "monthly"
)

var freqFromName = map[string]Freq{
	"":        None,
	"none":    None,
	"daily":   Daily,
	"weekly":  Weekly,
	"monthly": Monthly,
}

// ParseFreq parses a recurrence name, case-insensitively. Empty means None.
func ParseFreq(s string) (Freq, error) {
	f, ok := freqFromName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return None, fmt.Errorf("unknown recurrence: %q", s)
	}
	return f, nil
}

func (f Freq) String() string {
	if f == "" {
		return string(None)
	}
	return string(f)
}

// Recurring reports whether f produces more than one occurrence.
func (f Freq) Recurring() bool {
	return f == Daily || f == Weekly || f == Monthly
}

// Next returns the occurrence after d. Non-recurring frequencies return d.
func (f Freq) Next(d Date) Date {
	switch f {
	case Daily:
		return d.AddDays(1)
	case Weekly:
		return d.AddDays(7)
	case Monthly:
		return d.AddMonths(1)
	}
	return d
}

// PerWeek is the number of occurrences a frequency contributes to one week.
func (f Freq) PerWeek() float64 {
	switch f {
	case Daily:
		return 7
	case Weekly:
		return 1
	case Monthly:
		return 0.25
	}
	return 0
}

// Describe returns a human-readable description.
func (f Freq) Describe() string {
	switch f {
	case Daily:
		return "Repeats daily"
	case Weekly:
		return "Repeats weekly"
	case Monthly:
		return "Repeats monthly"
	}
	return "Does not repeat"
}
