package model

import "fmt"

// Trip is one scheduled service between the chosen stops.
type Trip struct {
	Line      string
	Departure string // HH:MM
	Arrival   string // HH:MM
	Cost      uint64 // cents
}

// Price renders the cost in currency units, e.g. 135 -> "1.35".
func (t Trip) Price() string {
	return FormatCents(t.Cost)
}

// FormatCents renders an amount of cents with two decimals.
func FormatCents(c uint64) string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}

// Side identifies one of the two trip arrays of a round-trip search.
type Side int

const (
	Outbound Side = iota
	Return
)

func (s Side) String() string {
	switch s {
	case Outbound:
		return "outward"
	case Return:
		return "return"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}
