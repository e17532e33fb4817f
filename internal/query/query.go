package query

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"arrivatui/internal/model"
)

// DateLayout is the day-month-year layout the trip service expects.
const DateLayout = "02-01-2006"

const (
	controller = "buses"
	method     = "goSearch"
)

// TripQuery identifies one round-trip search.
type TripQuery struct {
	From int
	To   int
	Date string
}

// FromStops builds the query for a committed origin/destination pair.
// An empty date means today according to clock, or time.Now when clock is nil.
func FromStops(origin, destination model.Stop, date string, clock func() time.Time) TripQuery {
	if date == "" {
		if clock == nil {
			clock = time.Now
		}
		date = Today(clock)
	}
	return TripQuery{
		From: origin.ID,
		To:   destination.ID,
		Date: date,
	}
}

// Today formats the current date from clock as DD-MM-YYYY.
func Today(clock func() time.Time) string {
	return clock().Format(DateLayout)
}

// ValidateDate checks that date is a real calendar day in DD-MM-YYYY form.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q, expected DD-MM-YYYY", date)
	}
	return nil
}

// Payload returns the url-encoded form body for the search.
// Fields are always written in the same order so equal queries encode to equal bytes.
func (q TripQuery) Payload() string {
	fields := [][2]string{
		{"controller", controller},
		{"method", method},
		{"data[from]", fmt.Sprint(q.From)},
		{"data[to]", fmt.Sprint(q.To)},
		{"data[date]", q.Date},
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f[1]))
	}
	return b.String()
}

func (q TripQuery) String() string {
	return fmt.Sprintf("%d -> %d on %s", q.From, q.To, q.Date)
}
