// Package dates parses the date formats accepted by the API: ISO strings on
// the authenticated surface and slash-delimited DD/MM/YYYY on the webhook
// path.
package dates

import (
	"errors"
	"time"
)

var ErrInvalidDate = errors.New("invalid date format")

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseISO parses an RFC3339 timestamp or a plain YYYY-MM-DD date, at UTC.
func ParseISO(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseBR parses a DD/MM/YYYY date at UTC midnight.
func ParseBR(s string) (time.Time, error) {
	t, err := time.ParseInLocation("02/01/2006", s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseAny accepts either format; the webhook body may carry both.
func ParseAny(s string) (time.Time, error) {
	if t, err := ParseISO(s); err == nil {
		return t, nil
	}
	return ParseBR(s)
}
