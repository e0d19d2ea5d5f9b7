package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // the site's zone must resolve on hosts without zoneinfo
)

// DefaultRecencyWindow is how far back a listing may have been posted.
const DefaultRecencyWindow = 2 * time.Hour

const yesterdayMarker = "včera"

// ErrUnrecognizedTime is returned for timestamp text that matches none of the
// formats used by the site.
var ErrUnrecognizedTime = errors.New("unrecognized listing time")

// SiteLocation is the civil time zone the site renders its timestamps in.
var SiteLocation = mustLoadLocation("Europe/Prague")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// ParseListingTime converts the site's timestamp text into an absolute time.
// Accepted shapes, tried in order:
//
//	"včera 13:05"  yesterday at 13:05
//	"13:05"        today at 13:05
//	"14.1.2024"    that date at midnight, also "[14.1. 2024]"
//
// "today" and "yesterday" are relative to now as seen in SiteLocation.
func ParseListingTime(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	now = now.In(SiteLocation)

	fields := strings.Fields(text)
	if len(fields) > 0 && strings.EqualFold(fields[0], yesterdayMarker) {
		if len(fields) != 2 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedTime, text)
		}
		return onDay(now.AddDate(0, 0, -1), fields[1], text)
	}

	if strings.Contains(text, ":") {
		return onDay(now, text, text)
	}

	date := text
	if strings.HasPrefix(date, "[") && strings.HasSuffix(date, "]") {
		date = strings.TrimSpace(date[1 : len(date)-1])
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, date, SiteLocation); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedTime, text)
}

// dateLayouts are the date shapes the site prints, "15.1.2024" and "15.1. 2024".
var dateLayouts = []string{"2.1.2006", "2.1. 2006"}

// onDay combines the civil date of day with an "HH:MM" clock reading.
func onDay(day time.Time, clock, original string) (time.Time, error) {
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedTime, original)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, hm.Hour(), hm.Minute(), 0, 0, SiteLocation), nil
}

// RecencyFilter keeps listings posted within the trailing Window.
type RecencyFilter struct {
	Window time.Duration
}

// NewRecencyFilter returns a filter for window, falling back to
// DefaultRecencyWindow when window is not positive.
func NewRecencyFilter(window time.Duration) RecencyFilter {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	return RecencyFilter{Window: window}
}

// IsRecent reports whether parsed lies no more than Window before now.
// A nil time (unparsable text) is never recent. Times after now are accepted:
// listings stamped slightly ahead of the local clock still count as fresh.
func (f RecencyFilter) IsRecent(parsed *time.Time, now time.Time) bool {
	if parsed == nil {
		return false
	}
	return now.Sub(*parsed) <= f.Window
}
