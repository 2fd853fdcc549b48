package token

import (
	"regexp"
	"strconv"
	"time"

	"github.com/mcncl/jsoncompat/internal/models"
)

// ISO 8601 extended profile: a date, optionally followed by a time with
// optional seconds and fraction, optionally followed by Z or ±hh:mm. An
// offset is only accepted after a time.
var dateTimeRegex = regexp.MustCompile(
	`^(\d{4})-(\d{2})-(\d{2})(?:T(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d{1,16}))?)?(Z|[+-]\d{2}:\d{2})?)?$`,
)

const (
	layoutUnspecified = "2006-01-02T15:04:05.9999999"
	layoutUTC         = "2006-01-02T15:04:05.9999999Z07:00"
	layoutOffset      = "2006-01-02T15:04:05.9999999-07:00"
)

type dateTimeParts struct {
	year, month, day     int
	hour, minute, second int
	nanos                int
	hasOffset            bool
	offset               int // seconds east of UTC
}

func parseDateTimeParts(s string) (dateTimeParts, bool) {
	m := dateTimeRegex.FindStringSubmatch(s)
	if m == nil {
		return dateTimeParts{}, false
	}
	var p dateTimeParts
	p.year, _ = strconv.Atoi(m[1])
	p.month, _ = strconv.Atoi(m[2])
	p.day, _ = strconv.Atoi(m[3])
	if m[4] != "" {
		p.hour, _ = strconv.Atoi(m[4])
		p.minute, _ = strconv.Atoi(m[5])
	}
	if m[6] != "" {
		p.second, _ = strconv.Atoi(m[6])
	}
	if frac := m[7]; frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		for len(frac) < 9 {
			frac += "0"
		}
		p.nanos, _ = strconv.Atoi(frac)
	}
	if off := m[8]; off != "" {
		p.hasOffset = true
		if off != "Z" {
			hh, _ := strconv.Atoi(off[1:3])
			mm, _ := strconv.Atoi(off[4:6])
			if hh > 14 || mm > 59 {
				return dateTimeParts{}, false
			}
			p.offset = hh*3600 + mm*60
			if off[0] == '-' {
				p.offset = -p.offset
			}
		}
	}

	if p.year < 1 || p.month < 1 || p.month > 12 || p.hour > 23 || p.minute > 59 || p.second > 59 {
		return dateTimeParts{}, false
	}
	if p.day < 1 || p.day > daysIn(time.Month(p.month), p.year) {
		return dateTimeParts{}, false
	}
	return p, true
}

func (p dateTimeParts) in(loc *time.Location) time.Time {
	return time.Date(p.year, time.Month(p.month), p.day, p.hour, p.minute, p.second, p.nanos, loc)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDateTime parses s as a date-time without keeping its offset. Text
// without an offset yields an Unspecified wall clock (held in a UTC
// location); Z or a zero offset yields a UTC time; any other offset is
// converted to the local zone and reported as Local.
func ParseDateTime(s string) (time.Time, models.TimeKind, bool) {
	p, ok := parseDateTimeParts(s)
	if !ok {
		return time.Time{}, models.Unspecified, false
	}
	switch {
	case !p.hasOffset:
		return p.in(time.UTC), models.Unspecified, true
	case p.offset == 0:
		return p.in(time.UTC), models.UTC, true
	default:
		return p.in(time.FixedZone("", p.offset)).In(time.Local), models.Local, true
	}
}

// ParseDateTimeOffset parses s as a date-time that keeps its offset. Text
// without an offset is read as a local wall clock and pinned to the local
// offset in effect at that moment.
func ParseDateTimeOffset(s string) (time.Time, bool) {
	p, ok := parseDateTimeParts(s)
	if !ok {
		return time.Time{}, false
	}
	if !p.hasOffset {
		t := p.in(time.Local)
		_, off := t.Zone()
		return t.In(time.FixedZone("", off)), true
	}
	if s[len(s)-1] == 'Z' {
		return p.in(time.UTC), true
	}
	return p.in(time.FixedZone("", p.offset)), true
}

// FormatInstant renders an Instant the way ParseDateTime reads it back.
func FormatInstant(t time.Time, kind models.TimeKind) string {
	switch kind {
	case models.UTC:
		return t.UTC().Format(layoutUTC)
	case models.Local:
		return t.Format(layoutOffset)
	default:
		return t.Format(layoutUnspecified)
	}
}

// FormatOffset renders an InstantWithOffset with its offset spelled out.
func FormatOffset(t time.Time) string {
	return t.Format(layoutOffset)
}
