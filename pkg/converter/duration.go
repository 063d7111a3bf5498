package converter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

var (
	durationToken = regexp.MustCompile(`^(?:\d+[a-zA-Z]+)+$`)
	durationPart  = regexp.MustCompile(`(\d+)([a-zA-Z]+)`)
)

var durationUnits = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": day, "day": day, "days": day,
	"w": 7 * day, "week": 7 * day, "weeks": 7 * day,
}

// ParseDurationToken parses one token such as "2d", "5h30m" or "1week". It
// returns ErrNoMatch for tokens that are not durations and a RejectError for
// durations too long to represent.
func ParseDurationToken(token string) (time.Duration, error) {
	if !durationToken.MatchString(token) {
		return 0, ErrNoMatch
	}
	var total time.Duration
	for _, m := range durationPart.FindAllStringSubmatch(token, -1) {
		unit, ok := durationUnits[strings.ToLower(m[2])]
		if !ok {
			return 0, ErrNoMatch
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if errors.Is(err, strconv.ErrRange) || n > math.MaxInt64/int64(unit) {
			return 0, errDurationTooLong
		}
		if err != nil {
			return 0, ErrNoMatch
		}
		if total, ok = addDuration(total, time.Duration(n)*unit); !ok {
			return 0, errDurationTooLong
		}
	}
	return total, nil
}

var errDurationTooLong = Reject("duration is too long")

// addDuration adds two non-negative durations, reporting overflow.
func addDuration(a, b time.Duration) (time.Duration, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// Duration consumes leading duration tokens ("1d 2h", "90m") and sums them.
func Duration() Converter[time.Duration] {
	return Coalescing("duration",
		func(_ context.Context, _ Scope, tokens []string) (time.Duration, int, error) {
			var (
				total time.Duration
				n     int
			)
			for _, t := range tokens {
				d, err := ParseDurationToken(t)
				if errors.Is(err, ErrNoMatch) {
					break
				}
				if err != nil {
					return 0, 0, err
				}
				var ok bool
				if total, ok = addDuration(total, d); !ok {
					return 0, 0, errDurationTooLong
				}
				n++
			}
			if n == 0 {
				return 0, 0, Reject("`%s` is not a duration like `1d 2h30m`", tokens[0])
			}
			return total, n, nil
		})
}

// HumanizeDuration renders d as "2 days, 5 hours and 1 minute". Durations
// under a second render as an empty string.
func HumanizeDuration(d time.Duration) string {
	if d < time.Second {
		return ""
	}
	units := []struct {
		size time.Duration
		name string
	}{
		{day, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
		{time.Second, "second"},
	}

	var parts []string
	for _, u := range units {
		n := d / u.size
		if n == 0 {
			continue
		}
		d -= n * u.size
		if n == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", u.name))
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
