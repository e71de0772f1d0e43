package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parse interprets a free-text prompt and returns the schedule it describes.
// Matching is ordered and first-match-wins: a repeat-with-gap phrase beats a
// weekday or daily marker, a weekday marker beats a daily marker, and a bare
// time of day means "run once at that time". A prompt with no recognizable
// schedule phrase falls back to Immediate — Parse never fails, so an NLP
// miss degrades to "run now" instead of dropping the request.
func Parse(text string) Descriptor {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return Descriptor{Kind: Immediate}
	}

	if d, ok := parseLimitedInterval(s); ok {
		return d
	}
	if d, ok := parseWeekly(s); ok {
		return d
	}
	if d, ok := parseDaily(s); ok {
		return d
	}
	if t, ok := extractTimeOfDay(s); ok {
		return Descriptor{Kind: Once, TimeOfDay: &t}
	}
	return Descriptor{Kind: Immediate}
}

var (
	// "3 times", "3x"
	reRepeat = regexp.MustCompile(`\b(\d+)\s*(?:times|x)\b`)

	// "with 5 min gap", "every 2 hours", "at 10 minute intervals"
	reGap = regexp.MustCompile(`\b(?:every|with|at)\s+(\d+)\s*(seconds?|secs?|minutes?|mins?|hours?|hrs?)\b`)

	// "every Monday", "each friday"
	reWeekday = regexp.MustCompile(`\b(?:every|each)\s+(sunday|monday|tuesday|wednesday|thursday|friday|saturday|sun|mon|tue|tues|wed|thu|thur|thurs|fri|sat)\b`)

	// "daily", "every day"
	reDaily = regexp.MustCompile(`\bdaily\b|\bevery\s+day\b`)

	// "at 8pm", "at 14:30", or a bare "9am" / "11:47pm" without "at".
	// Group layout: hour, optional minute, optional meridiem.
	reTime = regexp.MustCompile(`\b(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
)

// parseLimitedInterval matches "N times" combined with a gap phrase like
// "with 5 min gap" or "every 2 hours". Both parts must be present; a bare
// repeat count with no gap is not a schedule.
func parseLimitedInterval(s string) (Descriptor, bool) {
	rm := reRepeat.FindStringSubmatch(s)
	gm := reGap.FindStringSubmatch(s)
	if rm == nil || gm == nil {
		return Descriptor{}, false
	}

	repeat, err := strconv.Atoi(rm[1])
	if err != nil || repeat < 1 {
		return Descriptor{}, false
	}

	n, err := strconv.Atoi(gm[1])
	if err != nil || n < 1 {
		return Descriptor{}, false
	}

	var unit time.Duration
	switch strings.TrimSuffix(gm[2], "s") {
	case "second", "sec":
		unit = time.Second
	case "minute", "min":
		unit = time.Minute
	case "hour", "hr":
		unit = time.Hour
	default:
		return Descriptor{}, false
	}

	return Descriptor{
		Kind:     LimitedInterval,
		Interval: time.Duration(n) * unit,
		Repeat:   repeat,
	}, true
}

// parseWeekly matches "every/each <weekday>" and picks up an optional time
// of day from the rest of the phrase.
func parseWeekly(s string) (Descriptor, bool) {
	m := reWeekday.FindStringSubmatch(s)
	if m == nil {
		return Descriptor{}, false
	}

	day, ok := weekdays[m[1]]
	if !ok {
		return Descriptor{}, false
	}

	d := Descriptor{Kind: Weekly, Weekday: &day}
	if t, ok := extractTimeOfDay(s); ok {
		d.TimeOfDay = &t
	}
	return d, true
}

// parseDaily matches "daily" or "every day" and picks up an optional time.
func parseDaily(s string) (Descriptor, bool) {
	if !reDaily.MatchString(s) {
		return Descriptor{}, false
	}

	d := Descriptor{Kind: Daily}
	if t, ok := extractTimeOfDay(s); ok {
		d.TimeOfDay = &t
	}
	return d, true
}

// extractTimeOfDay finds the first time mention in the phrase and normalizes
// it to 24-hour form. Only the first match is considered; if it is malformed
// (hour > 23, minute > 59) the whole extraction is discarded.
//
// A bare one- or two-digit number only counts as a time when it is anchored
// by "at", a colon, or a meridiem suffix — otherwise "send 3 reports" would
// parse as 03:00.
func extractTimeOfDay(s string) (TimeOfDay, bool) {
	for _, m := range reTime.FindAllStringSubmatch(s, -1) {
		anchored := strings.HasPrefix(strings.TrimSpace(m[0]), "at ") ||
			m[2] != "" || m[3] != ""
		if !anchored {
			continue
		}
		return normalizeClock(m[1], m[2], m[3])
	}
	return TimeOfDay{}, false
}

// normalizeClock applies 12-hour/24-hour normalization rules:
// pm adds 12 unless the hour is already 12, am maps 12 to 0, and a missing
// meridiem means the hour is taken literally as 24-hour input ("14:30" is
// 14:30, not an error). Out-of-range values reject the match.
func normalizeClock(hourStr, minuteStr, meridiem string) (TimeOfDay, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, false
	}

	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute < 0 || minute > 59 {
			return TimeOfDay{}, false
		}
	}

	switch meridiem {
	case "pm":
		if hour > 12 {
			return TimeOfDay{}, false
		}
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour > 12 {
			return TimeOfDay{}, false
		}
		if hour == 12 {
			hour = 0
		}
	}

	return TimeOfDay{Hour: hour, Minute: minute}, true
}

// weekdays maps full and abbreviated day names to time.Weekday.
var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}
