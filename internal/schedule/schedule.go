// Package schedule parses natural-language scheduling phrases ("every Monday
// at 8PM", "now 3 times with 5 min gap") into normalized descriptors consumed
// by the runner.
package schedule

import (
	"fmt"
	"time"
)

// Kind classifies how often and when a task should run.
type Kind int

// Descriptor kinds, ordered from "run now" to "run repeatedly".
const (
	// Immediate runs the task once, right away. This is the fallback for
	// prompts with no recognizable schedule phrase.
	Immediate Kind = iota

	// Once runs the task a single time at a given time of day.
	Once

	// Daily runs the task every day, optionally at a given time of day.
	Daily

	// Weekly runs the task every week on a given weekday.
	Weekly

	// LimitedInterval runs the task a fixed number of times with a fixed
	// gap between runs.
	LimitedInterval
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Immediate:
		return "immediate"
	case Once:
		return "once"
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case LimitedInterval:
		return "limited_interval"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TimeOfDay is a wall-clock time in 24-hour form.
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Descriptor is the normalized result of parsing a scheduling phrase.
// Only the fields relevant to Kind are set: TimeOfDay for Once/Daily/Weekly
// (nil when the phrase carried no time), Weekday for Weekly, and
// Interval/Repeat for LimitedInterval.
type Descriptor struct {
	Kind      Kind
	TimeOfDay *TimeOfDay
	Weekday   *time.Weekday
	Interval  time.Duration
	Repeat    int
}

// Recurring reports whether the descriptor describes a repeating schedule
// that the runner must register rather than execute inline.
func (d Descriptor) Recurring() bool {
	return d.Kind == Daily || d.Kind == Weekly
}

// String returns a compact human-readable form, used in logs and API replies.
func (d Descriptor) String() string {
	switch d.Kind {
	case Once:
		if d.TimeOfDay != nil {
			return "once at " + d.TimeOfDay.String()
		}
		return "once"
	case Daily:
		if d.TimeOfDay != nil {
			return "daily at " + d.TimeOfDay.String()
		}
		return "daily"
	case Weekly:
		s := "weekly"
		if d.Weekday != nil {
			s += " on " + d.Weekday.String()
		}
		if d.TimeOfDay != nil {
			s += " at " + d.TimeOfDay.String()
		}
		return s
	case LimitedInterval:
		return fmt.Sprintf("%d times every %s", d.Repeat, d.Interval)
	default:
		return "immediately"
	}
}
