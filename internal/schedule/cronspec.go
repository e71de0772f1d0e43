package schedule

import (
	"errors"
	"fmt"
)

// ErrNotRecurring indicates the descriptor has no cron representation.
var ErrNotRecurring = errors.New("schedule: descriptor is not recurring")

// CronSpec converts a Daily or Weekly descriptor into a 5-field cron
// expression. When the descriptor carries no time of day, defaultHour is
// used (the parser leaves the default to its caller).
func CronSpec(d Descriptor, defaultHour int) (string, error) {
	hour, minute := defaultHour, 0
	if d.TimeOfDay != nil {
		hour, minute = d.TimeOfDay.Hour, d.TimeOfDay.Minute
	}

	switch d.Kind {
	case Daily:
		return fmt.Sprintf("%d %d * * *", minute, hour), nil
	case Weekly:
		if d.Weekday == nil {
			return "", errors.New("schedule: weekly descriptor without weekday")
		}
		// time.Weekday and cron both number Sunday as 0.
		return fmt.Sprintf("%d %d * * %d", minute, hour, int(*d.Weekday)), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotRecurring, d.Kind)
	}
}
