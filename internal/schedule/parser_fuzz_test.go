package schedule_test

import (
	"testing"

	"github.com/flemzord/errand/internal/schedule"
)

func FuzzParse(f *testing.F) {
	f.Add("Send me 3 LeetCode problems daily at 9am")
	f.Add("now 3 times with 5 min gap")
	f.Add("every monday at 8pm")
	f.Add("at 25:00")
	f.Add("at 9:75")
	f.Add("")
	f.Add("每天早上九点")
	f.Add("at at at 12 12 12 am pm")

	f.Fuzz(func(t *testing.T, input string) {
		// Parse is total: it must never panic, and whatever it returns must
		// satisfy the kind/field invariants.
		d := schedule.Parse(input)

		if d.TimeOfDay != nil {
			tod := d.TimeOfDay
			if tod.Hour < 0 || tod.Hour > 23 || tod.Minute < 0 || tod.Minute > 59 {
				t.Fatalf("Parse(%q): time out of range: %+v", input, tod)
			}
		}

		switch d.Kind {
		case schedule.Immediate:
			if d.TimeOfDay != nil || d.Weekday != nil || d.Interval != 0 || d.Repeat != 0 {
				t.Fatalf("Parse(%q): immediate descriptor with extra fields: %+v", input, d)
			}
		case schedule.Once:
			if d.TimeOfDay == nil {
				t.Fatalf("Parse(%q): once descriptor without time", input)
			}
		case schedule.Weekly:
			if d.Weekday == nil {
				t.Fatalf("Parse(%q): weekly descriptor without weekday", input)
			}
		case schedule.LimitedInterval:
			if d.Interval <= 0 || d.Repeat < 1 {
				t.Fatalf("Parse(%q): invalid interval descriptor: %+v", input, d)
			}
		}
	})
}
