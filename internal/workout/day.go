package workout

import (
	"fmt"
	"strings"
)

type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

const DaysInWeek = 7

// Week holds the weekdays in display order.
var Week = [DaysInWeek]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay accepts a full weekday name or its three letter prefix, case-insensitive.
func ParseDay(s string) (Day, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		for _, d := range Week {
			name := strings.ToLower(string(d))
			if s == name || s == name[:3] {
				return d, nil
			}
		}
	}
	return "", &ValidationError{Field: "day", Message: fmt.Sprintf("unknown day [%s]", s)}
}

func (d Day) Valid() bool {
	return d.Index() >= 0
}

// Index returns the position of the day in Week, or -1 for unknown days.
func (d Day) Index() int {
	for i, wd := range Week {
		if wd == d {
			return i
		}
	}
	return -1
}
