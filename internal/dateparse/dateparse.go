// Package dateparse parses the date inputs staff type on the command line
// and converts reservation date-times between the backend's UTC instants and
// the separate date and hour fields used by forms.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the form date layout (YYYY-MM-DD)
	DateLayout = "2006-01-02"
	// HourLayout is the form hour layout (HH:MM)
	HourLayout = "15:04"
	// ISOLayout matches the millisecond UTC shape the backend emits
	ISOLayout = "2006-01-02T15:04:05.000Z"
)

var dayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"domingo":   time.Sunday,
	"monday":    time.Monday,
	"lunes":     time.Monday,
	"tuesday":   time.Tuesday,
	"martes":    time.Tuesday,
	"wednesday": time.Wednesday,
	"miercoles": time.Wednesday,
	"miércoles": time.Wednesday,
	"thursday":  time.Thursday,
	"jueves":    time.Thursday,
	"friday":    time.Friday,
	"viernes":   time.Friday,
	"saturday":  time.Saturday,
	"sabado":    time.Saturday,
	"sábado":    time.Saturday,
}

// ParseDate parses a date input relative to the current UTC day.
//
// Supported formats:
//   - Exact dates: "2026-03-01", "01/03/2026"
//   - Relative days/weeks/months: "+7d", "+2w", "+1m"
//   - Day names: "friday", "viernes" (next occurrence)
//   - Keywords: "today"/"hoy", "tomorrow"/"mañana", "next-week"
func ParseDate(input string) (string, error) {
	return ParseDateFrom(input, time.Now().UTC())
}

// ParseDateFrom parses a date input relative to the given reference time.
func ParseDateFrom(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return "", fmt.Errorf("empty date input")
	}

	if t, err := time.Parse(DateLayout, input); err == nil {
		return formatDate(t), nil
	}
	if t, err := time.Parse("02/01/2006", input); err == nil {
		return formatDate(t), nil
	}

	switch input {
	case "today", "hoy":
		return formatDate(now), nil
	case "tomorrow", "mañana", "manana":
		return formatDate(now.AddDate(0, 0, 1)), nil
	case "next-week":
		daysUntilMonday := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		if daysUntilMonday == 0 {
			daysUntilMonday = 7
		}
		return formatDate(now.AddDate(0, 0, daysUntilMonday)), nil
	}

	if strings.HasPrefix(input, "+") && len(input) >= 3 {
		suffix := input[len(input)-1]
		n, err := strconv.Atoi(input[1 : len(input)-1])
		if err == nil && n >= 0 {
			switch suffix {
			case 'd':
				return formatDate(now.AddDate(0, 0, n)), nil
			case 'w':
				return formatDate(now.AddDate(0, 0, n*7)), nil
			case 'm':
				return formatDate(now.AddDate(0, n, 0)), nil
			default:
				return "", fmt.Errorf("unknown relative unit %q in %q (use d, w, or m)", string(suffix), input)
			}
		}
	}

	if target, ok := dayNames[input]; ok {
		daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7
		}
		return formatDate(now.AddDate(0, 0, daysAhead)), nil
	}

	return "", fmt.Errorf("unrecognized date format: %q", input)
}

// ParseHour validates an HH:MM hour and returns it normalized
func ParseHour(input string) (string, error) {
	t, err := time.Parse(HourLayout, strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("invalid hour %q (use HH:MM)", input)
	}
	return t.Format(HourLayout), nil
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}
