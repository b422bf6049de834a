package builtins

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jcormont/expression-runner/object"
)

var errInvalidDate = fmt.Errorf("Invalid time value")

// Date creates a date. With no arguments it returns the current time. A
// single argument is a date, a number of milliseconds since the epoch, or a
// date string. Two or more arguments are the year, month (from 0), day,
// hours, minutes, seconds and milliseconds in local time.
func Date(ctx context.Context, args ...object.Object) (object.Object, error) {
	switch len(args) {
	case 0:
		return object.NewTime(time.Now()), nil
	case 1:
		switch v := args[0].(type) {
		case *object.Time:
			return object.NewTime(v.Value()), nil
		case *object.String:
			t, ok := parseDate(v.Value())
			if !ok {
				return nil, errInvalidDate
			}
			return object.NewTime(t.In(time.Local)), nil
		}
		ms := object.ToNumber(args[0])
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			return nil, errInvalidDate
		}
		return object.TimeFromMillis(ms, time.Local), nil
	}
	t, err := dateFromFields(args, time.Local)
	if err != nil {
		return nil, err
	}
	return object.NewTime(t), nil
}

// DateUTC is Date with fields given in UTC.
func DateUTC(ctx context.Context, args ...object.Object) (object.Object, error) {
	t, err := dateFromFields(args, time.UTC)
	if err != nil {
		return nil, err
	}
	return object.NewTime(t.In(time.Local)), nil
}

// Now returns the number of milliseconds since the epoch.
func Now(ctx context.Context, args ...object.Object) (object.Object, error) {
	return number(float64(time.Now().UnixMilli())), nil
}

func dateFromFields(args []object.Object, loc *time.Location) (time.Time, error) {
	// year, month, day, hours, minutes, seconds, milliseconds
	fields := [7]int{0, 0, 1, 0, 0, 0, 0}
	for i := 0; i < len(fields) && i < len(args); i++ {
		f := object.ToIntegerOrInfinity(args[i])
		if math.IsInf(f, 0) || math.IsNaN(object.ToNumber(args[i])) {
			return time.Time{}, errInvalidDate
		}
		fields[i] = int(f)
	}
	if fields[0] >= 0 && fields[0] <= 99 {
		fields[0] += 1900
	}
	return time.Date(fields[0], time.Month(fields[1]+1), fields[2],
		fields[3], fields[4], fields[5], fields[6]*int(time.Millisecond), loc), nil
}

// Layouts of the date time string format. Date only forms are UTC; date
// time forms without an offset are local time.
var (
	dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

	offsetLayouts = []string{
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04Z07:00",
		"Mon Jan 02 2006 15:04:05 GMT-0700",
		time.RFC1123,
		time.RFC1123Z,
	}

	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
)

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
