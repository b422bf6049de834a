package object

import (
	"context"
	"time"
)

// Time is a date value. Local getters use the location of the wrapped
// time; the UTC getters convert first.
type Time struct {
	value time.Time
}

// NewTime wraps t.
func NewTime(t time.Time) *Time {
	return &Time{value: t}
}

// TimeFromMillis returns the date at the given number of milliseconds since
// the Unix epoch, in the given location.
func TimeFromMillis(ms float64, loc *time.Location) *Time {
	return &Time{value: time.UnixMilli(int64(ms)).In(loc)}
}

func (t *Time) Type() Type               { return TIME }
func (t *Time) Value() time.Time         { return t.value }
func (t *Time) Interface() any           { return t.value }
func (t *Time) IsTruthy() bool           { return true }
func (t *Time) String() string           { return t.Inspect() }
func (t *Time) Equals(other Object) bool { return t == other }

// Inspect formats the date the way Date.prototype.toString does, without
// the time zone name.
func (t *Time) Inspect() string {
	return t.value.Format("Mon Jan 02 2006 15:04:05 GMT-0700")
}

// ISOString formats the date in UTC with millisecond precision.
func (t *Time) ISOString() string {
	return t.value.UTC().Format("2006-01-02T15:04:05.000Z")
}

func (t *Time) GetAttr(name string) (Object, bool) {
	return timeAttrs.GetAttr(t, name)
}

func (t *Time) SetAttr(name string, value Object) error {
	return readOnlyError(t, name)
}

var timeAttrs = NewAttrRegistry[*Time]("date")

func defineTimeGetter(name, doc string, fn func(time.Time) int) {
	timeAttrs.Define(name).
		Doc(doc).
		Returns("number").
		Impl(func(t *Time, ctx context.Context, args ...Object) (Object, error) {
			return NewNumber(float64(fn(t.value))), nil
		})
}

func init() {
	timeAttrs.Define("getTime").
		Doc("Milliseconds since the Unix epoch").
		Returns("number").
		Impl(func(t *Time, ctx context.Context, args ...Object) (Object, error) {
			return NewNumber(float64(t.value.UnixMilli())), nil
		})

	local := func(fn func(time.Time) int) func(time.Time) int { return fn }
	utc := func(fn func(time.Time) int) func(time.Time) int {
		return func(t time.Time) int { return fn(t.UTC()) }
	}
	year := func(t time.Time) int { return t.Year() }
	month := func(t time.Time) int { return int(t.Month()) - 1 }
	day := func(t time.Time) int { return t.Day() }
	weekday := func(t time.Time) int { return int(t.Weekday()) }
	hours := func(t time.Time) int { return t.Hour() }
	minutes := func(t time.Time) int { return t.Minute() }
	seconds := func(t time.Time) int { return t.Second() }
	millis := func(t time.Time) int { return t.Nanosecond() / int(time.Millisecond) }

	defineTimeGetter("getFullYear", "Year", local(year))
	defineTimeGetter("getUTCFullYear", "Year in UTC", utc(year))
	defineTimeGetter("getMonth", "Month, from 0 for January", local(month))
	defineTimeGetter("getUTCMonth", "Month in UTC, from 0 for January", utc(month))
	defineTimeGetter("getDate", "Day of the month", local(day))
	defineTimeGetter("getUTCDate", "Day of the month in UTC", utc(day))
	defineTimeGetter("getDay", "Day of the week, from 0 for Sunday", local(weekday))
	defineTimeGetter("getUTCDay", "Day of the week in UTC, from 0 for Sunday", utc(weekday))
	defineTimeGetter("getHours", "Hours", local(hours))
	defineTimeGetter("getUTCHours", "Hours in UTC", utc(hours))
	defineTimeGetter("getMinutes", "Minutes", local(minutes))
	defineTimeGetter("getUTCMinutes", "Minutes in UTC", utc(minutes))
	defineTimeGetter("getSeconds", "Seconds", local(seconds))
	defineTimeGetter("getUTCSeconds", "Seconds in UTC", utc(seconds))
	defineTimeGetter("getMilliseconds", "Milliseconds", local(millis))
	defineTimeGetter("getUTCMilliseconds", "Milliseconds in UTC", utc(millis))
	defineTimeGetter("getTimezoneOffset", "Minutes from local time to UTC", func(t time.Time) int {
		_, offset := t.Zone()
		return -offset / 60
	})

	timeAttrs.Define("toISOString").
		Doc("Date in ISO 8601 format, in UTC").
		Returns("string").
		Impl(func(t *Time, ctx context.Context, args ...Object) (Object, error) {
			return NewString(t.ISOString()), nil
		})
}
