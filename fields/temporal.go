package fields

import (
	"context"
	"time"

	structema "github.com/reoring/structema"
	js "github.com/reoring/structema/jsonschema"
)

// Format aliases accepted by DateTime in Opts.Format. Anything else is
// treated as a Go reference layout.
const (
	FormatDate  = "date"
	FormatClock = "clock"
)

// DateTime validates timestamps wired as strings. The default layout is RFC
// 3339; Opts.Format selects the "date"/"clock" aliases or a custom layout.
type DateTime struct {
	Base
	layout string
}

// NewDateTime returns a DateTime descriptor.
func NewDateTime(o Opts) *DateTime {
	layout := time.RFC3339Nano
	switch o.Format {
	case "":
	case FormatDate:
		layout = "2006-01-02"
	case FormatClock:
		layout = "15:04:05"
	default:
		layout = o.Format
	}
	return &DateTime{Base: Base{Opt: o}, layout: layout}
}

func (f *DateTime) Deserialize(ctx context.Context, v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		out, err := time.Parse(f.layout, t)
		if err != nil {
			return nil, invalidFormat(f.layout, err)
		}
		return out, nil
	}
	return nil, invalidType("date-time string", v)
}

func (f *DateTime) Serialize(ctx context.Context, v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, invalidType("time.Time", v)
	}
	return t.Format(f.layout), nil
}

func (f *DateTime) JSONSchema() (*js.Schema, error) {
	format := "date-time"
	switch f.Opt.Format {
	case FormatDate:
		format = "date"
	case FormatClock:
		format = "time"
	}
	return f.skeleton("string", format), nil
}

// Date validates calendar dates (structema.Date) wired as "2006-01-02".
type Date struct{ Base }

// NewDate returns a Date descriptor.
func NewDate(o Opts) *Date { return &Date{Base{Opt: o}} }

func (f *Date) Deserialize(ctx context.Context, v any) (any, error) {
	switch d := v.(type) {
	case structema.Date:
		return d, nil
	case time.Time:
		return structema.DateOf(d), nil
	case string:
		out, err := structema.ParseDate(d)
		if err != nil {
			return nil, invalidFormat("2006-01-02", err)
		}
		return out, nil
	}
	return nil, invalidType("date string", v)
}

func (f *Date) Serialize(ctx context.Context, v any) (any, error) {
	switch d := v.(type) {
	case structema.Date:
		return d.String(), nil
	case time.Time:
		return structema.DateOf(d).String(), nil
	}
	return nil, invalidType("structema.Date", v)
}

func (f *Date) JSONSchema() (*js.Schema, error) { return f.skeleton("string", "date"), nil }

// Clock validates times-of-day (structema.Clock) wired as "15:04:05".
type Clock struct{ Base }

// NewClock returns a Clock descriptor.
func NewClock(o Opts) *Clock { return &Clock{Base{Opt: o}} }

func (f *Clock) Deserialize(ctx context.Context, v any) (any, error) {
	switch c := v.(type) {
	case structema.Clock:
		return c, nil
	case time.Time:
		return structema.ClockOf(c), nil
	case string:
		out, err := structema.ParseClock(c)
		if err != nil {
			return nil, invalidFormat("15:04:05", err)
		}
		return out, nil
	}
	return nil, invalidType("clock string", v)
}

func (f *Clock) Serialize(ctx context.Context, v any) (any, error) {
	switch c := v.(type) {
	case structema.Clock:
		return c.String(), nil
	case time.Time:
		return structema.ClockOf(c).String(), nil
	}
	return nil, invalidType("structema.Clock", v)
}

func (f *Clock) JSONSchema() (*js.Schema, error) { return f.skeleton("string", "time"), nil }

// Duration validates time spans wired as Go duration strings ("1h30m").
// Bare numbers are accepted on load and read as seconds.
type Duration struct{ Base }

// NewDuration returns a Duration descriptor.
func NewDuration(o Opts) *Duration { return &Duration{Base{Opt: o}} }

func (f *Duration) Deserialize(ctx context.Context, v any) (any, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		out, err := time.ParseDuration(d)
		if err != nil {
			return nil, invalidFormat("duration string", err)
		}
		return out, nil
	case float64:
		return time.Duration(d * float64(time.Second)), nil
	case int:
		return time.Duration(d) * time.Second, nil
	case int64:
		return time.Duration(d) * time.Second, nil
	}
	return nil, invalidType("duration string", v)
}

func (f *Duration) Serialize(ctx context.Context, v any) (any, error) {
	d, ok := v.(time.Duration)
	if !ok {
		return nil, invalidType("time.Duration", v)
	}
	return d.String(), nil
}

func (f *Duration) JSONSchema() (*js.Schema, error) { return f.skeleton("string", "duration"), nil }
