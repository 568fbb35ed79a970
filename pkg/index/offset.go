package index

import (
	"time"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Offset moves a label by a number of periods. It is the narrow interface
// through which label-based shifts consume calendar arithmetic.
type Offset interface {
	Apply(label Label, periods int) (Label, error)
}

// OffsetFunc adapts a function to the Offset interface
type OffsetFunc func(label Label, periods int) (Label, error)

// Apply calls f
func (f OffsetFunc) Apply(label Label, periods int) (Label, error) {
	return f(label, periods)
}

// Step shifts numeric labels by periods*Step
type Step float64

// Apply implements Offset
func (s Step) Apply(label Label, periods int) (Label, error) {
	switch v := Normalize(label).(type) {
	case int64:
		if float64(s) == float64(int64(s)) {
			return v + int64(periods)*int64(s), nil
		}
		return float64(v) + float64(periods)*float64(s), nil
	case float64:
		return v + float64(periods)*float64(s), nil
	}
	return nil, errors.New(errors.ErrorTypeValidation, "step offset requires numeric labels").
		WithDetail("label", label)
}

// Duration shifts time labels by periods*Duration
type Duration time.Duration

// Apply implements Offset
func (d Duration) Apply(label Label, periods int) (Label, error) {
	t, ok := Normalize(label).(time.Time)
	if !ok {
		return nil, errors.New(errors.ErrorTypeValidation, "duration offset requires time labels").
			WithDetail("label", label)
	}
	return t.Add(time.Duration(periods) * time.Duration(d)), nil
}

// Calendar shifts time labels by whole calendar units using time.AddDate
type Calendar struct {
	Years  int
	Months int
	Days   int
}

// Apply implements Offset
func (c Calendar) Apply(label Label, periods int) (Label, error) {
	t, ok := Normalize(label).(time.Time)
	if !ok {
		return nil, errors.New(errors.ErrorTypeValidation, "calendar offset requires time labels").
			WithDetail("label", label)
	}
	return t.AddDate(c.Years*periods, c.Months*periods, c.Days*periods), nil
}

// Shift applies offset to every label of the index
func (x *Index) Shift(periods int, offset Offset) (*Index, error) {
	if offset == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "shift requires an offset")
	}
	return x.Map(func(l Label) (Label, error) {
		return offset.Apply(l, periods)
	})
}
