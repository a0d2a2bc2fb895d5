// Package form adapts a range model to a generic form control: value
// access, disabled/touched/dirty state and validation.
package form

import (
	"errors"
	"fmt"
	"time"

	"github.com/jask/rangepick/internal/dateadapter"
	"github.com/jask/rangepick/internal/daterange"
)

// Selection is the value type of a range control.
type Selection = daterange.Selection[time.Time]

// Validator checks a selection and returns a descriptive error when it fails.
type Validator func(Selection) error

var (
	ErrRequired    = errors.New("a date range is required")
	ErrBeforeMin   = errors.New("range starts before the earliest allowed date")
	ErrAfterMax    = errors.New("range ends after the latest allowed date")
	ErrSpanTooLong = errors.New("range is longer than allowed")
)

// Control exposes a range model through a form-binding surface.
type Control struct {
	model      *daterange.Model[time.Time]
	validators []Validator

	disabled bool
	touched  bool
	dirty    bool
	errs     error

	onChange    []func(Selection)
	onTouched   []func()
	unsubscribe daterange.Unsubscribe
}

func NewControl(model *daterange.Model[time.Time], validators ...Validator) *Control {
	c := &Control{model: model, validators: validators}
	c.unsubscribe = model.Subscribe(func(Selection) {
		c.dirty = true
		c.errs = c.run()
		cur := c.model.Current()
		for _, fn := range c.onChange {
			fn(cur)
		}
	})
	c.errs = c.run()
	return c
}

// Release detaches the control from its model.
func (c *Control) Release() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Value returns the model's normalized selection.
func (c *Control) Value() Selection { return c.model.Current() }

// SetValue writes v from the form side. It always notifies so bound views
// refresh even when the day values did not change. Disabled controls ignore
// writes.
func (c *Control) SetValue(v Selection) {
	if c.disabled {
		return
	}
	c.model.Select(v, true)
}

// OnChange registers fn to run with the normalized value after every change.
func (c *Control) OnChange(fn func(Selection)) { c.onChange = append(c.onChange, fn) }

// OnTouched registers fn to run the first time the control is touched.
func (c *Control) OnTouched(fn func()) { c.onTouched = append(c.onTouched, fn) }

// SetDisabled toggles the control. A disabled control reports no errors.
func (c *Control) SetDisabled(v bool) {
	c.disabled = v
	c.errs = c.run()
}

func (c *Control) Disabled() bool { return c.disabled }
func (c *Control) Dirty() bool    { return c.dirty }
func (c *Control) Touched() bool  { return c.touched }

// MarkTouched flags the control as visited.
func (c *Control) MarkTouched() {
	if c.touched {
		return
	}
	c.touched = true
	for _, fn := range c.onTouched {
		fn()
	}
}

// Errors returns the validation result as of the last change.
func (c *Control) Errors() error { return c.errs }

func (c *Control) Valid() bool { return c.errs == nil }

// Validate reruns every validator against the current value.
func (c *Control) Validate() error {
	c.errs = c.run()
	return c.errs
}

func (c *Control) run() error {
	if c.disabled {
		return nil
	}
	cur := c.model.Current()
	var errs []error
	for _, v := range c.validators {
		if err := v(cur); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Required fails for an empty selection.
func Required() Validator {
	return func(s Selection) error {
		if s.From == nil || s.To == nil {
			return ErrRequired
		}
		return nil
	}
}

// MinDate fails when the range starts before earliest.
func MinDate(a *dateadapter.Adapter, earliest time.Time) Validator {
	return func(s Selection) error {
		if s.From != nil && a.Compare(*s.From, earliest) < 0 {
			return fmt.Errorf("%w: %s", ErrBeforeMin, a.Format(earliest))
		}
		return nil
	}
}

// MaxDate fails when the range ends after latest.
func MaxDate(a *dateadapter.Adapter, latest time.Time) Validator {
	return func(s Selection) error {
		if s.To != nil && a.Compare(*s.To, latest) > 0 {
			return fmt.Errorf("%w: %s", ErrAfterMax, a.Format(latest))
		}
		return nil
	}
}

// MaxSpan fails when the inclusive range covers more than days days.
func MaxSpan(a *dateadapter.Adapter, days int) Validator {
	return func(s Selection) error {
		if s.From == nil || s.To == nil {
			return nil
		}
		if n := SpanDays(a, *s.From, *s.To); n > days {
			return fmt.Errorf("%w: %d days, limit %d", ErrSpanTooLong, n, days)
		}
		return nil
	}
}

// SpanDays counts the days of the inclusive range from..to.
func SpanDays(a *dateadapter.Adapter, from, to time.Time) int {
	f, t := a.Day(from), a.Day(to)
	// Re-anchor in UTC so DST transitions don't shorten a day.
	fu := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	tu := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(tu.Sub(fu).Hours()/24) + 1
}
