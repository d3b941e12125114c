package indicator

import "math"

// Value is a nullable indicator value. Indicators are undefined until their
// window has accumulated enough history; an absent value is a first-class
// output state, not zero and not an error.
type Value struct {
	Float64 float64
	Valid   bool
}

// Some returns a present value.
func Some(f float64) Value {
	return Value{Float64: f, Valid: true}
}

// None returns an absent value.
func None() Value {
	return Value{}
}

// IsFinite reports whether the value is present and a real number.
func (v Value) IsFinite() bool {
	return v.Valid && !math.IsNaN(v.Float64) && !math.IsInf(v.Float64, 0)
}

// Series is a sequence of nullable values aligned 1:1 with its input bars.
type Series []Value

// Last returns the final value of the series, or an absent value when empty.
func (s Series) Last() Value {
	if len(s) == 0 {
		return None()
	}
	return s[len(s)-1]
}
