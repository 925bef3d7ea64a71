package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Rate is a derived quantity that may be undefined, for example a kill time
// when nothing was killed. The zero value is undefined. A Rate never holds
// NaN or an infinity.
type Rate struct {
	v  float64
	ok bool
}

// Undefined is the undefined Rate.
var Undefined = Rate{}

// Of wraps v; NaN and infinities become Undefined.
func Of(v float64) Rate {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return Rate{v: v, ok: true}
}

// Div returns num/den, undefined when den is zero.
func Div(num, den float64) Rate {
	if den == 0 {
		return Undefined
	}
	return Of(num / den)
}

// Value returns the value and whether it is defined.
func (r Rate) Value() (float64, bool) {
	return r.v, r.ok
}

// Defined reports whether the rate has a value.
func (r Rate) Defined() bool {
	return r.ok
}

// Or returns the value, or fallback when undefined.
func (r Rate) Or(fallback float64) float64 {
	if !r.ok {
		return fallback
	}
	return r.v
}

// Mul scales a defined rate.
func (r Rate) Mul(f float64) Rate {
	if !r.ok {
		return Undefined
	}
	return Of(r.v * f)
}

// Times multiplies two rates.
func (r Rate) Times(o Rate) Rate {
	if !r.ok || !o.ok {
		return Undefined
	}
	return Of(r.v * o.v)
}

// Plus adds two rates.
func (r Rate) Plus(o Rate) Rate {
	if !r.ok || !o.ok {
		return Undefined
	}
	return Of(r.v + o.v)
}

// Over divides by o; undefined if either side is undefined or o is zero.
func (r Rate) Over(o Rate) Rate {
	if !r.ok || !o.ok {
		return Undefined
	}
	return Div(r.v, o.v)
}

// Inverse returns 1/r.
func (r Rate) Inverse() Rate {
	return Of(1).Over(r)
}

func (r Rate) String() string {
	if !r.ok {
		return "-"
	}
	return strconv.FormatFloat(r.v, 'g', 6, 64)
}

// MarshalJSON encodes an undefined rate as null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return []byte("null"), nil
	}
	return json.Marshal(r.v)
}

// UnmarshalJSON accepts a number or null.
func (r *Rate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Of(v)
	return nil
}
