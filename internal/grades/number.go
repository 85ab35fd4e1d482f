package grades

import (
	"bytes"
	"encoding/json"
	"math"
)

// Number is a float64 that survives JSON encoding when it is NaN or infinite.
// Such values are written as null, and null reads back as NaN.
type Number float64

// NaN returns a Number holding not-a-number.
func NaN() Number {
	return Number(math.NaN())
}

// Float64 returns the raw value.
func (n Number) Float64() float64 {
	return float64(n)
}

// Defined reports whether n is a finite value.
func (n Number) Defined() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(n))
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}
