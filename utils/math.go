package utils

import (
	"math"
)

// Fl is the floating point type used for every length.
type Fl = float32

func MinInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func MaxInt(x, y int) int {
	if x > y {
		return x
	}
	return y
}

func MinF(x, y Fl) Fl {
	if x < y {
		return x
	}
	return y
}

func MaxF(x, y Fl) Fl {
	if x > y {
		return x
	}
	return y
}

// Maxs panics on an empty list.
func Maxs(values ...Fl) Fl {
	max := values[0]
	for _, w := range values {
		if w > max {
			max = w
		}
	}
	return max
}

func Mins(values ...Fl) Fl {
	min := values[0]
	for _, w := range values {
		if w < min {
			min = w
		}
	}
	return min
}

// Sum returns the sum of the values, 0 for an empty list.
func Sum(values []Fl) Fl {
	var out Fl
	for _, v := range values {
		out += v
	}
	return out
}

// Clamp restricts v to [min, max]; min wins when min > max.
func Clamp(v, min, max Fl) Fl {
	if v > max {
		v = max
	}
	if v < min {
		v = min
	}
	return v
}

func Floor(x Fl) Fl {
	return Fl(math.Floor(float64(x)))
}

// RoundPrec rounds f with n digits precision
func RoundPrec(f Fl, n int) Fl {
	n10 := math.Pow10(n)
	return Fl(math.Round(float64(f)*n10) / n10)
}

// Round rounds f with 6 digits precision
func Round(f Fl) Fl {
	return RoundPrec(f, 6)
}

func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
