// Package properties defines the resolved style record consumed by the layout
// engine: every length is either in pixels, a percentage, or a keyword.
package properties

import (
	"fmt"
	"math"

	"github.com/benoitkugler/boxlayout/utils"
)

type Fl = utils.Fl

type Float Fl

// Inf is used for unbounded sizes, like "max-width: none".
var Inf = Float(math.Inf(+1))

// MaybeFloat is either a Float or AutoF
type MaybeFloat interface {
	V() Float
}

// V returns the float value.
func (f Float) V() Float { return f }

type auto struct{}

// V returns 0
func (auto) V() Float { return 0 }

func (auto) String() string { return "auto" }

// AutoF is the "auto" used value.
var AutoF MaybeFloat = auto{}

// IsAuto returns true if v is AutoF (or nil).
func IsAuto(v MaybeFloat) bool {
	return v == nil || v == AutoF
}

func MaxF(a, b Float) Float {
	if a > b {
		return a
	}
	return b
}

func MinF(a, b Float) Float {
	if a < b {
		return a
	}
	return b
}

type Unit uint8

const (
	Px Unit = iota // zero value: a Dimension{} is 0px
	Perc
	Scalar // means no unit, but a valid value
	Em
	Ex
	Rem
	Pt
	Pc
	In
	Cm
	Mm
	Q
)

func (u Unit) String() string {
	switch u {
	case Scalar:
		return ""
	case Perc:
		return "%"
	case Px:
		return "px"
	case Em:
		return "em"
	case Ex:
		return "ex"
	case Rem:
		return "rem"
	case Pt:
		return "pt"
	case Pc:
		return "pc"
	case In:
		return "in"
	case Cm:
		return "cm"
	case Mm:
		return "mm"
	case Q:
		return "q"
	default:
		return "<invalid unit>"
	}
}

// LengthsToPixels maps absolute units to their size in px.
var LengthsToPixels = map[Unit]Float{
	Px: 1,
	Pt: 4. / 3.,
	Pc: 16,
	In: 96,
	Cm: 96. / 2.54,
	Mm: 96. / 25.4,
	Q:  96. / 25.4 / 4.,
}

// Dimension without unit is interpreted as float
type Dimension struct {
	Value Float
	Unit  Unit
}

func (d Dimension) String() string {
	return fmt.Sprintf("<%g %s>", d.Value, d.Unit)
}

// Value is either a keyword (S is not empty) or a Dimension.
type Value struct {
	S string
	Dimension
}

func (v Value) String() string {
	if v.S != "" {
		return v.S
	}
	return fmt.Sprintf("%g%s", v.Value, v.Unit)
}

// IsAuto returns true for the "auto" keyword.
func (v Value) IsAuto() bool { return v.S == "auto" }

// IsNone returns true for the "none" keyword.
func (v Value) IsNone() bool { return v.S == "none" }

// IsPerc returns true for a percentage.
func (v Value) IsPerc() bool { return v.S == "" && v.Unit == Perc }

// FToPx returns a pixel length.
func FToPx(f Float) Value { return Value{Dimension: Dimension{Value: f, Unit: Px}} }

// PercToV returns a percentage.
func PercToV(f Float) Value { return Value{Dimension: Dimension{Value: f, Unit: Perc}} }

// ScalarToV returns a number without unit, like a line-height factor.
func ScalarToV(f Float) Value { return Value{Dimension: Dimension{Value: f, Unit: Scalar}} }

// SToV returns a keyword.
func SToV(s string) Value { return Value{S: s} }

// ResoudPercentage resolves [v] against [ref]. Keywords
// return AutoF.
func ResoudPercentage(v Value, ref Float) MaybeFloat {
	if v.S != "" {
		return AutoF
	}
	if v.Unit == Perc {
		return v.Value * ref / 100
	}
	return v.Value
}
