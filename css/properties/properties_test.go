package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResoudPercentage(t *testing.T) {
	assert.Equal(t, AutoF, ResoudPercentage(SToV("auto"), 100))
	assert.Equal(t, MaybeFloat(Float(25)), ResoudPercentage(PercToV(25), 100))
	assert.Equal(t, MaybeFloat(Float(12)), ResoudPercentage(FToPx(12), 100))
	assert.True(t, IsAuto(nil))
	assert.True(t, IsAuto(AutoF))
	assert.False(t, IsAuto(Float(0)))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "auto", SToV("auto").String())
	assert.Equal(t, "12px", FToPx(12).String())
	assert.Equal(t, "50%", PercToV(50).String())
	assert.Equal(t, "1.5", ScalarToV(1.5).String())
	assert.True(t, PercToV(3).IsPerc())
	assert.False(t, SToV("none").IsPerc())
}

func TestInherit(t *testing.T) {
	parent := InitialStyle()
	parent.Font.Size = 20
	parent.WhiteSpace = "pre"
	parent.MarginTop = FToPx(10)
	parent.Display = "block"

	child := AnonymousStyle(&parent)
	assert.Equal(t, Float(20), child.Font.Size)
	assert.Equal(t, "pre", child.WhiteSpace)
	assert.Equal(t, FToPx(0), child.MarginTop)
	assert.Equal(t, "inline", child.Display)
}

func TestFlowPredicates(t *testing.T) {
	s := InitialStyle()
	assert.True(t, s.IsInNormalFlow())
	s.Float = "left"
	assert.True(t, s.IsFloated())
	assert.False(t, s.IsInNormalFlow())
	s.Float = "none"
	s.Position = "fixed"
	assert.True(t, s.IsAbsolutelyPositioned())
	assert.True(t, s.IsPositioned())
}
