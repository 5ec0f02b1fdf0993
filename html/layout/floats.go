package layout

import (
	"math"
	"sort"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
)

// floatRecord is a float placed in a block formatting context.
type floatRecord struct {
	Box     *bo.Box
	Side    string // "left" or "right"
	Clear   string
	Context int // id of the formatting context
}

func (f floatRecord) top() pr.Float    { return f.Box.PositionY }
func (f floatRecord) bottom() pr.Float { return f.Box.PositionY + f.Box.MarginHeight() }

type bandKey struct{ y, height pr.Float }

// band is the horizontal extent left free by the floats: left is the
// right edge of the left floats, right the left edge of the right floats.
type band struct{ left, right pr.Float }

var negInf = pr.Float(math.Inf(-1))

// floatManager stores the floats of a floats holder, that is a box
// establishing a new block formatting context. Positions are absolute,
// read from the float boxes, so that translating a float is
// enough to move it, provided the memo is dropped with [invalidate].
type floatManager struct {
	id     int
	floats []floatRecord
	memo   map[bandKey]band
}

func newFloatManager(id int) *floatManager {
	return &floatManager{id: id, memo: make(map[bandKey]band)}
}

// invalidate drops the memo. It must be called when a float is moved.
func (fm *floatManager) invalidate() {
	if len(fm.memo) != 0 {
		fm.memo = make(map[bandKey]band)
	}
}

// rawBand returns the free band for the vertical segment [y, y+height),
// or at y when height is 0, without clamping.
func (fm *floatManager) rawBand(y, height pr.Float) band {
	key := bandKey{y, height}
	if b, ok := fm.memo[key]; ok {
		return b
	}
	out := band{left: negInf, right: pr.Inf}
	for _, f := range fm.floats {
		top, bottom := f.top(), f.bottom()
		intersects := top <= y && y < bottom
		if height > 0 {
			intersects = top < y+height && y < bottom
		}
		if !intersects || f.Box.MarginHeight() <= 0 {
			continue
		}
		if f.Side == "left" {
			out.left = pr.MaxF(out.left, f.Box.PositionX+f.Box.MarginWidth())
		} else {
			out.right = pr.MinF(out.right, f.Box.PositionX)
		}
	}
	fm.memo[key] = out
	return out
}

// bandAt returns the horizontal band free at y, clamped to [left, right].
// The result always verifies l <= r.
func (fm *floatManager) bandAt(y, left, right pr.Float) (l, r pr.Float) {
	return fm.bandOver(y, 0, left, right)
}

// bandOver is like bandAt, for the segment [y, y+height).
func (fm *floatManager) bandOver(y, height, left, right pr.Float) (l, r pr.Float) {
	b := fm.rawBand(y, height)
	l, r = pr.MaxF(left, b.left), pr.MinF(right, b.right)
	if r < l {
		r = l
	}
	return l, r
}

// intrudes returns true if a float overlaps the segment [y, y+height)
// inside [left, right].
func (fm *floatManager) intrudes(y, height, left, right pr.Float) bool {
	b := fm.rawBand(y, height)
	return b.left > left || b.right < right
}

// height returns the bottom of the floats on [side]
// ("left", "right" or "both"), and false if there are none.
func (fm *floatManager) height(side string) (pr.Float, bool) {
	out, found := negInf, false
	for _, f := range fm.floats {
		if side == "both" || side == f.Side {
			out = pr.MaxF(out, f.bottom())
			found = true
		}
	}
	return out, found
}

// clearance returns the position below the floats cleared by [clear].
func (fm *floatManager) clearance(clear string) (pr.Float, bool) {
	if clear != "left" && clear != "right" && clear != "both" {
		return 0, false
	}
	return fm.height(clear)
}

// nextTopWithRoom returns the smallest y >= fromY where a segment of
// [height] has at least [width] free inside [left, right], or no float
// intrudes. The candidates are fromY and the bottoms of the floats.
func (fm *floatManager) nextTopWithRoom(fromY, width, height, left, right pr.Float) pr.Float {
	candidates := []pr.Float{fromY}
	for _, f := range fm.floats {
		if b := f.bottom(); b > fromY {
			candidates = append(candidates, b)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	for _, y := range candidates {
		l, r := fm.bandOver(y, height, left, right)
		if r-l >= width || !fm.intrudes(y, height, left, right) {
			return y
		}
	}
	return candidates[len(candidates)-1]
}

// place positions [box], already laid out, as a float of [side], with
// its margin box top at y or below, inside [left, right].
func (fm *floatManager) place(box *bo.Box, side, clear string, y, left, right pr.Float) {
	// not above an earlier float
	for _, f := range fm.floats {
		y = pr.MaxF(y, f.top())
	}
	if cl, ok := fm.clearance(clear); ok {
		y = pr.MaxF(y, cl)
	}
	width, height := box.MarginWidth(), box.MarginHeight()
	y = fm.nextTopWithRoom(y, width, height, left, right)
	l, r := fm.bandOver(y, height, left, right)
	x := l
	if side == "right" {
		x = r - width
		if x < l { // too wide: overflow on the right
			x = l
		}
	}
	box.Translate(x-box.PositionX, y-box.PositionY)
	fm.floats = append(fm.floats, floatRecord{Box: box, Side: side, Clear: clear, Context: fm.id})
	fm.invalidate()
}

// translate moves the floats in [moved] by dy.
func (fm *floatManager) translate(moved []*bo.Box, dy pr.Float) {
	if dy == 0 || len(moved) == 0 {
		return
	}
	for _, box := range moved {
		box.Translate(0, dy)
	}
	fm.invalidate()
}
