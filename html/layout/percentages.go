package layout

import (
	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
)

// Resolve percentages into fixed values.

type sizeMode uint8

const (
	sizeDefinite sizeMode = iota // a length
	sizePercent                  // a percentage of a definite size
	sizeAuto                     // depends on the content
	sizeNone                     // no constraint, used to measure content
)

// cbSize is one dimension of a containing block.
type cbSize struct {
	Value pr.Float
	Mode  sizeMode
}

func (s cbSize) isDefinite() bool { return s.Mode == sizeDefinite || s.Mode == sizePercent }

func definite(v pr.Float) cbSize { return cbSize{Value: v, Mode: sizeDefinite} }

// containingBlock is the reference of percentages, passed down
// the recursion.
type containingBlock struct {
	Width, Height cbSize
}

// newWidth returns the width of the containing block established
// by [box] (whose width is resolved), keeping the mode of its
// specified width.
func (cb containingBlock) newWidth(box *bo.Box) cbSize {
	if cb.Width.Mode == sizeNone && !isPx(box.Style.Width) {
		return cbSize{Value: box.Width, Mode: sizeNone}
	}
	if box.Style.Width.IsPerc() {
		return cbSize{Value: box.Width, Mode: sizePercent}
	}
	return definite(box.Width)
}

// newHeight returns the height of the containing block established
// by [box], whose height may not be known yet.
// [height] is the used height, AutoF if it depends on the content.
func (cb containingBlock) newHeight(box *bo.Box, height pr.MaybeFloat) cbSize {
	if pr.IsAuto(height) {
		return cbSize{Mode: sizeAuto}
	}
	if box.Style.Height.IsPerc() {
		return cbSize{Value: height.V(), Mode: sizePercent}
	}
	return definite(height.V())
}

func (cb containingBlock) forChildren(box *bo.Box, height pr.MaybeFloat) containingBlock {
	return containingBlock{Width: cb.newWidth(box), Height: cb.newHeight(box, height)}
}

func isPx(v pr.Value) bool { return v.S == "" && v.Unit != pr.Perc }

// resolveOnePercentage computes a used length from a specified one.
// Keywords give AutoF. Percentages of an indefinite size
// give AutoF if [autoIfIndefinite] is true, 0 otherwise.
func resolveOnePercentage(value pr.Value, size cbSize, autoIfIndefinite bool) pr.MaybeFloat {
	if value.S != "" {
		return pr.AutoF
	}
	if value.Unit != pr.Perc {
		return value.Value
	}
	if !size.isDefinite() {
		if autoIfIndefinite {
			return pr.AutoF
		}
		return pr.Float(0)
	}
	return value.Value * size.Value / 100
}

// usedValues are the resolved sizes which may still be "auto".
type usedValues struct {
	width, height                                    pr.MaybeFloat
	marginTop, marginRight, marginBottom, marginLeft pr.MaybeFloat
}

// resolvePercentages sets the used paddings, borders and min/max
// sizes of [box], and returns its other sizes.
// Margins and paddings refer to the width of the containing block,
// even when vertical.
func resolvePercentages(box *bo.Box, cb containingBlock) usedValues {
	st := box.Style
	var out usedValues
	out.marginLeft = resolveOnePercentage(st.MarginLeft, cb.Width, false)
	out.marginRight = resolveOnePercentage(st.MarginRight, cb.Width, false)
	out.marginTop = resolveOnePercentage(st.MarginTop, cb.Width, false)
	out.marginBottom = resolveOnePercentage(st.MarginBottom, cb.Width, false)
	box.PaddingLeft = resolveOnePercentage(st.PaddingLeft, cb.Width, false).V()
	box.PaddingRight = resolveOnePercentage(st.PaddingRight, cb.Width, false).V()
	box.PaddingTop = resolveOnePercentage(st.PaddingTop, cb.Width, false).V()
	box.PaddingBottom = resolveOnePercentage(st.PaddingBottom, cb.Width, false).V()

	// used value == computed value
	box.BorderTopWidth = st.BorderTopWidth
	box.BorderRightWidth = st.BorderRightWidth
	box.BorderBottomWidth = st.BorderBottomWidth
	box.BorderLeftWidth = st.BorderLeftWidth

	out.width = resolveOnePercentage(st.Width, cb.Width, true)
	box.MinWidth = resolveOnePercentage(st.MinWidth, cb.Width, false).V()
	box.MaxWidth = pr.Inf
	if mw := resolveOnePercentage(st.MaxWidth, cb.Width, true); !pr.IsAuto(mw) {
		box.MaxWidth = mw.V()
	}

	out.height = resolveOnePercentage(st.Height, cb.Height, true)
	box.MinHeight = resolveOnePercentage(st.MinHeight, cb.Height, false).V()
	box.MaxHeight = pr.Inf
	if mh := resolveOnePercentage(st.MaxHeight, cb.Height, true); !pr.IsAuto(mh) {
		box.MaxHeight = mh.V()
	}

	// shrink content sizes according to box-sizing
	if st.BoxSizing == "border-box" || st.BoxSizing == "padding-box" {
		horizontal := box.PaddingLeft + box.PaddingRight
		vertical := box.PaddingTop + box.PaddingBottom
		if st.BoxSizing == "border-box" {
			horizontal += box.BorderLeftWidth + box.BorderRightWidth
			vertical += box.BorderTopWidth + box.BorderBottomWidth
		}
		if !pr.IsAuto(out.width) {
			out.width = pr.MaxF(0, out.width.V()-horizontal)
		}
		box.MinWidth = pr.MaxF(0, box.MinWidth-horizontal)
		box.MaxWidth = pr.MaxF(0, box.MaxWidth-horizontal)
		if !pr.IsAuto(out.height) {
			out.height = pr.MaxF(0, out.height.V()-vertical)
		}
		box.MinHeight = pr.MaxF(0, box.MinHeight-vertical)
		box.MaxHeight = pr.MaxF(0, box.MaxHeight-vertical)
	}
	if !pr.IsAuto(out.width) {
		out.width = pr.MaxF(0, out.width.V())
	}
	if !pr.IsAuto(out.height) {
		out.height = pr.MaxF(0, out.height.V())
	}
	return out
}

// fixedSpacing returns the horizontal margins, borders and paddings of
// [box] ignoring percentages and "auto", used for intrinsic widths.
func fixedSpacing(box *bo.Box) pr.Float {
	st := box.Style
	var out pr.Float
	for _, v := range [...]pr.Value{st.MarginLeft, st.MarginRight, st.PaddingLeft, st.PaddingRight} {
		if isPx(v) {
			out += v.Value
		}
	}
	return out + st.BorderLeftWidth + st.BorderRightWidth
}

// setVerticalMargins sets the used vertical margins, "auto" being 0.
func setVerticalMargins(box *bo.Box, used usedValues) {
	box.MarginTop = used.marginTop.V()
	box.MarginBottom = used.marginBottom.V()
}

// resolveRadii sets the used border radii of [box], whose border box
// is known. Radii overlapping on a side are scaled down with a common
// factor (CSS Backgrounds 3, §5.5).
func resolveRadii(box *bo.Box) {
	st := box.Style
	w, h := box.BorderWidth(), box.BorderHeight()
	specified := [4][2]pr.Value{st.BorderTopLeftRadius, st.BorderTopRightRadius, st.BorderBottomRightRadius, st.BorderBottomLeftRadius}
	for i, r := range specified {
		box.Radii[i][0] = pr.MaxF(0, pr.ResoudPercentage(r[0], w).V())
		box.Radii[i][1] = pr.MaxF(0, pr.ResoudPercentage(r[1], h).V())
	}
	ratio := pr.Float(1)
	scale := func(side, r1, r2 pr.Float) {
		if sum := r1 + r2; sum > side && sum > 0 {
			ratio = pr.MinF(ratio, side/sum)
		}
	}
	rd := &box.Radii
	scale(w, rd[0][0], rd[1][0]) // top
	scale(h, rd[1][1], rd[2][1]) // right
	scale(w, rd[2][0], rd[3][0]) // bottom
	scale(h, rd[3][1], rd[0][1]) // left
	if ratio < 1 {
		for i := range rd {
			rd[i][0] *= ratio
			rd[i][1] *= ratio
		}
	}
}
