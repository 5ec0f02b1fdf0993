package layout

import (
	"strings"

	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
	"github.com/benoitkugler/boxlayout/text"
)

// Inline formatting context: the inline-level children of a block
// container are flattened into items, broken into lines and aligned.

type itemKind uint8

const (
	itemWord     itemKind = iota // a word followed by its spaces
	itemOpen                     // start edge of an inline box
	itemClose                    // end edge of an inline box
	itemAtomic                   // inline-block, image, inline-table, inline-flex
	itemFloat                    // floated box met in the inline content
	itemAbsolute                 // placeholder of an absolutely positioned box
	itemBreak                    // forced line break
)

type inlineItem struct {
	kind itemKind
	box  *bo.Box
	// style of the enclosing inline box, or of the container
	parent *pr.Style

	word, space string
	width       pr.Float // advance, without the trailing spaces
	spaceWidth  pr.Float
	// spaces may be skipped at the start of a line
	collapsible bool

	// a line break opportunity follows the item
	breakAfter bool
	// offset of the baseline from the one of the container,
	// positive upwards
	shift pr.Float

	// intrinsic widths of atomic and floated boxes
	minContent, maxContent pr.Float
}

// isSpace returns true for items made of collapsible spaces only.
func (it *inlineItem) isSpace() bool {
	return it.kind == itemWord && it.word == "" && it.collapsible
}

func (it *inlineItem) isContent() bool {
	switch it.kind {
	case itemWord:
		return it.word != ""
	case itemAtomic, itemBreak:
		return true
	case itemOpen, itemClose:
		return it.width != 0
	default:
		return false
	}
}

// advance is the width of the item on a line.
func (it *inlineItem) advance() pr.Float {
	switch it.kind {
	case itemWord, itemOpen, itemClose:
		return it.width
	case itemAtomic:
		return it.box.MarginWidth()
	default:
		return 0
	}
}

// metrics are the vertical metrics of a style, resolved for
// the line layout.
type metrics struct {
	ascent, descent, xHeight, lineHeight pr.Float
}

func (m metrics) halfLeading() pr.Float { return (m.lineHeight - m.ascent - m.descent) / 2 }

// above is the part of the line height above the baseline.
func (m metrics) above() pr.Float { return m.ascent + m.halfLeading() }

// below is the part of the line height below the baseline.
func (m metrics) below() pr.Float { return m.descent + m.halfLeading() }

func (ctx *layoutContext) metrics(style *pr.Style) metrics {
	fm := ctx.tm.Metrics(style.Font)
	out := metrics{ascent: fm.Ascent, descent: fm.Descent, xHeight: fm.XHeight}
	lh := style.LineHeight
	switch {
	case lh.S != "": // normal
		out.lineHeight = fm.Height
	case lh.Unit == pr.Scalar:
		out.lineHeight = lh.Value * style.Font.Size
	case lh.Unit == pr.Perc:
		out.lineHeight = lh.Value * style.Font.Size / 100
	default:
		out.lineHeight = lh.Value
	}
	return out
}

// baselineShift returns the shift of the baseline of a box with [style]
// inside a parent with [parent] style, for the vertical-align values
// relative to the parent baseline.
// Other keywords give 0, and are handled by the line layout for
// atomic boxes.
func (ctx *layoutContext) baselineShift(style, parent *pr.Style) pr.Float {
	va := style.VerticalAlign
	if va.S == "" {
		if va.Unit == pr.Perc {
			return va.Value * ctx.metrics(style).lineHeight / 100
		}
		return va.Value
	}
	switch va.S {
	case "sub":
		return -parent.Font.Size * 0.2
	case "super":
		return parent.Font.Size * 0.5
	default:
		return 0
	}
}

// flattener turns the inline-level boxes into items.
type flattener struct {
	ctx   *layoutContext
	cb    containingBlock
	items []inlineItem
}

func (f *flattener) add(box *bo.Box, parent *pr.Style, shift pr.Float) {
	box.Fragments = box.Fragments[:0]
	switch {
	case box.IsAbsolutelyPositioned():
		f.items = append(f.items, inlineItem{kind: itemAbsolute, box: box, parent: parent})
		return
	case box.IsFloated():
		box.PositionX, box.PositionY = 0, 0
		res := f.ctx.layoutRoot(box, f.cb, f.cb.Width.Value, true)
		f.items = append(f.items, inlineItem{kind: itemFloat, box: box, parent: parent, minContent: res.minContent, maxContent: res.maxContent})
		return
	}
	switch box.Kind {
	case bo.KindText:
		f.addText(box, parent, shift)
	case bo.KindLineBreak:
		f.items = append(f.items, inlineItem{kind: itemBreak, box: box, parent: parent, shift: shift})
	case bo.KindInline:
		used := resolvePercentages(box, f.cb)
		used = autoMarginsToZero(used)
		box.MarginLeft, box.MarginRight = used.marginLeft.V(), used.marginRight.V()
		// vertical margins have no effect on inline boxes
		box.MarginTop, box.MarginBottom = 0, 0
		shift += f.ctx.baselineShift(box.Style, parent)
		f.items = append(f.items, inlineItem{
			kind: itemOpen, box: box, parent: parent, shift: shift,
			width: box.MarginLeft + box.BorderLeftWidth + box.PaddingLeft,
		})
		for _, child := range box.Children {
			f.add(child, box.Style, shift)
		}
		f.items = append(f.items, inlineItem{
			kind: itemClose, box: box, parent: parent, shift: shift,
			width: box.PaddingRight + box.BorderRightWidth + box.MarginRight,
		})
	default: // atomic inline-level boxes
		box.PositionX, box.PositionY = 0, 0
		res := f.ctx.layoutRoot(box, f.cb, f.cb.Width.Value, true)
		wraps := text.Wraps(parent.WhiteSpace)
		if n := len(f.items); n != 0 && wraps {
			f.items[n-1].breakAfter = true
		}
		f.items = append(f.items, inlineItem{
			kind: itemAtomic, box: box, parent: parent, shift: shift + f.ctx.baselineShift(box.Style, parent),
			breakAfter: wraps, minContent: res.minContent, maxContent: res.maxContent,
		})
	}
}

func (f *flattener) addText(box *bo.Box, parent *pr.Style, shift pr.Float) {
	ws := box.Style.WhiteSpace
	wraps, preserved := text.Wraps(ws), text.PreservesSpaces(ws)
	pieces := []string{box.Text}
	if text.PreservesNewlines(ws) {
		pieces = strings.Split(box.Text, "\n")
	}
	for i, piece := range pieces {
		if i > 0 {
			f.items = append(f.items, inlineItem{kind: itemBreak, box: box, parent: parent, shift: shift})
		}
		segments := text.Segments(piece)
		for j, seg := range segments {
			it := inlineItem{
				kind: itemWord, box: box, parent: parent, shift: shift,
				word: seg.Word(), space: seg.TrailingSpace, collapsible: !preserved,
				breakAfter: wraps && (j < len(segments)-1 || seg.TrailingSpace != ""),
			}
			if ws == "pre" {
				// spaces are never at the end of a line
				it.word, it.space = seg.Text, ""
			}
			it.width = f.ctx.tm.TextWidth(it.word, box.Style.Font)
			if it.space != "" {
				it.spaceWidth = f.ctx.tm.TextWidth(it.space, box.Style.Font)
			}
			f.items = append(f.items, it)
		}
	}
}

// moveBreaksAfterCloses moves the line break opportunities followed by
// end edges after them, so that the edges stay on the line.
func moveBreaksAfterCloses(items []inlineItem) {
	for i := range items {
		if !items[i].breakAfter {
			continue
		}
		j := i
		for j+1 < len(items) && items[j+1].kind == itemClose {
			j++
		}
		if j != i {
			items[i].breakAfter = false
			items[j].breakAfter = true
		}
	}
}

// hangingSpace is the width of the spaces following a word,
// only counted when an other item follows on the line.
func (it *inlineItem) hangingSpace() pr.Float {
	if it.kind == itemWord {
		return it.spaceWidth
	}
	return 0
}

// inlineIntrinsic returns the min-content and max-content widths of
// the items.
func inlineIntrinsic(items []inlineItem, indent pr.Float) (minContent, maxContent pr.Float) {
	line, chunk := indent, indent
	var pending pr.Float
	afterBreak := false
	for i := range items {
		it := &items[i]
		switch it.kind {
		case itemAbsolute:
			continue
		case itemBreak:
			maxContent, minContent = pr.MaxF(maxContent, line), pr.MaxF(minContent, chunk)
			line, chunk, pending = 0, 0, 0
			continue
		case itemFloat:
			minContent = pr.MaxF(minContent, it.minContent)
			line += it.maxContent
			continue
		}
		w := it.advance()
		if it.kind == itemAtomic {
			minContent = pr.MaxF(minContent, it.minContent)
		}
		line += pending + w
		if afterBreak {
			chunk += w
		} else {
			chunk += pending + w
		}
		afterBreak = false
		pending = it.hangingSpace()
		if it.breakAfter {
			minContent = pr.MaxF(minContent, chunk)
			chunk, afterBreak = 0, true
		}
	}
	return pr.MaxF(minContent, chunk), pr.MaxF(maxContent, line)
}

type inlineResult struct {
	// from the top of the first line to the bottom of the last one
	height                 pr.Float
	minContent, maxContent pr.Float
	// floats and absolutely positioned boxes
	outOfFlow []*bo.Box
}

// openBox is an inline box whose end edge is not reached yet.
type openBox struct {
	box    *bo.Box
	shift  pr.Float
	startX pr.Float
}

// lineBuilder breaks the items of one inline formatting context.
type lineBuilder struct {
	ctx       *layoutContext
	container *bo.Box
	fm        *floatManager
	items     []inlineItem
	strut     metrics

	left, right pr.Float // content edges of the container
	// inline boxes continued from the previous line
	open []openBox
	// floats already in the float manager
	placed map[*bo.Box]bool
}

// inlineLayout lays out the inline-level children of [box] in lines
// starting at [top], between x and x + box.Width.
func (ctx *layoutContext) inlineLayout(box *bo.Box, cb containingBlock, fm *floatManager, x, top pr.Float) inlineResult {
	f := flattener{ctx: ctx, cb: cb}
	for _, child := range box.Children {
		f.add(child, box.Style, 0)
	}
	moveBreaksAfterCloses(f.items)

	indent := resolveOnePercentage(box.Style.TextIndent, definite(box.Width), false).V()
	var res inlineResult
	res.minContent, res.maxContent = inlineIntrinsic(f.items, indent)
	for _, it := range f.items {
		if it.kind == itemFloat || it.kind == itemAbsolute {
			res.outOfFlow = append(res.outOfFlow, it.box)
		}
	}

	lb := lineBuilder{
		ctx: ctx, container: box, fm: fm, items: f.items, strut: ctx.metrics(box.Style),
		left: x, right: x + box.Width, placed: map[*bo.Box]bool{},
	}
	y := top
	for start := 0; start < len(lb.items); {
		lineIndent := indent
		if len(box.Lines) != 0 {
			lineIndent = 0
		}
		lineTop := y
		l, r := fm.bandOver(lineTop, lb.strut.lineHeight, lb.left, lb.right)
		// the first unbreakable unit must fit the band
		if unit := lb.unitWidth(start) + lineIndent; unit > r-l && fm.intrudes(lineTop, lb.strut.lineHeight, lb.left, lb.right) {
			lineTop = fm.nextTopWithRoom(lineTop, unit, lb.strut.lineHeight, lb.left, lb.right)
			l, r = fm.bandOver(lineTop, lb.strut.lineHeight, lb.left, lb.right)
		}
		end, forced, deferred, l, r := lb.fill(start, lineTop, l, r, lineIndent)
		if line := lb.finalize(start, end, lineTop, l, r, lineIndent, forced || end == len(lb.items)); line != nil {
			box.Lines = append(box.Lines, line)
			y = lineTop + line.Height
		}
		for _, float := range deferred {
			fm.place(float, float.Style.Float, float.Style.Clear, y, lb.left, lb.right)
			lb.placed[float] = true
		}
		start = end
	}
	res.height = y - top
	lb.setInlineGeometry(box.Children, top)
	return res
}

// unitWidth returns the width of the items from [start] up to the first
// line break opportunity.
func (lb *lineBuilder) unitWidth(start int) pr.Float {
	var width, pending pr.Float
	seenContent := false
	for i := start; i < len(lb.items); i++ {
		it := &lb.items[i]
		if it.kind == itemBreak {
			break
		}
		if !seenContent && it.isSpace() {
			continue
		}
		width += pending + it.advance()
		pending = it.hangingSpace()
		seenContent = seenContent || it.isContent()
		if it.breakAfter {
			break
		}
	}
	return width
}

// fill returns the index after the last item of the line starting at
// [start], whether it ends with a forced break, and the floats which
// did not fit on the line. Floats fitting on the line are placed,
// which may narrow the band [l, r].
func (lb *lineBuilder) fill(start int, lineTop, l, r, indent pr.Float) (end int, forced bool, deferred []*bo.Box, _, _ pr.Float) {
	avail := r - l - indent
	var width, pending pr.Float
	hasContent := false
	lastOpp := -1
	for i := start; i < len(lb.items); i++ {
		it := &lb.items[i]
		switch it.kind {
		case itemBreak:
			return i + 1, true, deferred, l, r
		case itemAbsolute:
			continue
		case itemFloat:
			if lb.placed[it.box] {
				continue
			}
			if fw := it.box.MarginWidth(); !hasContent || width+pending+fw <= avail {
				lb.fm.place(it.box, it.box.Style.Float, it.box.Style.Clear, lineTop, lb.left, lb.right)
				lb.placed[it.box] = true
				l, r = lb.fm.bandOver(lineTop, lb.strut.lineHeight, lb.left, lb.right)
				avail = r - l - indent
			} else {
				deferred = append(deferred, it.box)
			}
			continue
		}
		if !hasContent && it.isSpace() {
			continue
		}
		w := it.advance()
		if hasContent && lastOpp > start && width+pending+w > avail {
			return lastOpp, false, deferred, l, r
		}
		width += pending + w
		pending = it.hangingSpace()
		hasContent = hasContent || it.isContent()
		if it.breakAfter {
			lastOpp = i + 1
		}
	}
	return len(lb.items), false, deferred, l, r
}

// finalize positions the items [start, end) on a line at [lineTop],
// in the band [l, r]. It returns nil if the line has no content.
func (lb *lineBuilder) finalize(start, end int, lineTop, l, r, indent pr.Float, lastLine bool) *bo.LineBox {
	items := lb.items[start:end]
	xs := make([]pr.Float, len(items))
	skipped := make([]bool, len(items))
	gapBefore := make([]bool, len(items))
	var x, pending pr.Float
	seenContent := false
	gaps := 0
	for i := range items {
		it := &items[i]
		switch {
		case !seenContent && it.isSpace():
			skipped[i] = true
			continue
		case it.kind == itemFloat:
			xs[i] = x
			continue
		case it.kind == itemBreak:
			// a forced break gives a line, even empty
			xs[i] = x + pending
			seenContent = true
			continue
		case it.kind == itemAbsolute:
			xs[i] = x + pending
			continue
		}
		if pending > 0 {
			gapBefore[i] = true
			gaps++
		}
		x += pending
		xs[i] = x
		x += it.advance()
		pending = it.hangingSpace()
		seenContent = seenContent || it.isContent()
	}
	natural := x
	lineIndex := len(lb.container.Lines)
	startX := l + indent

	if !seenContent {
		// no line box, but the out-of-flow boxes still need
		// a static position
		for i := range items {
			if items[i].kind == itemAbsolute {
				lb.ctx.setStaticPosition(items[i].box, startX, lineTop)
			}
		}
		return nil
	}

	// horizontal alignment
	avail := r - startX
	var offset, extra pr.Float
	switch lb.container.Style.TextAlign {
	case "right", "end":
		offset = avail - natural
	case "center":
		offset = (avail - natural) / 2
	case "justify":
		if !lastLine && gaps != 0 && avail > natural {
			extra = pr.MinF((avail-natural)/pr.Float(gaps), natural/4)
		}
	}
	offset = pr.MaxF(0, offset)
	var added pr.Float
	for i := range items {
		if gapBefore[i] {
			added += extra
		}
		xs[i] += startX + offset + added
	}
	lineEnd := startX + offset + natural + added

	// vertical metrics
	above, below := lb.strut.above(), lb.strut.below()
	consider := func(a, b pr.Float) {
		above, below = pr.MaxF(above, a), pr.MaxF(below, b)
	}
	for _, o := range lb.open {
		m := lb.ctx.metrics(o.box.Style)
		consider(m.above()+o.shift, m.below()-o.shift)
	}
	atomicAbove := make([]pr.Float, len(items))
	var lineRelative []int
	for i := range items {
		it := &items[i]
		if skipped[i] {
			continue
		}
		switch it.kind {
		case itemWord, itemOpen:
			m := lb.ctx.metrics(it.box.Style)
			consider(m.above()+it.shift, m.below()-it.shift)
		case itemAtomic:
			h := it.box.MarginHeight()
			pm := lb.ctx.metrics(it.parent)
			var a pr.Float
			switch it.box.Style.VerticalAlign.S {
			case "top", "bottom":
				lineRelative = append(lineRelative, i)
				continue
			case "middle":
				a = h/2 + pm.xHeight/2 + it.shift
			case "text-top":
				a = pm.ascent + it.shift
			case "text-bottom":
				a = h - pm.descent + it.shift
			default:
				a = atomicBaseline(it.box) + it.shift
			}
			atomicAbove[i] = a
			consider(a, h-a)
		}
	}
	for _, i := range lineRelative {
		h := items[i].box.MarginHeight()
		if h > above+below {
			if items[i].box.Style.VerticalAlign.S == "top" {
				below = h - above
			} else {
				above = h - below
			}
		}
	}
	line := &bo.LineBox{
		PositionX: l, PositionY: lineTop,
		Width: r - l, Height: above + below,
		Baseline: lineTop + above,
	}
	baseline := line.Baseline

	// fragments
	seen := map[*bo.Box]bool{}
	addBox := func(b *bo.Box) {
		if !seen[b] {
			seen[b] = true
			line.Boxes = append(line.Boxes, b)
		}
	}
	inlineFragment := func(o openBox, endX pr.Float) {
		m := lb.ctx.metrics(o.box.Style)
		b := o.box
		o.box.Fragments = append(o.box.Fragments, bo.Fragment{
			X: o.startX, Y: baseline - o.shift - m.ascent - b.PaddingTop - b.BorderTopWidth,
			Width:  pr.MaxF(0, endX-o.startX),
			Height: m.ascent + m.descent + b.PaddingTop + b.PaddingBottom + b.BorderTopWidth + b.BorderBottomWidth,
			Line:   lineIndex,
		})
		addBox(b)
	}
	open := make([]openBox, len(lb.open))
	for i, o := range lb.open {
		o.startX = startX + offset
		open[i] = o
	}
	var lastWord *inlineItem
	for i := range items {
		it := &items[i]
		if skipped[i] {
			continue
		}
		switch it.kind {
		case itemAbsolute:
			lb.ctx.setStaticPosition(it.box, xs[i], lineTop)
		case itemBreak:
			if it.box.Kind == bo.KindLineBreak {
				it.box.Fragments = append(it.box.Fragments, bo.Fragment{
					X: xs[i], Y: lineTop, Height: line.Height, Line: lineIndex,
				})
				addBox(it.box)
			}
		case itemOpen:
			open = append(open, openBox{box: it.box, shift: it.shift, startX: xs[i] + it.box.MarginLeft})
		case itemClose:
			for j := len(open) - 1; j >= 0; j-- {
				if open[j].box == it.box {
					inlineFragment(open[j], xs[i]+it.box.PaddingRight+it.box.BorderRightWidth)
					open = append(open[:j], open[j+1:]...)
					break
				}
			}
		case itemAtomic:
			var y pr.Float
			switch it.box.Style.VerticalAlign.S {
			case "top":
				y = lineTop
			case "bottom":
				y = lineTop + line.Height - it.box.MarginHeight()
			default:
				y = baseline - atomicAbove[i]
			}
			it.box.Translate(xs[i]-it.box.PositionX, y-it.box.PositionY)
			border := it.box.BorderBox()
			it.box.Fragments = append(it.box.Fragments, bo.Fragment{
				X: border.X, Y: border.Y, Width: border.Width, Height: border.Height, Line: lineIndex,
			})
			addBox(it.box)
		case itemWord:
			m := lb.ctx.metrics(it.box.Style)
			frags := it.box.Fragments
			if n := len(frags); n != 0 && frags[n-1].Line == lineIndex && lastWord != nil && lastWord.box == it.box {
				frags[n-1].Text += lastWord.space + it.word
				frags[n-1].Width = xs[i] + it.width - frags[n-1].X
			} else {
				it.box.Fragments = append(frags, bo.Fragment{
					X: xs[i], Y: baseline - it.shift - m.ascent,
					Width: it.width, Height: m.ascent + m.descent,
					Line: lineIndex, Text: it.word,
				})
			}
			addBox(it.box)
			lastWord = it
			continue
		}
		lastWord = nil
	}
	// inline boxes continued on the next line
	for _, o := range open {
		inlineFragment(o, lineEnd)
	}
	lb.open = open
	return line
}

// atomicBaseline returns the baseline of an atomic inline-level box,
// as an offset from the top of its margin box.
func atomicBaseline(box *bo.Box) pr.Float {
	if box.Kind == bo.KindInlineBlock {
		if box.Style.Overflow == "visible" {
			if y, ok := lastLineBaseline(box); ok {
				return y - box.PositionY
			}
		}
		return box.MarginHeight()
	}
	if !pr.IsAuto(box.Baseline) {
		return box.Baseline.V()
	}
	return box.MarginHeight()
}

// lastLineBaseline returns the absolute position of the baseline of the
// last line box in [box].
func lastLineBaseline(box *bo.Box) (pr.Float, bool) {
	if n := len(box.Lines); n != 0 {
		return box.Lines[n-1].Baseline, true
	}
	for i := len(box.Children) - 1; i >= 0; i-- {
		child := box.Children[i]
		if !child.IsInNormalFlow() || !child.IsBlockContainer() {
			continue
		}
		if y, ok := lastLineBaseline(child); ok {
			return y, true
		}
	}
	return 0, false
}

// setInlineGeometry sets the position and size of the inline and text
// boxes to the union of their fragments.
func (lb *lineBuilder) setInlineGeometry(children []*bo.Box, top pr.Float) {
	for _, box := range children {
		if !box.IsInNormalFlow() || box.IsAtomicInline() {
			continue
		}
		var union bo.Rect
		for _, f := range box.Fragments {
			union = union.Union(bo.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height})
		}
		if len(box.Fragments) == 0 {
			union = bo.Rect{X: lb.left, Y: top}
		} else if union.Width <= 0 && union.Height <= 0 {
			f := box.Fragments[0]
			union = bo.Rect{X: f.X, Y: f.Y}
		}
		switch box.Kind {
		case bo.KindInline:
			box.PositionX, box.PositionY = union.X-box.MarginLeft, union.Y
			box.Width = pr.MaxF(0, union.Width-box.PaddingLeft-box.PaddingRight-box.BorderLeftWidth-box.BorderRightWidth)
			box.Height = pr.MaxF(0, union.Height-box.PaddingTop-box.PaddingBottom-box.BorderTopWidth-box.BorderBottomWidth)
			lb.setInlineGeometry(box.Children, top)
		default:
			box.PositionX, box.PositionY = union.X, union.Y
			box.Width, box.Height = union.Width, union.Height
		}
		box.Baseline = pr.AutoF
		if len(box.Fragments) != 0 {
			if line := lb.container.Lines; box.Fragments[0].Line < len(line) {
				box.Baseline = line[box.Fragments[0].Line].Baseline - box.PositionY
			}
		}
	}
}
