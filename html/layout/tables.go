package layout

import (
	pr "github.com/benoitkugler/boxlayout/css/properties"
	bo "github.com/benoitkugler/boxlayout/html/boxes"
)

// Layout for tables, following the automatic table layout of CSS 2.1
// (https://www.w3.org/TR/CSS21/tables.html#auto-table-layout).

// tableGrid is the logical grid of a table.
type tableGrid struct {
	captionsTop, captionsBottom []*bo.Box
	groups                      []*bo.Box // row groups, headers first and footers last
	rows                        []*bo.Box
	cells                       []*bo.Box // in document order
	columns                     []*bo.Box // one per grid column, nil if not declared
	numCols                     int
}

// sortedGroups returns the row groups with the header groups first and
// the footer groups last.
func sortedGroups(groups []*bo.Box) []*bo.Box {
	var header, body, footer []*bo.Box
	for _, g := range groups {
		switch g.Style.Display {
		case "table-header-group":
			header = append(header, g)
		case "table-footer-group":
			footer = append(footer, g)
		default:
			body = append(body, g)
		}
	}
	return append(append(header, body...), footer...)
}

// buildGrid sets the grid coordinates of the cells of [table].
func buildGrid(table *bo.Box) tableGrid {
	var g tableGrid
	var groups []*bo.Box
	for _, child := range table.Children {
		switch child.Kind {
		case bo.KindTableCaption:
			if child.Style.CaptionSide == "bottom" {
				g.captionsBottom = append(g.captionsBottom, child)
			} else {
				g.captionsTop = append(g.captionsTop, child)
			}
		case bo.KindTableRowGroup:
			groups = append(groups, child)
		case bo.KindTableColumnGroup:
			for _, col := range child.Children {
				for i := 0; i < col.Colspan; i++ {
					g.columns = append(g.columns, col)
				}
			}
		}
	}
	g.groups = sortedGroups(groups)

	for _, group := range g.groups {
		groupStart := len(g.rows)
		// occupied[y][x] for the rows of the group
		var occupied [][]bool
		occupy := func(y, x int) {
			for len(occupied) <= y {
				occupied = append(occupied, nil)
			}
			for len(occupied[y]) <= x {
				occupied[y] = append(occupied[y], false)
			}
			occupied[y][x] = true
		}
		isFree := func(y, x int) bool {
			return y >= len(occupied) || x >= len(occupied[y]) || !occupied[y][x]
		}
		for y, row := range group.Children {
			g.rows = append(g.rows, row)
			x := 0
			for _, cell := range row.Children {
				for !isFree(y, x) {
					x++
				}
				rowspan := cell.Rowspan
				remaining := len(group.Children) - y
				if rowspan == 0 || rowspan > remaining {
					rowspan = remaining
				}
				cell.Rowspan = rowspan
				cell.GridX, cell.GridY = x, groupStart+y
				for dy := 0; dy < rowspan; dy++ {
					for dx := 0; dx < cell.Colspan; dx++ {
						occupy(y+dy, x+dx)
					}
				}
				g.cells = append(g.cells, cell)
				x += cell.Colspan
				if x > g.numCols {
					g.numCols = x
				}
			}
		}
	}
	if len(g.columns) > g.numCols {
		g.numCols = len(g.columns)
	}
	for len(g.columns) < g.numCols {
		g.columns = append(g.columns, nil)
	}
	return g
}

// columnWidthFromStyle returns the width given by the column box of
// [col] and its group, in pixels, or false. Percentages refer to [ref].
func columnWidthFromStyle(col *bo.Box, ref pr.Float) (pr.Float, bool) {
	if col == nil {
		return 0, false
	}
	if w := pr.ResoudPercentage(col.Style.Width, ref); !pr.IsAuto(w) {
		return w.V(), true
	}
	return 0, false
}

// spanWidth returns the sum of [values] between [from] and [from+span],
// with the spacing between them.
func spanWidth(values []pr.Float, from, span int, spacing pr.Float) pr.Float {
	var out pr.Float
	for i := from; i < from+span && i < len(values); i++ {
		out += values[i]
	}
	return out + spacing*pr.Float(span-1)
}

// distributeShortfall grows [values] between [from] and [from+span] so
// that their sum (with spacing) reaches [target], proportionally to the
// current values, or equally if they are all zero.
func distributeShortfall(values []pr.Float, from, span int, spacing, target pr.Float) {
	end := from + span
	if end > len(values) {
		end = len(values)
	}
	current := spanWidth(values, from, end-from, spacing)
	shortfall := target - current
	if shortfall <= 0 || end <= from {
		return
	}
	var total pr.Float
	for _, v := range values[from:end] {
		total += v
	}
	for i := from; i < end; i++ {
		if total > 0 {
			values[i] += shortfall * values[i] / total
		} else {
			values[i] += shortfall / pr.Float(end-from)
		}
	}
}

// tableSpacing returns the horizontal and vertical spacing between cells.
func tableSpacing(table *bo.Box) (pr.Float, pr.Float) {
	if table.Style.BorderCollapse == "collapse" {
		return 0, 0
	}
	return table.Style.BorderSpacing[0], table.Style.BorderSpacing[1]
}

// collapsedOverlaps returns, in the collapsing border model, the overlap
// of adjacent cells at each column boundary (index 0 being the left edge
// of the table, and numCols the right one), and at each row boundary.
func collapsedOverlaps(table *bo.Box, g tableGrid) (cols, rows []pr.Float) {
	cols = make([]pr.Float, g.numCols+1)
	rows = make([]pr.Float, len(g.rows)+1)
	if table.Style.BorderCollapse != "collapse" {
		return cols, rows
	}
	// the cell found at each slot
	slots := make([][]*bo.Box, len(g.rows))
	for i := range slots {
		slots[i] = make([]*bo.Box, g.numCols)
	}
	for _, cell := range g.cells {
		for dy := 0; dy < cell.Rowspan; dy++ {
			for dx := 0; dx < cell.Colspan; dx++ {
				if y, x := cell.GridY+dy, cell.GridX+dx; y < len(slots) && x < g.numCols {
					slots[y][x] = cell
				}
			}
		}
	}
	st := table.Style
	for y, row := range slots {
		for x, cell := range row {
			if cell == nil {
				continue
			}
			cs := cell.Style
			if x == 0 {
				cols[0] = pr.MaxF(cols[0], pr.MinF(st.BorderLeftWidth, cs.BorderLeftWidth))
			}
			if x == g.numCols-1 {
				cols[g.numCols] = pr.MaxF(cols[g.numCols], pr.MinF(st.BorderRightWidth, cs.BorderRightWidth))
			} else if next := row[x+1]; next != nil && next != cell {
				cols[x+1] = pr.MaxF(cols[x+1], pr.MinF(cs.BorderRightWidth, next.Style.BorderLeftWidth))
			}
			if y == 0 {
				rows[0] = pr.MaxF(rows[0], pr.MinF(st.BorderTopWidth, cs.BorderTopWidth))
			}
			if y == len(slots)-1 {
				rows[len(slots)] = pr.MaxF(rows[len(slots)], pr.MinF(st.BorderBottomWidth, cs.BorderBottomWidth))
			} else if below := slots[y+1][x]; below != nil && below != cell {
				rows[y+1] = pr.MaxF(rows[y+1], pr.MinF(cs.BorderBottomWidth, below.Style.BorderTopWidth))
			}
		}
	}
	return cols, rows
}

// columnIntrinsicWidths returns the minimum and maximum width of each
// column, after the redistribution of the spanning cells.
func (ctx *layoutContext) columnIntrinsicWidths(g tableGrid, hSpacing, ref pr.Float) (mins, maxs []pr.Float) {
	mins, maxs = make([]pr.Float, g.numCols), make([]pr.Float, g.numCols)
	cellMins, cellMaxs := make([]pr.Float, len(g.cells)), make([]pr.Float, len(g.cells))
	intrinsicCb := containingBlock{Width: cbSize{Value: ref, Mode: sizeNone}, Height: cbSize{Mode: sizeAuto}}
	for i, cell := range g.cells {
		cell.PositionX, cell.PositionY = 0, 0
		cellMins[i] = ctx.minContentWidth(cell, intrinsicCb)
		cellMaxs[i] = pr.MaxF(cellMins[i], ctx.maxContentWidth(cell, intrinsicCb))
		if cell.Colspan == 1 {
			mins[cell.GridX] = pr.MaxF(mins[cell.GridX], cellMins[i])
			maxs[cell.GridX] = pr.MaxF(maxs[cell.GridX], cellMaxs[i])
		}
	}
	for x, col := range g.columns {
		if w, ok := columnWidthFromStyle(col, ref); ok {
			mins[x], maxs[x] = pr.MaxF(mins[x], w), pr.MaxF(maxs[x], w)
		}
	}
	// spanning cells, the first one in document order first
	for i, cell := range g.cells {
		if cell.Colspan == 1 {
			continue
		}
		distributeShortfall(mins, cell.GridX, cell.Colspan, hSpacing, cellMins[i])
		distributeShortfall(maxs, cell.GridX, cell.Colspan, hSpacing, cellMaxs[i])
	}
	for x := range maxs {
		maxs[x] = pr.MaxF(maxs[x], mins[x])
	}
	return mins, maxs
}

// distributeColumnWidths returns the used width of each column for a
// grid of [width] (without spacing).
// Between the minimum and the maximum, the surplus over the minimum
// widths goes to the columns proportionally to their maximum widths.
// The result verifies mins[i] <= result[i], and result[i] <= maxs[i]
// unless [width] is larger than the sum of the maximums, in which case
// maxs is raised.
func distributeColumnWidths(mins, maxs []pr.Float, width pr.Float) []pr.Float {
	out := make([]pr.Float, len(mins))
	var sumMin, sumMax pr.Float
	for i := range mins {
		sumMin += mins[i]
		sumMax += maxs[i]
	}
	switch {
	case width <= sumMin:
		copy(out, mins)
	case width <= sumMax:
		copy(out, mins)
		// the surplus is shared proportionally to the maximum widths,
		// columns reaching their maximum leaving the rest to the others
		surplus := width - sumMin
		growing := make([]bool, len(out))
		for i := range out {
			growing[i] = out[i] < maxs[i]
		}
		for surplus > 0 {
			var weight pr.Float
			for i, g := range growing {
				if g {
					weight += maxs[i]
				}
			}
			if weight <= 0 {
				break
			}
			var given pr.Float
			for i, g := range growing {
				if g && out[i]+surplus*maxs[i]/weight >= maxs[i] {
					given += maxs[i] - out[i]
					out[i] = maxs[i]
					growing[i] = false
				}
			}
			if given == 0 {
				for i, g := range growing {
					if g {
						out[i] += surplus * maxs[i] / weight
					}
				}
				break
			}
			surplus -= given
		}
	default:
		surplus := width - sumMax
		for i := range out {
			if sumMax > 0 {
				out[i] = maxs[i] + surplus*maxs[i]/sumMax
			} else {
				out[i] = maxs[i] + surplus/pr.Float(len(out))
			}
			maxs[i] = out[i]
		}
	}
	return out
}

// tableLayout lays out [table] at its current position, in the
// available width [avail].
func (ctx *layoutContext) tableLayout(table *bo.Box, cb containingBlock, used usedValues, avail pr.Float) blockResult {
	if table.Style.BorderCollapse == "collapse" {
		// paddings do not apply in the collapsing border model
		table.PaddingTop, table.PaddingRight, table.PaddingBottom, table.PaddingLeft = 0, 0, 0, 0
	}
	g := buildGrid(table)
	hs, vs := tableSpacing(table)
	colOverlaps, rowOverlaps := collapsedOverlaps(table, g)

	// horizontal spacing of the grid, outside of the columns
	gridSpacing := hs * pr.Float(g.numCols+1)
	for _, o := range colOverlaps {
		gridSpacing -= o
	}
	if g.numCols == 0 {
		gridSpacing = 0
	}
	outside := table.PaddingLeft + table.PaddingRight + table.BorderLeftWidth + table.BorderRightWidth +
		used.marginLeft.V() + used.marginRight.V()

	mins, maxs := ctx.columnIntrinsicWidths(g, hs, pr.MaxF(0, avail-outside-gridSpacing))
	var sumMin, sumMax pr.Float
	for i := range mins {
		sumMin += mins[i]
		sumMax += maxs[i]
	}
	tableMin, tableMax := sumMin+gridSpacing, sumMax+gridSpacing
	var width pr.Float
	if pr.IsAuto(used.width) {
		width = pr.MaxF(tableMin, pr.MinF(avail-outside, tableMax))
	} else {
		width = pr.MaxF(tableMin, used.width.V())
	}
	width = pr.MaxF(width, nonNegative(table.MinWidth))
	if table.MaxWidth < width {
		width = pr.MaxF(tableMin, table.MaxWidth)
	}
	widths := distributeColumnWidths(mins, maxs, width-gridSpacing)
	table.ColumnMinWidths, table.ColumnMaxWidths, table.ColumnWidths = mins, maxs, widths

	used.width = width
	blockLevelWidth_(table, used, avail)

	// captions on top
	y := table.ContentBoxY()
	captionCb := containingBlock{Width: definite(table.Width), Height: cbSize{Mode: sizeAuto}}
	layoutCaptions := func(captions []*bo.Box) {
		for _, caption := range captions {
			caption.PositionX, caption.PositionY = table.ContentBoxX(), y
			ctx.layoutRoot(caption, captionCb, table.Width, false)
			y += caption.MarginHeight()
		}
	}
	layoutCaptions(g.captionsTop)

	// columns positions
	x := table.ContentBoxX() + hs - colOverlaps[0]
	positions := make([]pr.Float, g.numCols)
	for i := range positions {
		positions[i] = x
		x += widths[i] + hs - colOverlaps[i+1]
	}
	table.ColumnPositions = positions

	// lay out the cells at y = 0, to find the row heights
	cellCb := containingBlock{Width: definite(width), Height: cbSize{Mode: sizeAuto}}
	heights := make([]pr.Float, len(g.rows))
	baselines := make([]pr.Float, len(g.rows))
	for i, row := range g.rows {
		if h := resolveOnePercentage(row.Style.Height, cb.Height, true); !pr.IsAuto(h) {
			heights[i] = h.V()
		}
	}
	// content heights, before the cells are stretched to their rows
	naturals := make([]pr.Float, len(g.cells))
	for i, cell := range g.cells {
		w := spanWidth(widths, cell.GridX, cell.Colspan, hs) - spanOverlaps(colOverlaps, cell.GridX, cell.Colspan)
		naturals[i] = ctx.cellLayout(cell, cellCb, w, positions[cell.GridX], 0)
		if cell.Style.VerticalAlign.S == "baseline" && !pr.IsAuto(cell.Baseline) {
			baselines[cell.GridY] = pr.MaxF(baselines[cell.GridY], cell.Baseline.V())
		}
	}
	for _, cell := range g.cells {
		if cell.Rowspan != 1 {
			continue
		}
		h := cell.MarginHeight()
		if cell.Style.VerticalAlign.S == "baseline" && !pr.IsAuto(cell.Baseline) {
			h += baselines[cell.GridY] - cell.Baseline.V()
		}
		heights[cell.GridY] = pr.MaxF(heights[cell.GridY], h)
	}
	for _, cell := range g.cells {
		if cell.Rowspan == 1 {
			continue
		}
		have := spanWidth(heights, cell.GridY, cell.Rowspan, vs) - spanOverlaps(rowOverlaps, cell.GridY, cell.Rowspan)
		if need := cell.MarginHeight(); need > have {
			last := cell.GridY + cell.Rowspan - 1
			heights[last] += need - have
		}
	}

	// extra height of a sized table goes to the rows
	gridTop := y
	gridHeight := vs * pr.Float(len(g.rows)+1)
	for i, h := range heights {
		gridHeight += h - rowOverlaps[i]
	}
	gridHeight -= rowOverlaps[len(g.rows)]
	if len(g.rows) == 0 {
		gridHeight = 0
	}
	if !pr.IsAuto(used.height) && len(g.rows) != 0 {
		if extra := used.height.V() - gridHeight - (gridTop - table.ContentBoxY()); extra > 0 {
			for i := range heights {
				heights[i] += extra / pr.Float(len(heights))
			}
			gridHeight += extra
		}
	}
	table.RowHeights = heights

	rowTops := make([]pr.Float, len(g.rows))
	y = gridTop + vs - rowOverlaps[0]
	for i, row := range g.rows {
		rowTops[i] = y
		row.PositionX, row.PositionY = gridLeft(positions, table), y
		row.Width, row.Height = x-hs+colOverlaps[g.numCols]-row.PositionX, heights[i]
		y += heights[i] + vs - rowOverlaps[i+1]
	}
	for i, cell := range g.cells {
		total := spanWidth(heights, cell.GridY, cell.Rowspan, vs) - spanOverlaps(rowOverlaps, cell.GridY, cell.Rowspan)
		var shift pr.Float
		extra := total - (cell.MarginHeight() - cell.Height + naturals[i])
		switch cell.Style.VerticalAlign.S {
		case "middle":
			shift = extra / 2
		case "bottom":
			shift = extra
		case "baseline":
			if !pr.IsAuto(cell.Baseline) {
				shift = baselines[cell.GridY] - cell.Baseline.V()
			}
		}
		cell.Translate(0, rowTops[cell.GridY]-cell.PositionY)
		cell.Height = pr.MaxF(0, total-cell.PaddingTop-cell.PaddingBottom-cell.BorderTopWidth-cell.BorderBottomWidth)
		translateContent(cell, shift)
	}
	for _, group := range g.groups {
		setUnionGeometry(group, group.Children)
	}
	setColumnsGeometry(table, g, positions, widths, gridTop, gridHeight)

	y = gridTop + gridHeight
	layoutCaptions(g.captionsBottom)
	table.Height = y - table.ContentBoxY()
	if !pr.IsAuto(used.height) {
		table.Height = pr.MaxF(table.Height, used.height.V())
	}
	table.Baseline = pr.AutoF
	if len(rowTops) != 0 {
		table.Baseline = rowTops[0] + baselines[0] - table.PositionY
	}

	var res blockResult
	res.natural = width
	minOut, maxOut := tableMin, tableMax
	if isPx(table.Style.Width) {
		minOut, maxOut = width, width
	}
	spacing := fixedSpacing(table)
	res.minContent, res.maxContent = minOut+spacing, maxOut+spacing
	res.adjoining = []pr.Float{table.MarginBottom}
	return res
}

func nonNegative(v pr.Float) pr.Float { return pr.MaxF(0, v) }

// gridLeft returns the left of the grid.
func gridLeft(positions []pr.Float, table *bo.Box) pr.Float {
	if len(positions) == 0 {
		return table.ContentBoxX()
	}
	return positions[0]
}

func spanOverlaps(overlaps []pr.Float, from, span int) pr.Float {
	var out pr.Float
	for i := from + 1; i < from+span && i < len(overlaps); i++ {
		out += overlaps[i]
	}
	return out
}

// cellLayout lays out [cell] with a border box of [width], at (x, y),
// and returns the height of its content.
func (ctx *layoutContext) cellLayout(cell *bo.Box, cb containingBlock, width, x, y pr.Float) pr.Float {
	used := resolvePercentages(cell, cb)
	cell.MarginTop, cell.MarginRight, cell.MarginBottom, cell.MarginLeft = 0, 0, 0, 0
	used.marginTop, used.marginRight, used.marginBottom, used.marginLeft = pr.Float(0), pr.Float(0), pr.Float(0), pr.Float(0)
	cell.PositionX, cell.PositionY = x, y
	cell.Width = pr.MaxF(0, width-cell.PaddingLeft-cell.PaddingRight-cell.BorderLeftWidth-cell.BorderRightWidth)
	specified := used.height
	used.height = pr.AutoF
	ctx.blockContainerLayout(cell, used, cb, ctx.newFloatManager(), nil)
	natural := cell.Height
	// a specified height is a minimum
	if !pr.IsAuto(specified) {
		cell.Height = pr.MaxF(cell.Height, specified.V())
	}
	return natural
}

// translateContent moves the content of [box], but not the box itself.
func translateContent(box *bo.Box, dy pr.Float) {
	if dy == 0 {
		return
	}
	for _, child := range box.Children {
		child.Translate(0, dy)
	}
	for _, line := range box.Lines {
		line.PositionY += dy
		line.Baseline += dy
	}
	if !pr.IsAuto(box.Baseline) {
		box.Baseline = box.Baseline.V() + dy
	}
}

// setUnionGeometry sizes [box] as the union of [children].
func setUnionGeometry(box *bo.Box, children []*bo.Box) {
	var union bo.Rect
	for _, child := range children {
		union = union.Union(child.MarginBox())
	}
	box.PositionX, box.PositionY = union.X, union.Y
	box.Width, box.Height = union.Width, union.Height
}

func setColumnsGeometry(table *bo.Box, g tableGrid, positions, widths []pr.Float, top, height pr.Float) {
	for _, child := range table.Children {
		if child.Kind != bo.KindTableColumnGroup {
			continue
		}
		for _, col := range child.Children {
			col.PositionY, col.Height, col.Width = top, height, 0
			first := true
			for i, c := range g.columns {
				if c != col {
					continue
				}
				if first {
					col.PositionX = positions[i]
					first = false
				}
				col.Width = positions[i] + widths[i] - col.PositionX
			}
		}
		setUnionGeometry(child, child.Children)
	}
}
