package layout

import (
	"log/slog"
)

const (
	cellPad    = 6.0
	headerRowH = 26.0
)

// TableColumn is one column of a grid with a fixed width in points.
// Column widths should sum to ContentWidth.
type TableColumn struct {
	Header string
	Width  float64
}

// TableCell is one cell. Tag paints as a smaller italic line under the
// text, used for per-question cognitive level annotations.
type TableCell struct {
	Text string
	Tag  string
	Bold bool
}

// Table is a bordered grid with a colored header row. Rows never split:
// a row that does not fit the remaining page moves whole to the next page,
// where the header row is painted again before it.
type Table struct {
	Columns      []TableColumn
	MinRowHeight float64
	Zebra        bool
	TintLead     bool // fill the first column with the theme tint on every row
}

type measuredCell struct {
	lines    []string
	tagLines []string
}

// Table paints rows under repeated column headers. Cell text wraps inside
// the fixed column width and row height follows the tallest cell. A single
// row taller than an entire page is truncated with an ellipsis rather than
// overflowing; the truncation is logged.
func (e *Engine) Table(t Table, rows [][]TableCell) {
	if len(t.Columns) == 0 || len(rows) == 0 {
		return
	}

	maxRowH := ContentFloor - ContentTop(false) - headerRowH
	e.EnsureRoom(headerRowH + t.MinRowHeight)
	e.paintTableHeader(t)

	for i, row := range rows {
		cells, rowH := e.measureRow(t, row)
		if rowH > maxRowH {
			cells, rowH = e.truncateRow(t, cells, maxRowH)
			e.log.Warn("table row truncated to page capacity", slog.Int("row", i+1))
		}
		if e.y+rowH > ContentFloor {
			e.BreakPage()
			e.paintTableHeader(t)
		}
		e.paintRow(t, cells, row, rowH, i%2 == 1)
	}
	e.y += 10
}

func (e *Engine) paintTableHeader(t Table) {
	x := Margin
	top := e.y
	for _, col := range t.Columns {
		e.setFill(e.frame.Theme.Banner)
		e.pdf.Rect(x, top, col.Width, headerRowH, "F")

		style := StyleCellBold.WithColor(ColorPaper)
		w := e.styledWidth(col.Header, style)
		cx := x + (col.Width-w)/2
		if cx < x+cellPad {
			cx = x + cellPad
		}
		e.paintStyled(col.Header, cx, top+headerRowH/2+style.Size*0.36, style)
		x += col.Width
	}
	e.y = top + headerRowH
}

func (e *Engine) measureRow(t Table, row []TableCell) ([]measuredCell, float64) {
	cells := make([]measuredCell, len(t.Columns))
	rowH := t.MinRowHeight
	for c := range t.Columns {
		if c >= len(row) {
			continue
		}
		cell := row[c]
		w := t.Columns[c].Width - 2*cellPad
		mc := measuredCell{lines: e.wrap(cell.Text, cellStyle(cell), w)}
		if cell.Tag != "" {
			mc.tagLines = e.wrap(cell.Tag, StyleCellTag, w)
		}
		cells[c] = mc
		if h := cellHeight(mc); h > rowH {
			rowH = h
		}
	}
	return cells, rowH
}

// truncateRow drops trailing lines until the row fits a full page, marking
// the cut with an ellipsis on the last surviving line.
func (e *Engine) truncateRow(t Table, cells []measuredCell, maxRowH float64) ([]measuredCell, float64) {
	maxLines := int((maxRowH - 2*cellPad) / StyleCell.Leading)
	if maxLines < 1 {
		maxLines = 1
	}
	rowH := t.MinRowHeight
	for c := range cells {
		budget := maxLines - len(cells[c].tagLines)
		if budget < 1 {
			budget = 1
			cells[c].tagLines = nil
		}
		if len(cells[c].lines) > budget {
			cells[c].lines = cells[c].lines[:budget]
			last := cells[c].lines[budget-1]
			cells[c].lines[budget-1] = last + "..."
		}
		if h := cellHeight(cells[c]); h > rowH {
			rowH = h
		}
	}
	return cells, rowH
}

func (e *Engine) paintRow(t Table, cells []measuredCell, row []TableCell, rowH float64, zebra bool) {
	top := e.y
	if t.Zebra && zebra {
		e.setFill(ColorZebra)
		e.pdf.Rect(Margin, top, ContentWidth, rowH, "F")
	}
	if t.TintLead {
		e.setFill(e.frame.Theme.Tint)
		e.pdf.Rect(Margin, top, t.Columns[0].Width, rowH, "F")
	}

	x := Margin
	e.setDraw(ColorFaint)
	e.pdf.SetLineWidth(0.5)
	for c, col := range t.Columns {
		e.pdf.Rect(x, top, col.Width, rowH, "D")

		style := StyleCell
		if c < len(row) {
			style = cellStyle(row[c])
		}
		ly := top + cellPad
		for _, line := range cells[c].lines {
			e.setStyle(style)
			e.pdf.Text(x+cellPad, ly+style.baselineOffset(), line)
			ly += style.Leading
		}
		if len(cells[c].tagLines) > 0 {
			ly += 2
			for _, line := range cells[c].tagLines {
				e.setStyle(StyleCellTag)
				e.pdf.Text(x+cellPad, ly+StyleCellTag.baselineOffset(), line)
				ly += StyleCellTag.Leading
			}
		}
		x += col.Width
	}
	e.y = top + rowH
}

func cellStyle(c TableCell) TextStyle {
	if c.Bold {
		return StyleCellBold
	}
	return StyleCell
}

func cellHeight(mc measuredCell) float64 {
	h := 2*cellPad + float64(len(mc.lines))*StyleCell.Leading
	if len(mc.tagLines) > 0 {
		h += 2 + float64(len(mc.tagLines))*StyleCellTag.Leading
	}
	return h
}
