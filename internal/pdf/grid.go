package pdf

import "context"

const (
	gridGap      = 4.0
	captionLines = 1
)

// GridItem is one cell of an image grid.
type GridItem struct {
	URL     string
	Caption string
}

// Grid lays items out perRow to a row. A row that does not fit moves whole
// to the next page.
func (d *Document) Grid(ctx context.Context, items []GridItem, perRow int, cellH float64) {
	if len(items) == 0 || perRow < 1 {
		return
	}

	cellW := (d.contentWidth() - gridGap*float64(perRow-1)) / float64(perRow)
	rowH := cellH + captionLines*lineHeight + gridGap

	for start := 0; start < len(items); start += perRow {
		end := start + perRow
		if end > len(items) {
			end = len(items)
		}

		d.CheckNewPage(rowH)
		top := d.y
		for i, item := range items[start:end] {
			x := pageMargin + float64(i)*(cellW+gridGap)
			d.Image(ctx, item.URL, x, top, cellW, cellH)
			if item.Caption != "" {
				d.setStyle("", 9)
				d.drawLine(d.truncate(item.Caption, cellW), x, top+cellH+lineHeight-1.5, cellW, "C")
				d.setStyle("", bodyFontSize)
			}
		}
		d.y = top + rowH
	}
}

// Swatch is a named colour square.
type Swatch struct {
	Name string
	Hex  string
}

// Swatches draws colour squares with their name and hex code, four per row.
func (d *Document) Swatches(swatches []Swatch) {
	const perRow = 4
	const box = 12.0
	cellW := (d.contentWidth() - gridGap*(perRow-1)) / perRow

	for start := 0; start < len(swatches); start += perRow {
		end := start + perRow
		if end > len(swatches) {
			end = len(swatches)
		}
		d.CheckNewPage(box + 2*lineHeight)
		top := d.y
		for i, s := range swatches[start:end] {
			x := pageMargin + float64(i)*(cellW+gridGap)
			r, g, b, ok := parseHex(s.Hex)
			if ok {
				d.pdf.SetFillColor(r, g, b)
				d.pdf.SetDrawColor(120, 120, 120)
				d.pdf.Rect(x, top, box, box, "FD")
			}
			d.setStyle("", 9)
			d.drawLine(d.truncate(s.Name, cellW-box-2), x+box+2, top+4, cellW-box-2, "L")
			d.drawLine(s.Hex, x+box+2, top+9, cellW-box-2, "L")
			d.setStyle("", bodyFontSize)
		}
		d.y = top + box + lineHeight
	}
}

func parseHex(s string) (int, int, int, bool) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	var v [3]int
	for i := 0; i < 3; i++ {
		hi, ok1 := hexDigit(s[2*i])
		lo, ok2 := hexDigit(s[2*i+1])
		if !ok1 || !ok2 {
			return 0, 0, 0, false
		}
		v[i] = hi<<4 | lo
	}
	return v[0], v[1], v[2], true
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}
