// Package pdf lays out the bilingual (Arabic/English) reports of the CRM on
// top of gofpdf: contextual Arabic shaping, right-to-left alignment, image
// grids with remote images and a page footer pass.
package pdf

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

const (
	pageMargin   = 15.0
	headerBand   = 20.0
	footerZone   = 15.0
	bodyFontSize = 11.0
	lineHeight   = 6.0
)

// Font files looked up in Options.FontDir. Without them the core Helvetica
// font is used and Arabic text cannot be rendered.
const (
	LatinFontFile     = "NotoSans-Regular.ttf"
	LatinBoldFontFile = "NotoSans-Bold.ttf"
	ArabicFontFile    = "NotoNaskhArabic-Regular.ttf"
)

const (
	familyLatin  = "latin"
	familyArabic = "arabic"
	familyCore   = "Helvetica"
)

type Options struct {
	Title    string
	FontDir  string
	Fetcher  *Fetcher
	Now      func() time.Time
	Compress bool
}

// Document keeps a running cursor y and starts a new page whenever the next
// block does not fit above the footer zone.
type Document struct {
	pdf     *gofpdf.Fpdf
	opts    Options
	y       float64
	unicode bool
	tr      func(string) string
	style   string
	size    float64

	fallbacks []string
}

func NewDocument(opts Options) (*Document, error) {
	if opts.Fetcher == nil {
		opts.Fetcher = NewFetcher()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	p := gofpdf.New("P", "mm", "A4", opts.FontDir)
	p.SetMargins(pageMargin, pageMargin, pageMargin)
	p.SetAutoPageBreak(false, 0)
	p.SetCompression(opts.Compress)
	p.SetTitle(opts.Title, true)
	p.SetCreator("Dream Studio CRM", true)
	p.SetCreationDate(opts.Now())

	d := &Document{pdf: p, opts: opts, size: bodyFontSize}

	if hasFonts(opts.FontDir) {
		p.AddUTF8Font(familyLatin, "", LatinFontFile)
		bold := LatinBoldFontFile
		if _, err := os.Stat(filepath.Join(opts.FontDir, bold)); err != nil {
			bold = LatinFontFile
		}
		p.AddUTF8Font(familyLatin, "B", bold)
		p.AddUTF8Font(familyArabic, "", ArabicFontFile)
		p.AddUTF8Font(familyArabic, "B", ArabicFontFile)
		d.unicode = true
	} else {
		if opts.FontDir != "" {
			log.Printf("[PDF] fonts not found in %s, using core fonts", opts.FontDir)
		}
		d.tr = p.UnicodeTranslatorFromDescriptor("")
	}

	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	d.AddPage()
	return d, nil
}

func hasFonts(dir string) bool {
	if dir == "" {
		return false
	}
	for _, f := range []string{LatinFontFile, ArabicFontFile} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			return false
		}
	}
	return true
}

func (d *Document) pageSize() (float64, float64) {
	return d.pdf.GetPageSize()
}

func (d *Document) contentWidth() float64 {
	w, _ := d.pageSize()
	return w - 2*pageMargin
}

// AddPage starts a page with the title band and puts the cursor below it.
func (d *Document) AddPage() {
	d.pdf.AddPage()
	w, _ := d.pageSize()

	d.pdf.SetFillColor(33, 37, 41)
	d.pdf.Rect(0, 0, w, headerBand, "F")
	d.pdf.SetTextColor(255, 255, 255)
	d.setStyle("B", 14)
	d.drawLine(d.opts.Title, pageMargin, headerBand/2+2, d.contentWidth(), "C")
	d.pdf.SetTextColor(0, 0, 0)
	d.setStyle("", bodyFontSize)

	d.y = headerBand + 8
}

// CheckNewPage starts a new page when required millimetres do not fit on the
// current one. It reports whether a page was added.
func (d *Document) CheckNewPage(required float64) bool {
	_, h := d.pageSize()
	if d.y+required <= h-footerZone {
		return false
	}
	d.AddPage()
	return true
}

func (d *Document) Space(h float64) {
	d.y += h
}

func (d *Document) Heading(text string) {
	d.CheckNewPage(lineHeight * 3)
	d.y += 2
	d.setStyle("B", 13)
	d.writeLines(text, 7)
	d.setStyle("", bodyFontSize)

	w, _ := d.pageSize()
	d.pdf.SetDrawColor(200, 200, 200)
	d.pdf.Line(pageMargin, d.y-1, w-pageMargin, d.y-1)
	d.y += 2
}

func (d *Document) Paragraph(text string) {
	d.setStyle("", bodyFontSize)
	d.writeLines(text, lineHeight)
}

// KeyValue writes "label: value" on one wrapped block, skipping empty values.
func (d *Document) KeyValue(label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	d.Paragraph(label + ": " + value)
}

func (d *Document) writeLines(text string, lh float64) {
	w := d.contentWidth()
	for _, para := range strings.Split(text, "\n") {
		for _, line := range d.wrap(para, w) {
			d.CheckNewPage(lh)
			d.y += lh
			align := "L"
			if IsRTL(line) {
				align = "R"
			}
			d.drawLine(line, pageMargin, d.y-1.5, w, align)
		}
	}
}

// drawLine draws one logical line with its baseline at y inside [x, x+w].
// Right-aligned text starts at x + w - measured width.
func (d *Document) drawLine(logical string, x, y, w float64, align string) {
	visual := Visual(Shape(logical))
	measured := d.width(visual)

	switch align {
	case "R":
		x = x + w - measured
	case "C":
		x = x + (w-measured)/2
	}
	for _, seg := range d.segments(visual) {
		d.useFamily(seg.family)
		d.pdf.Text(x, y, d.enc(seg.text))
		x += d.pdf.GetStringWidth(d.enc(seg.text))
	}
}

// wrap breaks a logical line into logical lines no wider than w. Words longer
// than w are cut by characters.
func (d *Document) wrap(text string, w float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if d.measure(candidate) <= w {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
			line = ""
		}
		if d.measure(word) <= w {
			line = word
			continue
		}
		for _, piece := range d.cut(word, w) {
			lines = append(lines, piece)
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func (d *Document) cut(word string, w float64) []string {
	var out []string
	rs := []rune(word)
	start := 0
	for i := 1; i <= len(rs); i++ {
		if d.measure(string(rs[start:i])) > w && i-1 > start {
			out = append(out, string(rs[start:i-1]))
			start = i - 1
		}
	}
	return append(out, string(rs[start:]))
}

func (d *Document) measure(logical string) float64 {
	return d.width(Visual(Shape(logical)))
}

type segment struct {
	text   string
	family string
}

// segments splits visual text into runs drawn with the same font.
func (d *Document) segments(visual string) []segment {
	var out []segment
	var cur strings.Builder
	family := ""
	for _, r := range visual {
		f := familyLatin
		if isArabicGlyph(r) {
			f = familyArabic
		}
		if f != family && cur.Len() > 0 {
			out = append(out, segment{cur.String(), family})
			cur.Reset()
		}
		family = f
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, segment{cur.String(), family})
	}
	return out
}

func (d *Document) width(visual string) float64 {
	total := 0.0
	for _, seg := range d.segments(visual) {
		d.useFamily(seg.family)
		total += d.pdf.GetStringWidth(d.enc(seg.text))
	}
	return total
}

func (d *Document) setStyle(style string, size float64) {
	d.style, d.size = style, size
	d.useFamily(familyLatin)
}

// resetFont emits the font again on a page reopened with SetPage. gofpdf
// only writes Tf when family, style or size differ from its current state,
// which reflects the last page written rather than the reopened one.
func (d *Document) resetFont(style string, size float64) {
	d.pdf.SetFontSize(0)
	d.setStyle(style, size)
}

func (d *Document) useFamily(family string) {
	if !d.unicode {
		family = familyCore
	}
	d.pdf.SetFont(family, d.style, d.size)
}

func (d *Document) enc(s string) string {
	if d.tr != nil {
		return d.tr(s)
	}
	return s
}

// Finish draws "i / N" and the generation date on every page and returns the
// encoded document.
func (d *Document) Finish() (*Report, error) {
	n := d.pdf.PageCount()
	w, h := d.pageSize()
	date := d.opts.Now().Format("2006-01-02")

	for i := 1; i <= n; i++ {
		d.pdf.SetPage(i)
		d.pdf.SetDrawColor(200, 200, 200)
		d.pdf.Line(pageMargin, h-footerZone+3, w-pageMargin, h-footerZone+3)
		d.pdf.SetTextColor(110, 110, 110)
		d.resetFont("", 9)
		d.drawLine(date, pageMargin, h-pageMargin+5, d.contentWidth(), "L")
		d.drawLine(fmt.Sprintf("%d / %d", i, n), pageMargin, h-pageMargin+5, d.contentWidth(), "R")
	}
	d.pdf.SetPage(n)

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	return &Report{Bytes: buf.Bytes(), Pages: n, FallbackImages: d.fallbacks}, nil
}
