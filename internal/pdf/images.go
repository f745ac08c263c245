package pdf

import (
	"bytes"
	"context"

	"github.com/phpdave11/gofpdf"
)

// Image draws the image at url centred in the box, scaled to fit while
// keeping its aspect ratio. When the image cannot be fetched or decoded a
// placeholder with a link to url is drawn instead; the document never fails
// because of an image.
func (d *Document) Image(ctx context.Context, url string, x, y, boxW, boxH float64) {
	if url == "" {
		return
	}

	name, info, ok := d.register(ctx, url)
	if !ok {
		d.placeholder(url, x, y, boxW, boxH)
		return
	}

	w, h := fit(info.Width(), info.Height(), boxW, boxH)
	d.pdf.ImageOptions(name, x+(boxW-w)/2, y+(boxH-h)/2, w, h, false,
		gofpdf.ImageOptions{}, 0, "")
}

// register tries PNG first, then JPEG.
func (d *Document) register(ctx context.Context, url string) (string, *gofpdf.ImageInfoType, bool) {
	data, err := d.opts.Fetcher.Fetch(ctx, url)
	if err != nil || len(data) == 0 {
		return "", nil, false
	}

	for _, typ := range []string{"PNG", "JPG"} {
		name := typ + ":" + url
		info := d.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
		if d.pdf.Ok() && info != nil && info.Width() > 0 && info.Height() > 0 {
			return name, info, true
		}
		d.pdf.ClearError()
	}
	return "", nil, false
}

func (d *Document) placeholder(url string, x, y, boxW, boxH float64) {
	d.fallbacks = append(d.fallbacks, url)

	d.pdf.SetDrawColor(180, 180, 180)
	d.pdf.SetFillColor(245, 245, 245)
	d.pdf.Rect(x, y, boxW, boxH, "FD")
	d.pdf.LinkString(x, y, boxW, boxH, url)

	d.pdf.SetTextColor(90, 90, 90)
	d.setStyle("", 8)
	d.drawLine("Image unavailable", x+2, y+boxH/2-1, boxW-4, "C")
	d.pdf.SetTextColor(20, 80, 180)
	d.drawLine(d.truncate(url, boxW-4), x+2, y+boxH/2+4, boxW-4, "C")
	d.pdf.SetTextColor(0, 0, 0)
	d.setStyle("", bodyFontSize)
}

// truncate shortens s with "..." until it fits w.
func (d *Document) truncate(s string, w float64) string {
	if d.measure(s) <= w {
		return s
	}
	rs := []rune(s)
	for len(rs) > 0 && d.measure(string(rs)+"...") > w {
		rs = rs[:len(rs)-1]
	}
	return string(rs) + "..."
}

func fit(w, h, boxW, boxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return boxW, boxH
	}
	scale := boxW / w
	if s := boxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
