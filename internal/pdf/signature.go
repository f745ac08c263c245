package pdf

import "context"

const (
	signatureBoxW = 60.0
	signatureBoxH = 28.0
)

// Party is one side of a signature block.
type Party struct {
	Label    string
	Name     string
	ImageURL string
	StampURL string
}

// SignatureBlock draws two parties side by side: label, signature (and
// stamp) scaled into a fixed box, then the name under a rule. An empty
// right party leaves its column blank.
func (d *Document) SignatureBlock(ctx context.Context, left, right Party) {
	colW := (d.contentWidth() - gridGap) / 2
	blockH := lineHeight*3 + signatureBoxH + 4
	d.CheckNewPage(blockH)

	top := d.y
	for i, p := range []Party{left, right} {
		if p.Label == "" && p.Name == "" && p.ImageURL == "" {
			continue
		}
		x := pageMargin + float64(i)*(colW+gridGap)

		d.setStyle("B", bodyFontSize)
		d.drawLine(p.Label, x, top+lineHeight-1.5, colW, alignFor(p.Label))
		d.setStyle("", bodyFontSize)

		boxY := top + lineHeight + 2
		boxW := signatureBoxW
		if boxW > colW {
			boxW = colW
		}
		d.Image(ctx, p.ImageURL, x, boxY, boxW, signatureBoxH)
		if p.StampURL != "" && colW-boxW > 20 {
			d.Image(ctx, p.StampURL, x+boxW+2, boxY, colW-boxW-2, signatureBoxH)
		}

		lineY := boxY + signatureBoxH + 2
		d.pdf.SetDrawColor(120, 120, 120)
		d.pdf.Line(x, lineY, x+colW, lineY)
		d.drawLine(p.Name, x, lineY+lineHeight-1, colW, alignFor(p.Name))
	}
	d.y = top + blockH
}

func alignFor(s string) string {
	if IsRTL(s) {
		return "R"
	}
	return "L"
}
