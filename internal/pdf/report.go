package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

// Report is a finished document.
type Report struct {
	Bytes          []byte
	Pages          int
	FallbackImages []string
}

// Renderer builds the session and contract reports.
type Renderer struct {
	FontDir  string
	Fetcher  *Fetcher
	Now      func() time.Time
	Compress bool
}

func NewRenderer(fontDir string, fetcher *Fetcher) *Renderer {
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	return &Renderer{FontDir: fontDir, Fetcher: fetcher, Now: time.Now, Compress: true}
}

func (r *Renderer) newDocument(title string) (*Document, error) {
	return NewDocument(Options{
		Title:    title,
		FontDir:  r.FontDir,
		Fetcher:  r.Fetcher,
		Now:      r.Now,
		Compress: r.Compress,
	})
}

// SessionReport summarises a client's design session: style, materials,
// images with their annotations, patterns, colours, note and signature.
func (r *Renderer) SessionReport(ctx context.Context, s *entity.ClientImageSession, lead *entity.ClientLead) (*Report, error) {
	d, err := r.newDocument("Design Session / جلسة التصميم")
	if err != nil {
		return nil, err
	}

	writeLeadHeader(d, lead)
	d.KeyValue("Status / الحالة", string(s.SessionStatus))

	if s.Style != "" || s.StyleImageURL != "" {
		d.Heading("Style / النمط")
		d.Paragraph(s.Style)
		if s.StyleImageURL != "" {
			d.CheckNewPage(70)
			d.Image(ctx, s.StyleImageURL, pageMargin, d.y+2, d.contentWidth(), 64)
			d.Space(70)
		}
	}

	if len(s.Materials) > 0 {
		d.Heading("Materials / المواد")
		items := make([]GridItem, len(s.Materials))
		for i, m := range s.Materials {
			items[i] = GridItem{URL: m.ImageURL, Caption: m.Title}
		}
		d.Grid(ctx, items, 2, 60)
	}

	if len(s.Images) > 0 {
		d.Heading("Selected images / الصور المختارة")
		d.Grid(ctx, sessionImages(s.Images), 4, 38)

		var notes []string
		for i, img := range s.Images {
			if img.Annotation != "" {
				notes = append(notes, fmt.Sprintf("%d. %s", i+1, img.Annotation))
			}
		}
		if len(notes) > 0 {
			d.Heading("Annotations / الملاحظات على الصور")
			for _, n := range notes {
				d.Paragraph(n)
			}
		}
	}

	if len(s.Patterns) > 0 {
		d.Heading("Patterns / الأنماط")
		d.Grid(ctx, sessionImages(s.Patterns), 4, 38)
	}

	if len(s.CustomColors) > 0 {
		d.Heading("Colours / الألوان")
		swatches := make([]Swatch, len(s.CustomColors))
		for i, c := range s.CustomColors {
			swatches[i] = Swatch{Name: c.Name, Hex: c.Hex}
		}
		d.Swatches(swatches)
	}

	if strings.TrimSpace(s.Note) != "" {
		d.Heading("Note / ملاحظة")
		d.Paragraph(s.Note)
	}

	if s.SignatureURL != "" {
		d.Heading("Signature / التوقيع")
		name := ""
		if lead != nil && lead.Client != nil {
			name = lead.Client.Name
		}
		d.SignatureBlock(ctx, Party{Label: "Client / العميل", Name: name, ImageURL: s.SignatureURL}, Party{})
	}

	return d.Finish()
}

// ContractReport renders the clauses followed by both parties' signatures.
func (r *Renderer) ContractReport(ctx context.Context, c *entity.Contract, lead *entity.ClientLead) (*Report, error) {
	title := c.Title
	if title == "" {
		title = "Contract / عقد"
	}
	d, err := r.newDocument(title)
	if err != nil {
		return nil, err
	}

	writeLeadHeader(d, lead)
	d.KeyValue("First party / الطرف الأول", c.FirstPartyName)
	d.KeyValue("Second party / الطرف الثاني", c.SecondPartyName)

	if len(c.Clauses) > 0 {
		d.Heading("Clauses / البنود")
		for i, clause := range c.Clauses {
			d.Paragraph(fmt.Sprintf("%d. %s", i+1, clause))
			d.Space(1)
		}
	}

	d.Heading("Signatures / التوقيعات")
	d.SignatureBlock(ctx,
		Party{Label: "First party / الطرف الأول", Name: c.FirstPartyName, ImageURL: c.FirstSignatureURL, StampURL: c.StampURL},
		Party{Label: "Second party / الطرف الثاني", Name: c.SecondPartyName, ImageURL: c.SecondSignatureURL},
	)

	return d.Finish()
}

func writeLeadHeader(d *Document, lead *entity.ClientLead) {
	if lead == nil {
		return
	}
	d.Heading("Client / العميل")
	if lead.Client != nil {
		d.KeyValue("Name / الاسم", lead.Client.Name)
		d.KeyValue("Phone / الهاتف", lead.Client.Phone)
		d.KeyValue("Email / البريد الإلكتروني", lead.Client.Email)
	}
	d.KeyValue("Lead / الطلب", fmt.Sprintf("#%d", lead.Code))
	d.KeyValue("Category / الفئة", lead.SelectedCategory)
	d.KeyValue("Country / الدولة", strings.TrimSpace(lead.Country+" "+lead.Emirate))
}

func sessionImages(images []entity.SessionImage) []GridItem {
	items := make([]GridItem, len(images))
	for i, img := range images {
		items[i] = GridItem{URL: img.URL, Caption: img.Title}
	}
	return items
}
