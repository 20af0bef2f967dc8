package report

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// fontFamily is a Unicode TrueType font, so titles, URLs and summaries are
// written exactly as received.
const fontFamily = "DejaVu"

var (
	//go:embed fonts/DejaVuSans.ttf
	regularFont []byte
	//go:embed fonts/DejaVuSans-Bold.ttf
	boldFont []byte
)

// minURLFontSize bounds how far a long URL is shrunk to keep it on one line.
const minURLFontSize = 5.0

// PDFRenderer writes a Document as a paginated A4 PDF.
type PDFRenderer struct {
	compress bool
}

// NewPDFRenderer creates a renderer producing compressed output.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{compress: true}
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
}

// Render writes doc to w.
func (r *PDFRenderer) Render(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.AddUTF8FontFromBytes(fontFamily, "", regularFont)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", boldFont)

	p := &pdfWriter{pdf: pdf}
	pdf.SetTitle(doc.Title+": "+doc.Topic, true)
	pdf.SetCreator("news-summarizer", false)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(fontFamily, "B", 15)
		pdf.SetTextColor(33, 37, 41)
		pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	p.meta(doc)
	for _, s := range doc.Sections {
		p.section(s)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return pdf.Output(w)
}

func (p *pdfWriter) meta(doc Document) {
	p.pdf.SetFont(fontFamily, "", 11)
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.CellFormat(0, 7, "Topic: "+doc.Topic, "", 1, "L", false, 0, "")
	p.pdf.CellFormat(0, 7, "Generated on: "+doc.GeneratedAt, "", 1, "L", false, 0, "")
	p.pdf.SetFont(fontFamily, "B", 11)
	p.pdf.CellFormat(0, 7, fmt.Sprintf("Total Articles Found: %d", doc.Total), "", 1, "L", false, 0, "")
	if doc.Skipped > 0 {
		p.pdf.SetFont(fontFamily, "", 9)
		p.pdf.CellFormat(0, 6, fmt.Sprintf("%d article(s) skipped", doc.Skipped), "", 1, "L", false, 0, "")
	}
	p.separator()
}

func (p *pdfWriter) section(s Section) {
	p.heading(fmt.Sprintf("Article %d", s.Index), 230, 236, 245)
	p.field("Title:", s.Title)
	if s.Description != "" {
		p.field("Description:", s.Description)
	}
	p.field("Source & Date:", s.Source+" | "+s.Published)

	p.label("URL:")
	p.link(s.URL)
	p.pdf.Ln(2)

	p.heading(fmt.Sprintf("AI Generated Summary %d", s.Index), 235, 245, 235)
	p.field("Generated Headline:", s.Headline)
	p.field("Summary:", s.Summary)
	p.badge(s)
	if len(s.Tags) > 0 {
		p.field("Tags:", strings.Join(s.Tags, ", "))
	}
	p.pdf.SetFont(fontFamily, "", 8)
	p.pdf.CellFormat(0, 5, fmt.Sprintf("Relevance score: %.2f", s.Score), "", 1, "L", false, 0, "")
	p.separator()
}

func (p *pdfWriter) heading(text string, r, g, b int) {
	p.pdf.SetFont(fontFamily, "B", 13)
	p.pdf.SetFillColor(r, g, b)
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.CellFormat(0, 8, text, "", 1, "L", true, 0, "")
	p.pdf.Ln(2)
}

func (p *pdfWriter) label(text string) {
	p.pdf.SetFont(fontFamily, "B", 10)
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
}

func (p *pdfWriter) field(label, value string) {
	p.label(label)
	p.pdf.SetFont(fontFamily, "", 10)
	p.pdf.MultiCell(0, 5, value, "", "L", false)
	p.pdf.Ln(1)
}

var badgeColors = map[string][3]int{
	"positive": {40, 167, 69},
	"neutral":  {108, 117, 125},
	"negative": {220, 53, 69},
}

func (p *pdfWriter) badge(s Section) {
	color, ok := badgeColors[string(s.Sentiment)]
	if !ok {
		color = badgeColors["neutral"]
	}
	p.pdf.SetFont(fontFamily, "B", 9)
	p.pdf.SetFillColor(color[0], color[1], color[2])
	p.pdf.SetTextColor(255, 255, 255)
	text := "Sentiment: " + s.Badge()
	p.pdf.CellFormat(p.pdf.GetStringWidth(text)+6, 6, text, "", 1, "C", true, 0, "")
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.Ln(2)
}

// link writes url as a single clickable line, shrinking the font until it
// fits the page width.
func (p *pdfWriter) link(url string) {
	left, _, right, _ := p.pdf.GetMargins()
	width, _ := p.pdf.GetPageSize()
	avail := width - left - right

	size := 9.0
	p.pdf.SetFont(fontFamily, "U", size)
	for p.pdf.GetStringWidth(url) > avail && size > minURLFontSize {
		size -= 0.5
		p.pdf.SetFontSize(size)
	}
	p.pdf.SetTextColor(0, 102, 204)
	p.pdf.CellFormat(avail, 5, url, "", 1, "L", false, 0, url)
	p.pdf.SetTextColor(0, 0, 0)
}

func (p *pdfWriter) separator() {
	p.pdf.Ln(2)
	left, _, right, _ := p.pdf.GetMargins()
	width, _ := p.pdf.GetPageSize()
	y := p.pdf.GetY()
	p.pdf.SetDrawColor(200, 200, 200)
	p.pdf.Line(left, y, width-right, y)
	p.pdf.Ln(4)
}
