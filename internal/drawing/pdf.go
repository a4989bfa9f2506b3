package drawing

import (
	"io"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/cadhy/cadhy/internal/projection"
)

// WriteViewsPDF writes the given projected views as an A3 landscape
// PDF, one sheet per view, stroked per the standard line table.
func WriteViewsPDF(w io.Writer, views []*projection.Result, opts SheetOptions) error {
	opts.fill()
	pdf := fpdf.New("L", "mm", "A3", "")
	pdf.SetFont("Helvetica", "", 10)

	for _, res := range views {
		pdf.AddPage()
		pdf.Text(opts.Margin, opts.Margin/2, res.Name)
		if res.Bounds.IsEmpty() {
			continue
		}
		m := newSheetMapper(res.Bounds, opts)
		for _, c := range res.Curves {
			strokePDF(pdf, m, c, opts)
		}
	}
	return pdf.Output(w)
}

// WriteSectionPDF writes one hatched section cut as a PDF sheet.
func WriteSectionPDF(w io.Writer, sec *projection.SectionResult, opts SheetOptions) error {
	opts.fill()
	pdf := fpdf.New("L", "mm", "A3", "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.AddPage()
	pdf.Text(opts.Margin, opts.Margin/2, "section")
	if !sec.Bounds.IsEmpty() {
		m := newSheetMapper(sec.Bounds, opts)
		hatchWidth := projection.StyleOf(projection.LineSectionCut).Width / 2
		for _, h := range sec.Hatch {
			pdf.SetLineWidth(hatchWidth)
			pdf.SetDashPattern(nil, 0)
			x1, y1 := m.point(h.A)
			x2, y2 := m.point(h.B)
			pdf.Line(x1, y1, x2, y2)
		}
		for _, c := range sec.Curves {
			strokePDF(pdf, m, c, opts)
		}
	}
	return pdf.Output(w)
}

func strokePDF(pdf *fpdf.Fpdf, m sheetMapper, c projection.Curve, opts SheetOptions) {
	st := projection.StyleOf(c.Type)
	pdf.SetLineWidth(st.Width)
	pdf.SetDashPattern(parseDash(st.Dash), 0)
	pts := c.Tessellate(opts.Deflection / m.scale)
	for i := 0; i+1 < len(pts); i++ {
		x1, y1 := m.point(pts[i])
		x2, y2 := m.point(pts[i+1])
		pdf.Line(x1, y1, x2, y2)
	}
}

func parseDash(dash string) []float64 {
	if dash == "" {
		return nil
	}
	parts := strings.Split(dash, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}
