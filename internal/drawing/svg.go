package drawing

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/cadhy/cadhy/internal/geom"
	"github.com/cadhy/cadhy/internal/projection"
)

// SheetOptions sizes a drawing sheet. Units are millimetres.
type SheetOptions struct {
	Width  float64 // 0 selects 420 (A3 landscape)
	Height float64 // 0 selects 297
	Margin float64 // 0 selects 20
	// Deflection is the chord error for flattening exact curves, in
	// drawing units. Zero selects 0.1.
	Deflection float64
}

func (o *SheetOptions) fill() {
	if o.Width <= 0 {
		o.Width = 420
	}
	if o.Height <= 0 {
		o.Height = 297
	}
	if o.Margin <= 0 {
		o.Margin = 20
	}
	if o.Deflection <= 0 {
		o.Deflection = 0.1
	}
}

// sheetMapper fits drawing coordinates onto the sheet: uniform scale,
// centred, y axis flipped for the down-positive page space.
type sheetMapper struct {
	scale  float64
	ox, oy float64
	bounds geom.Box2
}

func newSheetMapper(bounds geom.Box2, o SheetOptions) sheetMapper {
	size := bounds.Size()
	availW, availH := o.Width-2*o.Margin, o.Height-2*o.Margin
	scale := 1.0
	if size.X > 0 && size.Y > 0 {
		scale = availW / size.X
		if s := availH / size.Y; s < scale {
			scale = s
		}
	}
	return sheetMapper{
		scale:  scale,
		ox:     o.Width/2 - scale*(bounds.Min.X+size.X/2),
		oy:     o.Height/2 + scale*(bounds.Min.Y+size.Y/2),
		bounds: bounds,
	}
}

func (m sheetMapper) point(p geom.Vec2) (x, y float64) {
	return m.ox + m.scale*p.X, m.oy - m.scale*p.Y
}

func styleAttr(lt projection.LineType) string {
	st := projection.StyleOf(lt)
	var sb strings.Builder
	fmt.Fprintf(&sb, `fill="none" stroke="black" stroke-width="%.2f"`, st.Width)
	if st.Dash != "" {
		fmt.Fprintf(&sb, ` stroke-dasharray="%s"`, st.Dash)
	}
	return sb.String()
}

func pathData(m sheetMapper, pts []geom.Vec2) string {
	var sb strings.Builder
	for i, p := range pts {
		x, y := m.point(p)
		if i == 0 {
			fmt.Fprintf(&sb, "M %.3f %.3f", x, y)
		} else {
			fmt.Fprintf(&sb, " L %.3f %.3f", x, y)
		}
	}
	return sb.String()
}

// WriteViewSVG writes one projected view as an SVG drawing sheet with
// the standard stroke table.
func WriteViewSVG(w io.Writer, res *projection.Result, opts SheetOptions) error {
	opts.fill()
	if res.Bounds.IsEmpty() {
		return fmt.Errorf("drawing: view %q is empty", res.Name)
	}
	m := newSheetMapper(res.Bounds, opts)

	canvas := svg.New(w)
	canvas.Startunit(int(opts.Width), int(opts.Height), "mm",
		fmt.Sprintf(`viewBox="0 0 %.0f %.0f"`, opts.Width, opts.Height))
	canvas.Title(res.Name)
	for _, c := range res.Curves {
		canvas.Path(pathData(m, c.Tessellate(opts.Deflection/m.scale)), styleAttr(c.Type))
	}
	canvas.End()
	return nil
}

// WriteSectionSVG writes a hatched section cut as an SVG drawing sheet.
// Hatch lines are stroked at half the section-cut width so the
// boundaries read over the fill.
func WriteSectionSVG(w io.Writer, sec *projection.SectionResult, opts SheetOptions) error {
	opts.fill()
	if sec.Bounds.IsEmpty() {
		return fmt.Errorf("drawing: section cut is empty")
	}
	m := newSheetMapper(sec.Bounds, opts)

	canvas := svg.New(w)
	canvas.Startunit(int(opts.Width), int(opts.Height), "mm",
		fmt.Sprintf(`viewBox="0 0 %.0f %.0f"`, opts.Width, opts.Height))
	canvas.Title("section")
	hatchStyle := fmt.Sprintf(`fill="none" stroke="black" stroke-width="%.2f"`,
		projection.StyleOf(projection.LineSectionCut).Width/2)
	for _, h := range sec.Hatch {
		canvas.Path(pathData(m, []geom.Vec2{h.A, h.B}), hatchStyle)
	}
	for _, c := range sec.Curves {
		canvas.Path(pathData(m, c.Tessellate(opts.Deflection/m.scale)), styleAttr(c.Type))
	}
	canvas.End()
	return nil
}
