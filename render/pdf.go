package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/drummonds/chartconv/scene"
)

// pdfMargin is the whitespace around the chart on the page, in points.
const pdfMargin = 36.0

// EncodePDF draws the scene's vector content into a single print-ready
// page sized to the chart plus margins. Geometry stays vector; nothing
// is rasterized.
func EncodePDF(sc *scene.Scene) ([]byte, error) {
	pageW := float64(sc.Width) + 2*pdfMargin
	pageH := float64(sc.Height) + 2*pdfMargin

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 11)

	// Offset all scene coordinates into the page margin.
	ox, oy := pdfMargin, pdfMargin

	if sc.Background != "" {
		r, g, b := hexRGB(sc.Background)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(ox, oy, float64(sc.Width), float64(sc.Height), "F")
	}

	for _, ax := range sc.Axes {
		if !ax.Grid {
			continue
		}
		pdf.SetDrawColor(221, 221, 221)
		pdf.SetLineWidth(0.75)
		for _, tick := range ax.Ticks {
			pdf.Line(ox+tick.Anchor.X, oy+tick.Anchor.Y, ox+tick.GridTo.X, oy+tick.GridTo.Y)
		}
	}

	for _, mark := range sc.Marks {
		drawPDFMark(pdf, mark, ox, oy)
	}

	for _, ax := range sc.Axes {
		drawPDFAxis(pdf, ax, ox, oy)
	}

	if sc.Title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(51, 51, 51)
		width := pdf.GetStringWidth(sc.Title)
		pdf.Text(ox+float64(sc.Width)/2-width/2, oy+20, sc.Title)
	}

	if sc.Legend != nil {
		drawPDFLegend(pdf, sc.Legend, ox, oy)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &EncodingError{Format: "pdf", Msg: "writing document", Err: err}
	}
	return buf.Bytes(), nil
}

func drawPDFMark(pdf *fpdf.Fpdf, mark scene.Mark, ox, oy float64) {
	r, g, b := hexRGB(mark.Color)
	switch mark.Kind {
	case scene.KindBars:
		pdf.SetFillColor(r, g, b)
		for _, rect := range mark.Rects {
			pdf.Rect(ox+rect.X, oy+rect.Y, rect.W, rect.H, "F")
		}
	case scene.KindLine:
		pdf.SetDrawColor(r, g, b)
		pdf.SetLineWidth(2)
		pdf.SetLineJoinStyle("round")
		for i := 1; i < len(mark.Points); i++ {
			pdf.Line(ox+mark.Points[i-1].X, oy+mark.Points[i-1].Y, ox+mark.Points[i].X, oy+mark.Points[i].Y)
		}
	case scene.KindArea:
		pdf.SetFillColor(r, g, b)
		pdf.SetAlpha(0.7, "Normal")
		points := make([]fpdf.PointType, len(mark.Points))
		for i, p := range mark.Points {
			points[i] = fpdf.PointType{X: ox + p.X, Y: oy + p.Y}
		}
		pdf.Polygon(points, "F")
		pdf.SetAlpha(1.0, "Normal")
	case scene.KindPoints:
		pdf.SetFillColor(r, g, b)
		for _, p := range mark.Points {
			pdf.Circle(ox+p.X, oy+p.Y, mark.Radius, "F")
		}
	}
}

func drawPDFAxis(pdf *fpdf.Fpdf, ax scene.Axis, ox, oy float64) {
	pdf.SetDrawColor(68, 68, 68)
	pdf.SetLineWidth(0.75)
	pdf.Line(ox+ax.Line[0].X, oy+ax.Line[0].Y, ox+ax.Line[1].X, oy+ax.Line[1].Y)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(51, 51, 51)
	for _, tick := range ax.Ticks {
		if ax.Orient == "bottom" {
			pdf.Line(ox+tick.Anchor.X, oy+tick.Anchor.Y, ox+tick.Anchor.X, oy+tick.Anchor.Y+5)
			width := pdf.GetStringWidth(tick.Label)
			pdf.Text(ox+tick.Anchor.X-width/2, oy+tick.Anchor.Y+16, tick.Label)
		} else {
			pdf.Line(ox+tick.Anchor.X-5, oy+tick.Anchor.Y, ox+tick.Anchor.X, oy+tick.Anchor.Y)
			width := pdf.GetStringWidth(tick.Label)
			pdf.Text(ox+tick.Anchor.X-8-width, oy+tick.Anchor.Y+3, tick.Label)
		}
	}

	if ax.Title == "" {
		return
	}
	pdf.SetFont("Helvetica", "", 10)
	if ax.Orient == "bottom" {
		mid := (ax.Line[0].X + ax.Line[1].X) / 2
		width := pdf.GetStringWidth(ax.Title)
		pdf.Text(ox+mid-width/2, oy+ax.Line[0].Y+32, ax.Title)
	} else {
		mid := (ax.Line[0].Y + ax.Line[1].Y) / 2
		width := pdf.GetStringWidth(ax.Title)
		pdf.TransformBegin()
		pdf.TransformRotate(90, ox+ax.Line[0].X-34, oy+mid)
		pdf.Text(ox+ax.Line[0].X-34-width/2, oy+mid, ax.Title)
		pdf.TransformEnd()
	}
}

func drawPDFLegend(pdf *fpdf.Fpdf, legend *scene.Legend, ox, oy float64) {
	x, y := ox+legend.X, oy+legend.Y
	pdf.SetTextColor(51, 51, 51)
	if legend.Title != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(x, y, legend.Title)
		y += 16
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, entry := range legend.Entries {
		r, g, b := hexRGB(entry.Color)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(x, y-8, 10, 10, "F")
		pdf.Text(x+15, y, entry.Label)
		y += 15
	}
}

// hexRGB parses #rgb and #rrggbb color strings, defaulting to black.
func hexRGB(hex string) (int, int, int) {
	if len(hex) == 0 || hex[0] != '#' {
		return 0, 0, 0
	}
	hex = hex[1:]
	if len(hex) == 3 {
		hex = fmt.Sprintf("%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2])
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff)
}
