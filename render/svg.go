// Package render holds one encoder per output format. Every encoder
// consumes a resolved scene (or the normalized specification for the
// structured-document format) and produces complete output bytes, or
// fails with an EncodingError. Encoders are stateless and safe for
// concurrent use.
package render

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/drummonds/chartconv/scene"
)

const (
	fontFamily = "Helvetica, Arial, sans-serif"
	gridColor  = "#ddd"
	axisColor  = "#444"
	textColor  = "#333"
)

// EncodeSVG serializes a scene as a standalone SVG document. Output is
// pure vector markup, byte-for-byte deterministic for identical scenes.
func EncodeSVG(sc *scene.Scene) ([]byte, error) {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(sc.Width, sc.Height)

	background := sc.Background
	if background == "" {
		background = "#fff"
	}
	canvas.Rect(0, 0, sc.Width, sc.Height, "fill:"+background)

	// Grid sits under the marks.
	for _, ax := range sc.Axes {
		if !ax.Grid {
			continue
		}
		for _, tick := range ax.Ticks {
			canvas.Line(px(tick.Anchor.X), px(tick.Anchor.Y), px(tick.GridTo.X), px(tick.GridTo.Y),
				"stroke:"+gridColor+";stroke-width:1")
		}
	}

	for _, mark := range sc.Marks {
		drawMark(canvas, mark)
	}

	for _, ax := range sc.Axes {
		drawAxis(canvas, sc, ax)
	}

	if sc.Title != "" {
		canvas.Text(sc.Width/2, 20, sc.Title,
			fmt.Sprintf("text-anchor:middle;font-family:%s;font-size:16px;font-weight:bold;fill:%s", fontFamily, textColor))
	}
	if sc.Legend != nil {
		drawLegend(canvas, sc.Legend)
	}

	canvas.End()
	return buf.Bytes(), nil
}

func drawMark(canvas *svg.SVG, mark scene.Mark) {
	switch mark.Kind {
	case scene.KindBars:
		for _, r := range mark.Rects {
			canvas.Rect(px(r.X), px(r.Y), px(r.W), px(r.H), "fill:"+mark.Color)
		}
	case scene.KindLine:
		xs, ys := coords(mark.Points)
		canvas.Polyline(xs, ys,
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:2;stroke-linejoin:round", mark.Color))
	case scene.KindArea:
		xs, ys := coords(mark.Points)
		canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:0.7;stroke:none", mark.Color))
	case scene.KindPoints:
		for _, p := range mark.Points {
			canvas.Circle(px(p.X), px(p.Y), px(mark.Radius), "fill:"+mark.Color)
		}
	}
}

func drawAxis(canvas *svg.SVG, sc *scene.Scene, ax scene.Axis) {
	canvas.Line(px(ax.Line[0].X), px(ax.Line[0].Y), px(ax.Line[1].X), px(ax.Line[1].Y),
		"stroke:"+axisColor+";stroke-width:1")

	labelStyle := fmt.Sprintf("font-family:%s;font-size:11px;fill:%s", fontFamily, textColor)
	for _, tick := range ax.Ticks {
		if ax.Orient == "bottom" {
			canvas.Line(px(tick.Anchor.X), px(tick.Anchor.Y), px(tick.Anchor.X), px(tick.Anchor.Y)+5,
				"stroke:"+axisColor+";stroke-width:1")
			canvas.Text(px(tick.Anchor.X), px(tick.Anchor.Y)+18, tick.Label,
				"text-anchor:middle;"+labelStyle)
		} else {
			canvas.Line(px(tick.Anchor.X)-5, px(tick.Anchor.Y), px(tick.Anchor.X), px(tick.Anchor.Y),
				"stroke:"+axisColor+";stroke-width:1")
			canvas.Text(px(tick.Anchor.X)-8, px(tick.Anchor.Y)+4, tick.Label,
				"text-anchor:end;"+labelStyle)
		}
	}

	if ax.Title == "" {
		return
	}
	titleStyle := fmt.Sprintf("text-anchor:middle;font-family:%s;font-size:12px;fill:%s", fontFamily, textColor)
	if ax.Orient == "bottom" {
		mid := (ax.Line[0].X + ax.Line[1].X) / 2
		canvas.Text(px(mid), px(ax.Line[0].Y)+36, ax.Title, titleStyle)
	} else {
		mid := (ax.Line[0].Y + ax.Line[1].Y) / 2
		canvas.TranslateRotate(px(ax.Line[0].X)-38, px(mid), -90)
		canvas.Text(0, 0, ax.Title, titleStyle)
		canvas.Gend()
	}
}

func drawLegend(canvas *svg.SVG, legend *scene.Legend) {
	x, y := px(legend.X), px(legend.Y)
	if legend.Title != "" {
		canvas.Text(x, y, legend.Title,
			fmt.Sprintf("font-family:%s;font-size:12px;font-weight:bold;fill:%s", fontFamily, textColor))
		y += 16
	}
	for _, entry := range legend.Entries {
		canvas.Rect(x, y-9, 11, 11, "fill:"+entry.Color)
		canvas.Text(x+16, y, entry.Label,
			fmt.Sprintf("font-family:%s;font-size:11px;fill:%s", fontFamily, textColor))
		y += 17
	}
}

func coords(points []scene.Point) ([]int, []int) {
	xs := make([]int, len(points))
	ys := make([]int, len(points))
	for i, p := range points {
		xs[i] = px(p.X)
		ys[i] = px(p.Y)
	}
	return xs, ys
}

// px rounds a layout coordinate to a whole SVG pixel.
func px(v float64) int {
	return int(math.Round(v))
}
