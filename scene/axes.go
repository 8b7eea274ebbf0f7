package scene

import (
	"math"
	"strconv"
	"time"

	"github.com/drummonds/chartconv/chartspec"
)

const defaultTickCount = 5

// buildAxes lays out the bottom (x) and left (y) axis guides.
func buildAxes(spec *chartspec.Spec, plot Rect, x, y *resolvedChannel) []Axis {
	var axes []Axis
	if x != nil {
		axes = append(axes, buildAxis(x, "bottom", plot))
	}
	if y != nil {
		axes = append(axes, buildAxis(y, "left", plot))
	}
	return axes
}

func buildAxis(rc *resolvedChannel, orient string, plot Rect) Axis {
	ax := Axis{
		Orient: orient,
		Title:  rc.ch.Title,
		// Grid lines are drawn for continuous axes only, unless the
		// specification says otherwise.
		Grid: rc.continuous,
	}
	if rc.ch.Axis != nil {
		if rc.ch.Axis.Title != "" {
			ax.Title = rc.ch.Axis.Title
		}
		if rc.ch.Axis.Grid != nil {
			ax.Grid = *rc.ch.Axis.Grid
		}
	}

	bottom := plot.Y + plot.H
	if orient == "bottom" {
		ax.Line = [2]Point{{X: plot.X, Y: bottom}, {X: plot.X + plot.W, Y: bottom}}
	} else {
		ax.Line = [2]Point{{X: plot.X, Y: plot.Y}, {X: plot.X, Y: bottom}}
	}

	count := defaultTickCount
	if rc.ch.Axis != nil && rc.ch.Axis.TickCount > 0 {
		count = rc.ch.Axis.TickCount
	}

	if rc.continuous {
		for _, v := range rc.scale.Ticks(count) {
			pos := rc.scale.Apply(v)
			ax.Ticks = append(ax.Ticks, makeTick(orient, pos, tickLabel(rc, v), plot))
		}
		return ax
	}
	for _, label := range rc.band.Domain() {
		pos, _ := rc.band.Center(label)
		ax.Ticks = append(ax.Ticks, makeTick(orient, pos, label, plot))
	}
	return ax
}

func makeTick(orient string, pos float64, label string, plot Rect) Tick {
	bottom := plot.Y + plot.H
	if orient == "bottom" {
		return Tick{
			Anchor: Point{X: pos, Y: bottom},
			Label:  label,
			GridTo: Point{X: pos, Y: plot.Y},
		}
	}
	return Tick{
		Anchor: Point{X: plot.X, Y: pos},
		Label:  label,
		GridTo: Point{X: plot.X + plot.W, Y: pos},
	}
}

func tickLabel(rc *resolvedChannel, v float64) string {
	if rc.temporal {
		return time.Unix(int64(v), 0).UTC().Format("2006-01-02")
	}
	// Round away float drift from tick stepping before labelling.
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

// buildLegend places the color legend to the right of the plot.
func buildLegend(spec *chartspec.Spec, plot Rect, series []seriesGroup) *Legend {
	legend := &Legend{
		Title: spec.Encoding.Color.Title,
		X:     plot.X + plot.W + 16,
		Y:     plot.Y + 8,
	}
	for _, s := range series {
		legend.Entries = append(legend.Entries, LegendEntry{Label: s.label, Color: s.color})
	}
	return legend
}
