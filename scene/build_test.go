package scene

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/drummonds/chartconv/chartspec"
)

func parseSpec(t *testing.T, raw string) *chartspec.Spec {
	t.Helper()
	spec, err := chartspec.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return spec
}

const ascendingLine = `{
	"mark": "line",
	"encoding": {
		"x": {"field": "iteration", "type": "quantitative"},
		"y": {"field": "score", "type": "quantitative"}
	},
	"data": {"iteration": [1, 2, 3], "score": [1, 2, 3]}
}`

func TestBuildLineScene(t *testing.T) {
	sc, err := Build(parseSpec(t, ascendingLine))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(sc.Marks) != 1 {
		t.Fatalf("got %d marks, want 1", len(sc.Marks))
	}
	mark := sc.Marks[0]
	if mark.Kind != KindLine {
		t.Errorf("mark kind = %q, want line", mark.Kind)
	}
	if len(mark.Points) != 3 {
		t.Fatalf("got %d vertices, want 3", len(mark.Points))
	}
	// Ascending data: x increases left to right, y decreases in pixel
	// space because the canvas origin is top-left.
	for i := 1; i < len(mark.Points); i++ {
		if mark.Points[i].X <= mark.Points[i-1].X {
			t.Errorf("vertex %d x %f not right of previous %f", i, mark.Points[i].X, mark.Points[i-1].X)
		}
		if mark.Points[i].Y >= mark.Points[i-1].Y {
			t.Errorf("vertex %d y %f not above previous %f", i, mark.Points[i].Y, mark.Points[i-1].Y)
		}
	}
	if len(sc.Axes) != 2 {
		t.Errorf("got %d axes, want 2", len(sc.Axes))
	}
}

func TestBuildMissingFieldFails(t *testing.T) {
	spec := parseSpec(t, `{
		"mark": "line",
		"encoding": {
			"x": {"field": "missing", "type": "quantitative"},
			"y": {"field": "score", "type": "quantitative"}
		},
		"data": {"score": [1, 2, 3]}
	}`)
	_, err := Build(spec)
	if err == nil {
		t.Fatal("Build succeeded, want LayoutError")
	}
	if !errors.Is(err, ErrLayout) {
		t.Errorf("error %v does not wrap ErrLayout", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error %q does not name the field", err.Error())
	}
}

func TestBuildBars(t *testing.T) {
	spec := parseSpec(t, `{
		"mark": "bar",
		"encoding": {
			"x": {"field": "category", "type": "nominal"},
			"y": {"field": "count", "type": "quantitative"}
		},
		"data": {"values": [
			{"category": "b", "count": 4},
			{"category": "a", "count": 2},
			{"category": "b", "count": 1}
		]}
	}`)
	sc, err := Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(sc.Marks) != 1 || len(sc.Marks[0].Rects) != 3 {
		t.Fatalf("marks = %+v, want one mark with 3 bars", sc.Marks)
	}
	for _, r := range sc.Marks[0].Rects {
		if r.H <= 0 || r.W <= 0 {
			t.Errorf("degenerate bar %+v", r)
		}
		if r.Y+r.H > sc.Plot.Y+sc.Plot.H+0.5 {
			t.Errorf("bar %+v extends below the plot baseline", r)
		}
	}

	// Band ordering is first-seen: "b" before "a".
	var xAxis *Axis
	for i := range sc.Axes {
		if sc.Axes[i].Orient == "bottom" {
			xAxis = &sc.Axes[i]
		}
	}
	if xAxis == nil {
		t.Fatal("no bottom axis built")
	}
	if len(xAxis.Ticks) != 2 || xAxis.Ticks[0].Label != "b" || xAxis.Ticks[1].Label != "a" {
		t.Errorf("x ticks = %+v, want first-seen order b, a", xAxis.Ticks)
	}
}

func TestBuildExplicitDomainOrder(t *testing.T) {
	spec := parseSpec(t, `{
		"mark": "bar",
		"encoding": {
			"x": {"field": "category", "type": "ordinal", "scale": {"domain": ["a", "b"]}},
			"y": {"field": "count", "type": "quantitative"}
		},
		"data": {"values": [{"category": "b", "count": 4}, {"category": "a", "count": 2}]}
	}`)
	sc, err := Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, ax := range sc.Axes {
		if ax.Orient == "bottom" {
			if len(ax.Ticks) != 2 || ax.Ticks[0].Label != "a" {
				t.Errorf("x ticks = %+v, want explicit order a, b", ax.Ticks)
			}
		}
	}
}

func TestBuildColorSeries(t *testing.T) {
	spec := parseSpec(t, `{
		"mark": "line",
		"encoding": {
			"x": {"field": "step", "type": "quantitative"},
			"y": {"field": "value", "type": "quantitative"},
			"color": {"field": "run", "type": "nominal"}
		},
		"data": {"values": [
			{"step": 1, "value": 1, "run": "a"},
			{"step": 2, "value": 2, "run": "a"},
			{"step": 1, "value": 3, "run": "b"},
			{"step": 2, "value": 1, "run": "b"}
		]}
	}`)
	sc, err := Build(spec)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(sc.Marks) != 2 {
		t.Fatalf("got %d marks, want one per series", len(sc.Marks))
	}
	if sc.Marks[0].Color == sc.Marks[1].Color {
		t.Error("series share a color")
	}
	if sc.Legend == nil || len(sc.Legend.Entries) != 2 {
		t.Fatalf("legend = %+v, want 2 entries", sc.Legend)
	}
	if sc.Legend.Entries[0].Label != "a" || sc.Legend.Entries[1].Label != "b" {
		t.Errorf("legend order = %+v, want a then b", sc.Legend.Entries)
	}
}

func TestBuildContinuousColorRejected(t *testing.T) {
	spec := parseSpec(t, `{
		"mark": "point",
		"encoding": {
			"x": {"field": "a", "type": "quantitative"},
			"y": {"field": "b", "type": "quantitative"},
			"color": {"field": "a", "type": "quantitative"}
		},
		"data": {"a": [1, 2], "b": [3, 4]}
	}`)
	_, err := Build(spec)
	if !errors.Is(err, ErrLayout) {
		t.Errorf("got %v, want LayoutError", err)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(parseSpec(t, ascendingLine))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := Build(parseSpec(t, ascendingLine))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(a.Marks) != len(b.Marks) || a.Marks[0].Points[0] != b.Marks[0].Points[0] {
		t.Error("identical input built different scenes")
	}
}

func TestLinearScale(t *testing.T) {
	s := LinearScale{DomainMin: 0, DomainMax: 10, RangeMin: 0, RangeMax: 100}
	if got := s.Apply(5); got != 50 {
		t.Errorf("Apply(5) = %f, want 50", got)
	}
	inverted := LinearScale{DomainMin: 0, DomainMax: 10, RangeMin: 100, RangeMax: 0}
	if got := inverted.Apply(10); got != 0 {
		t.Errorf("inverted Apply(10) = %f, want 0", got)
	}
	ticks := s.Ticks(5)
	if len(ticks) < 4 {
		t.Errorf("got %d ticks, want at least 4", len(ticks))
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] <= ticks[i-1] {
			t.Errorf("ticks not ascending: %v", ticks)
		}
	}
}

func TestBandScale(t *testing.T) {
	s := NewBandScale([]string{"x", "y", "z"}, 0, 300, 0.2)
	if got := s.Step(); math.Abs(got-100) > 1e-9 {
		t.Errorf("Step = %f, want 100", got)
	}
	cx, ok := s.Center("x")
	if !ok {
		t.Fatal("Center(x) not found")
	}
	cy, _ := s.Center("y")
	if math.Abs((cy-cx)-100) > 1e-9 {
		t.Errorf("band centers %f and %f not one step apart", cx, cy)
	}
	if _, ok := s.Center("absent"); ok {
		t.Error("Center returned a position for a value outside the domain")
	}
}

func TestNiceDomainIncludesZero(t *testing.T) {
	min, max := niceDomain(3, 9, true)
	if min > 0 {
		t.Errorf("min = %f, want <= 0 when zero is included", min)
	}
	if max < 9 {
		t.Errorf("max = %f, want >= 9", max)
	}
}
