package scene

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/drummonds/chartconv/chartspec"
)

// Layout constants. Margins follow the usual convention of a wider
// gutter on the left (y tick labels) and bottom (x tick labels).
const (
	marginLeft   = 54.0
	marginRight  = 20.0
	marginTop    = 16.0
	marginBottom = 46.0
	titleSpace   = 26.0
	legendWidth  = 112.0
	bandPadding  = 0.2
	pointRadius  = 3.0
)

// Build resolves a parsed specification into a Scene. It fails with a
// LayoutError when an encoding references a field absent from the
// bound data, and never returns a partially built Scene.
func Build(spec *chartspec.Spec) (*Scene, error) {
	if err := checkFields(spec); err != nil {
		return nil, err
	}

	sc := &Scene{
		Width:      spec.Width,
		Height:     spec.Height,
		Background: spec.Background,
		Title:      spec.Title,
	}

	top := marginTop
	if spec.Title != "" {
		top += titleSpace
	}
	right := marginRight
	if spec.Encoding.Color != nil {
		right += legendWidth
	}
	sc.Plot = Rect{
		X: marginLeft,
		Y: top,
		W: float64(spec.Width) - marginLeft - right,
		H: float64(spec.Height) - top - marginBottom,
	}
	if sc.Plot.W <= 0 || sc.Plot.H <= 0 {
		return nil, &LayoutError{Msg: fmt.Sprintf("canvas %dx%d too small for plot area", spec.Width, spec.Height)}
	}

	x, err := resolveChannel(spec, spec.Encoding.X, "x", sc.Plot.X, sc.Plot.X+sc.Plot.W)
	if err != nil {
		return nil, err
	}
	// The y pixel range is inverted: larger values sit higher up.
	y, err := resolveChannel(spec, spec.Encoding.Y, "y", sc.Plot.Y+sc.Plot.H, sc.Plot.Y)
	if err != nil {
		return nil, err
	}

	series, err := splitSeries(spec)
	if err != nil {
		return nil, err
	}

	for _, s := range series {
		mark, err := buildMark(spec, s, x, y)
		if err != nil {
			return nil, err
		}
		if mark != nil {
			sc.Marks = append(sc.Marks, *mark)
		}
	}

	sc.Axes = buildAxes(spec, sc.Plot, x, y)
	if spec.Encoding.Color != nil {
		sc.Legend = buildLegend(spec, sc.Plot, series)
	}
	return sc, nil
}

// checkFields verifies every encoded field exists in the bound data.
func checkFields(spec *chartspec.Spec) error {
	if len(spec.Data.Values) == 0 {
		return nil // nothing bound, nothing to resolve against
	}
	fields := spec.Data.Fields()
	for _, nc := range spec.Encoding.Channels() {
		if !fields[nc.Channel.Field] {
			return &LayoutError{
				Field: nc.Channel.Field,
				Msg:   fmt.Sprintf("referenced by encoding.%s but absent from the bound data", nc.Name),
			}
		}
	}
	return nil
}

// resolvedChannel is a positional channel with its scale and the
// per-row values already projected into scale space.
type resolvedChannel struct {
	ch         *chartspec.Channel
	continuous bool
	temporal   bool
	scale      LinearScale
	band       *BandScale
	nums       []float64 // per row, NaN when the row lacks the field
	labels     []string  // per row, "" when the row lacks the field
}

func resolveChannel(spec *chartspec.Spec, ch *chartspec.Channel, name string, rangeMin, rangeMax float64) (*resolvedChannel, error) {
	if ch == nil {
		return nil, nil
	}
	rc := &resolvedChannel{ch: ch}
	switch ch.Type {
	case chartspec.TypeQuantitative, chartspec.TypeTemporal:
		rc.continuous = true
		rc.temporal = ch.Type == chartspec.TypeTemporal
		rc.nums = make([]float64, len(spec.Data.Values))
		min, max := math.Inf(1), math.Inf(-1)
		for i, row := range spec.Data.Values {
			v, ok := numericValue(row[ch.Field], rc.temporal)
			if !ok {
				rc.nums[i] = math.NaN()
				continue
			}
			rc.nums[i] = v
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
		if math.IsInf(min, 1) {
			min, max = 0, 1 // no values at all, pick a unit domain
		}
		includeZero := includeZeroDefault(spec, ch)
		if ch.Scale != nil && ch.Scale.Zero != nil {
			includeZero = *ch.Scale.Zero
		}
		min, max = niceDomain(min, max, includeZero)
		if ch.Scale != nil {
			if ch.Scale.DomainMin != nil {
				min = *ch.Scale.DomainMin
			}
			if ch.Scale.DomainMax != nil {
				max = *ch.Scale.DomainMax
			}
		}
		rc.scale = LinearScale{DomainMin: min, DomainMax: max, RangeMin: rangeMin, RangeMax: rangeMax}

	default: // nominal, ordinal
		rc.labels = make([]string, len(spec.Data.Values))
		for i, row := range spec.Data.Values {
			rc.labels[i] = formatValue(row[ch.Field])
		}
		domain := firstSeen(rc.labels)
		if ch.Scale != nil && len(ch.Scale.Domain) > 0 {
			domain = ch.Scale.Domain
		}
		lo, hi := rangeMin, rangeMax
		if lo > hi {
			lo, hi = hi, lo // band positions grow downward on y
		}
		rc.band = NewBandScale(domain, lo, hi, bandPadding)
	}
	return rc, nil
}

// includeZeroDefault: bar and area marks are anchored at a zero
// baseline on their quantitative axis.
func includeZeroDefault(spec *chartspec.Spec, ch *chartspec.Channel) bool {
	if ch.Type != chartspec.TypeQuantitative {
		return false
	}
	return spec.Mark == chartspec.MarkBar || spec.Mark == chartspec.MarkArea
}

// numericValue projects a data value onto the number line. Temporal
// strings become unix seconds.
func numericValue(v any, temporal bool) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		if !temporal {
			return 0, false
		}
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return float64(t.Unix()), true
		}
		if t, err := time.Parse("2006-01-02", val); err == nil {
			return float64(t.Unix()), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// seriesGroup is one color series: its label, palette color and the
// indices of its rows.
type seriesGroup struct {
	label string
	color string
	rows  []int
}

// splitSeries partitions row indices by the color channel value.
// Without a color channel there is a single unnamed series. Series
// order follows the color domain (explicit, or first seen).
func splitSeries(spec *chartspec.Spec) ([]seriesGroup, error) {
	rows := spec.Data.Values
	color := spec.Encoding.Color
	if color == nil {
		all := make([]int, len(rows))
		for i := range rows {
			all[i] = i
		}
		return []seriesGroup{{color: DefaultColor, rows: all}}, nil
	}
	if color.Type == chartspec.TypeQuantitative || color.Type == chartspec.TypeTemporal {
		return nil, &LayoutError{
			Field: color.Field,
			Msg:   "continuous color channels are not supported; declare the field nominal or ordinal",
		}
	}

	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = formatValue(row[color.Field])
	}
	domain := firstSeen(labels)
	if color.Scale != nil && len(color.Scale.Domain) > 0 {
		domain = color.Scale.Domain
	}

	byLabel := make(map[string][]int, len(domain))
	for i, label := range labels {
		byLabel[label] = append(byLabel[label], i)
	}
	groups := make([]seriesGroup, 0, len(domain))
	for i, label := range domain {
		groups = append(groups, seriesGroup{
			label: label,
			color: Palette[i%len(Palette)],
			rows:  byLabel[label],
		})
	}
	return groups, nil
}

// buildMark produces the geometry for one series.
func buildMark(spec *chartspec.Spec, s seriesGroup, x, y *resolvedChannel) (*Mark, error) {
	switch spec.Mark {
	case chartspec.MarkBar:
		return buildBars(spec, s, x, y)
	case chartspec.MarkLine, chartspec.MarkArea:
		return buildPath(spec, s, x, y)
	case chartspec.MarkPoint:
		return buildPoints(s, x, y)
	}
	return nil, &LayoutError{Msg: fmt.Sprintf("no geometry for mark %q", spec.Mark)}
}

func buildBars(spec *chartspec.Spec, s seriesGroup, x, y *resolvedChannel) (*Mark, error) {
	mark := &Mark{Kind: KindBars, Series: s.label, Color: s.color}
	switch {
	case x != nil && x.band != nil && y != nil && y.continuous:
		base := baseline(y.scale)
		for _, i := range s.rows {
			start, ok := x.band.Start(x.labels[i])
			if !ok || math.IsNaN(y.nums[i]) {
				continue
			}
			top := y.scale.Apply(y.nums[i])
			mark.Rects = append(mark.Rects, Rect{
				X: start, Y: math.Min(top, base),
				W: x.band.Band(), H: math.Abs(base - top),
			})
		}
	case y != nil && y.band != nil && x != nil && x.continuous:
		base := baseline(x.scale)
		for _, i := range s.rows {
			start, ok := y.band.Start(y.labels[i])
			if !ok || math.IsNaN(x.nums[i]) {
				continue
			}
			end := x.scale.Apply(x.nums[i])
			mark.Rects = append(mark.Rects, Rect{
				X: math.Min(base, end), Y: start,
				W: math.Abs(end - base), H: y.band.Band(),
			})
		}
	default:
		return nil, &LayoutError{Msg: "bar marks need one discrete and one quantitative positional channel"}
	}
	return mark, nil
}

// baseline is the pixel position of zero, clamped into the domain.
func baseline(s LinearScale) float64 {
	zero := 0.0
	if zero < s.DomainMin {
		zero = s.DomainMin
	}
	if zero > s.DomainMax {
		zero = s.DomainMax
	}
	return s.Apply(zero)
}

func buildPath(spec *chartspec.Spec, s seriesGroup, x, y *resolvedChannel) (*Mark, error) {
	if x == nil || y == nil {
		return nil, &LayoutError{Msg: "line and area marks need both x and y channels"}
	}
	kind := KindLine
	if spec.Mark == chartspec.MarkArea {
		kind = KindArea
	}
	mark := &Mark{Kind: kind, Series: s.label, Color: s.color}

	rows := append([]int(nil), s.rows...)
	// Paths are drawn left to right along x.
	sort.SliceStable(rows, func(a, b int) bool {
		return xOrder(x, rows[a]) < xOrder(x, rows[b])
	})
	for _, i := range rows {
		px, okx := position(x, i)
		py, oky := position(y, i)
		if !okx || !oky {
			continue
		}
		mark.Points = append(mark.Points, Point{X: px, Y: py})
	}
	if len(mark.Points) == 0 {
		return nil, nil
	}
	if kind == KindArea && y.continuous {
		// Close the polygon along the zero baseline.
		base := baseline(y.scale)
		first, last := mark.Points[0], mark.Points[len(mark.Points)-1]
		mark.Points = append(mark.Points, Point{X: last.X, Y: base}, Point{X: first.X, Y: base})
	}
	return mark, nil
}

func buildPoints(s seriesGroup, x, y *resolvedChannel) (*Mark, error) {
	if x == nil || y == nil {
		return nil, &LayoutError{Msg: "point marks need both x and y channels"}
	}
	mark := &Mark{Kind: KindPoints, Series: s.label, Color: s.color, Radius: pointRadius}
	for _, i := range s.rows {
		px, okx := position(x, i)
		py, oky := position(y, i)
		if !okx || !oky {
			continue
		}
		mark.Points = append(mark.Points, Point{X: px, Y: py})
	}
	if len(mark.Points) == 0 {
		return nil, nil
	}
	return mark, nil
}

// position maps row i through the channel's scale.
func position(rc *resolvedChannel, i int) (float64, bool) {
	if rc.continuous {
		if math.IsNaN(rc.nums[i]) {
			return 0, false
		}
		return rc.scale.Apply(rc.nums[i]), true
	}
	return rc.band.Center(rc.labels[i])
}

// xOrder gives the sort key for path vertices: the data value for
// continuous x, the band index for discrete x.
func xOrder(x *resolvedChannel, i int) float64 {
	if x.continuous {
		v := x.nums[i]
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}
	pos, ok := x.band.Center(x.labels[i])
	if !ok {
		return math.Inf(1)
	}
	return pos
}
