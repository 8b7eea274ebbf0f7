// Package scene resolves a validated chart specification into a
// renderable scene graph: scales map data to pixel positions, marks
// carry concrete geometry and axes/legends/titles are laid out as
// chart furniture. A Scene is read-only once built and is discarded
// after encoding; building either yields a complete Scene or fails,
// never a partial one.
package scene

// Scene is the resolved, renderable form of one specification.
type Scene struct {
	Width      int
	Height     int
	Background string
	Title      string
	Plot       Rect
	Marks      []Mark
	Axes       []Axis
	Legend     *Legend
}

// Rect is an axis-aligned rectangle in canvas coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Point is a position in canvas coordinates.
type Point struct {
	X, Y float64
}

// Mark geometry kinds.
const (
	KindBars   = "bars"
	KindLine   = "line"
	KindArea   = "area"
	KindPoints = "points"
)

// Mark is one drawable group: a bar series, a polyline, an area
// polygon or a set of points, all sharing a color.
type Mark struct {
	Kind   string
	Series string // legend label, empty when no color channel
	Color  string
	Points []Point // vertices for line/area, centers for points
	Rects  []Rect  // bars
	Radius float64 // point radius
}

// Axis is a laid-out axis guide with tick positions and labels.
type Axis struct {
	Orient string // "bottom" or "left"
	Title  string
	Line   [2]Point
	Ticks  []Tick
	Grid   bool
}

// Tick is one axis tick: its anchor on the axis line, its label and
// the far end of the optional grid line across the plot.
type Tick struct {
	Anchor Point
	Label  string
	GridTo Point
}

// Legend describes the color legend for a discrete color channel.
type Legend struct {
	Title   string
	X, Y    float64
	Entries []LegendEntry
}

// LegendEntry is one swatch/label pair.
type LegendEntry struct {
	Label string
	Color string
}

// Palette used for discrete color channels, in assignment order.
var Palette = []string{
	"#4C78A8", "#F58518", "#54A24B", "#E45756", "#72B7B2",
	"#EECA3B", "#B279A2", "#FF9DA6", "#9D755D", "#BAB0AC",
}

// DefaultColor is used when the specification has no color channel.
const DefaultColor = "#4C78A8"
