package chartspec

// Default canvas size when the specification leaves width/height unset.
const (
	DefaultWidth  = 400
	DefaultHeight = 300
)

// Mark types the layout engine knows how to draw.
const (
	MarkBar   = "bar"
	MarkLine  = "line"
	MarkPoint = "point"
	MarkArea  = "area"
)

// Channel types, matching the usual grammar-of-graphics vocabulary.
const (
	TypeQuantitative = "quantitative"
	TypeNominal      = "nominal"
	TypeOrdinal      = "ordinal"
	TypeTemporal     = "temporal"
)

// Spec is a declarative chart description: one mark, a set of encoding
// channels binding data fields to visual channels, and inline data.
// A Spec is immutable once handed to the conversion pipeline.
type Spec struct {
	Title      string   `json:"title,omitempty"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	Background string   `json:"background,omitempty"`
	Mark       string   `json:"mark"`
	Encoding   Encoding `json:"encoding"`
	Data       Data     `json:"data"`
}

// Encoding maps visual channels to data fields.
type Encoding struct {
	X     *Channel `json:"x,omitempty"`
	Y     *Channel `json:"y,omitempty"`
	Color *Channel `json:"color,omitempty"`
}

// Channel binds one data field to a visual channel.
type Channel struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	Scale *Scale `json:"scale,omitempty"`
	Axis  *Axis  `json:"axis,omitempty"`
}

// Scale overrides the inferred domain of a channel.
// For quantitative channels DomainMin/DomainMax apply; for discrete
// channels Domain gives an explicit category order.
type Scale struct {
	Domain    []string `json:"domain,omitempty"`
	DomainMin *float64 `json:"domainMin,omitempty"`
	DomainMax *float64 `json:"domainMax,omitempty"`
	Zero      *bool    `json:"zero,omitempty"`
}

// Axis customizes the chart furniture drawn for a positional channel.
type Axis struct {
	Title     string `json:"title,omitempty"`
	TickCount int    `json:"tickCount,omitempty"`
	Grid      *bool  `json:"grid,omitempty"`
}

// Channels returns the non-nil channels keyed by channel name, in a
// fixed order (x, y, color) so callers iterate deterministically.
func (e Encoding) Channels() []NamedChannel {
	var out []NamedChannel
	if e.X != nil {
		out = append(out, NamedChannel{Name: "x", Channel: e.X})
	}
	if e.Y != nil {
		out = append(out, NamedChannel{Name: "y", Channel: e.Y})
	}
	if e.Color != nil {
		out = append(out, NamedChannel{Name: "color", Channel: e.Color})
	}
	return out
}

// NamedChannel pairs a channel with its encoding slot name.
type NamedChannel struct {
	Name    string
	Channel *Channel
}
