package scene

import (
	"math"
	"strconv"
)

// LinearScale maps a continuous domain onto a pixel range with an
// affine transform.
type LinearScale struct {
	DomainMin, DomainMax float64
	RangeMin, RangeMax   float64
}

// Apply maps a domain value to its pixel position.
func (s LinearScale) Apply(v float64) float64 {
	span := s.DomainMax - s.DomainMin
	if span == 0 {
		return (s.RangeMin + s.RangeMax) / 2
	}
	t := (v - s.DomainMin) / span
	return s.RangeMin + t*(s.RangeMax-s.RangeMin)
}

// Ticks returns about count tick values at round steps (1/2/5 times a
// power of ten) covering the domain.
func (s LinearScale) Ticks(count int) []float64 {
	if count <= 0 {
		count = 5
	}
	span := s.DomainMax - s.DomainMin
	if span <= 0 {
		return []float64{s.DomainMin}
	}
	step := niceStep(span / float64(count))
	start := math.Ceil(s.DomainMin/step) * step
	var out []float64
	for v := start; v <= s.DomainMax+step/1e6; v += step {
		// Snap to the step grid to avoid float drift in labels.
		out = append(out, math.Round(v/step)*step)
	}
	return out
}

// niceStep rounds a raw step up to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	frac := raw / mag
	switch {
	case frac <= 1:
		return mag
	case frac <= 2:
		return 2 * mag
	case frac <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// niceDomain widens [min, max] to tick-friendly bounds. includeZero
// forces the domain to contain zero (bar baselines).
func niceDomain(min, max float64, includeZero bool) (float64, float64) {
	if includeZero {
		if min > 0 {
			min = 0
		}
		if max < 0 {
			max = 0
		}
	}
	if min == max {
		// Degenerate domain: pad by one unit either side.
		return min - 1, max + 1
	}
	step := niceStep((max - min) / 5)
	return math.Floor(min/step) * step, math.Ceil(max/step) * step
}

// BandScale maps discrete values to banded pixel positions. Ordering
// is the explicit domain when given, otherwise first-seen order, so
// layout is deterministic for identical input.
type BandScale struct {
	domain             []string
	index              map[string]int
	rangeMin, rangeMax float64
	padding            float64 // fraction of one band left as gap
}

// NewBandScale builds a band scale over the given ordered domain.
func NewBandScale(domain []string, rangeMin, rangeMax, padding float64) *BandScale {
	idx := make(map[string]int, len(domain))
	for i, v := range domain {
		idx[v] = i
	}
	return &BandScale{
		domain:   domain,
		index:    idx,
		rangeMin: rangeMin,
		rangeMax: rangeMax,
		padding:  padding,
	}
}

// Domain returns the ordered category list.
func (s *BandScale) Domain() []string { return s.domain }

// Step is the distance between band starts.
func (s *BandScale) Step() float64 {
	if len(s.domain) == 0 {
		return 0
	}
	return (s.rangeMax - s.rangeMin) / float64(len(s.domain))
}

// Band is the drawable width of one band.
func (s *BandScale) Band() float64 {
	return s.Step() * (1 - s.padding)
}

// Start returns the left edge of a value's band, false when the value
// is not in the domain.
func (s *BandScale) Start(v string) (float64, bool) {
	i, ok := s.index[v]
	if !ok {
		return 0, false
	}
	return s.rangeMin + float64(i)*s.Step() + s.Step()*s.padding/2, true
}

// Center returns the midpoint of a value's band.
func (s *BandScale) Center(v string) (float64, bool) {
	start, ok := s.Start(v)
	if !ok {
		return 0, false
	}
	return start + s.Band()/2, true
}

// firstSeen returns unique values in order of first appearance.
func firstSeen(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// formatValue renders a data value as a category or tick label.
// Floats drop trailing zeros so 3.0 labels as "3".
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return ""
	}
}
