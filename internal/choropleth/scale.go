package choropleth

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when a color range has max at or below min,
// whether from configuration or a per-request override.
var ErrInvalidRange = errors.New("choropleth: invalid color range")

// Blues sequential ramp, light to dark. Values map onto the ramp linearly
// over [Min, Max] and clamp at the ends, so everything at or above Max gets
// the darkest blue.
var bluesRamp = [][3]uint8{
	{247, 251, 255},
	{222, 235, 247},
	{198, 219, 239},
	{158, 202, 225},
	{107, 174, 214},
	{66, 146, 198},
	{33, 113, 181},
	{8, 81, 156},
	{8, 48, 107},
}

// NoDataFill is the neutral fill for features without a matching case row.
const NoDataFill = "#d9d9d9"

// Scale maps case counts onto the Blues ramp over a fixed range.
type Scale struct {
	Min float64
	Max float64
}

// NewScale validates and builds a color scale.
func NewScale(min, max float64) (Scale, error) {
	if max <= min {
		return Scale{}, fmt.Errorf("%w: max (%v) must exceed min (%v)", ErrInvalidRange, max, min)
	}
	return Scale{Min: min, Max: max}, nil
}

// Color returns the hex fill color for a value, clamped to the scale range.
func (s Scale) Color(v float64) string {
	t := (v - s.Min) / (s.Max - s.Min)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	// Position within the ramp, interpolating between adjacent anchors.
	pos := t * float64(len(bluesRamp)-1)
	i := int(pos)
	if i >= len(bluesRamp)-1 {
		return hex(bluesRamp[len(bluesRamp)-1])
	}
	frac := pos - float64(i)

	lo, hi := bluesRamp[i], bluesRamp[i+1]
	return hex([3]uint8{
		lerp(lo[0], hi[0], frac),
		lerp(lo[1], hi[1], frac),
		lerp(lo[2], hi[2], frac),
	})
}

// LegendEntry is one labeled stop on the rendered legend.
type LegendEntry struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Legend returns n evenly spaced stops across the scale range, light to dark.
func (s Scale) Legend(n int) []LegendEntry {
	if n < 2 {
		n = 2
	}
	entries := make([]LegendEntry, n)
	step := (s.Max - s.Min) / float64(n-1)
	for i := range entries {
		v := s.Min + step*float64(i)
		entries[i] = LegendEntry{Value: v, Color: s.Color(v)}
	}
	return entries
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

func hex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
