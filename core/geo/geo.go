// Package geo holds the small value types shared by the explore core:
// geographic points, viewports and screen points.
package geo

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// LngLat is a geographic position in degrees.
type LngLat struct {
	Lng float64
	Lat float64
}

// Finite reports whether both coordinates are finite numbers.
func (p LngLat) Finite() bool {
	return finite(p.Lng) && finite(p.Lat)
}

// Viewport is the visible center and zoom level of a map.
type Viewport struct {
	Center LngLat
	Zoom   float64
}

// Valid reports whether the viewport holds finite coordinates and a
// non-negative finite zoom.
func (v Viewport) Valid() bool {
	return v.Center.Finite() && finite(v.Zoom) && v.Zoom >= 0
}

// ScreenPoint is a position on the map widget's canvas, in cells or pixels
// depending on the widget.
type ScreenPoint struct {
	X int
	Y int
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseFloat parses the longest numeric prefix of s after leading
// whitespace. It never fails: input without a numeric prefix yields NaN.
// "12.5km" parses as 12.5, "abc" as NaN and "1e999" as +Inf.
func ParseFloat(s string) float64 {
	m := floatPrefix.FindString(strings.TrimLeft(s, " \t\n\r\v\f"))
	if m == "" {
		return math.NaN()
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// FormatFloat renders f with the fewest digits that parse back to the
// same value.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
