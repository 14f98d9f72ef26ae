package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"10.5", 10.5},
		{"-20.25", -20.25},
		{"  14", 14},
		{"12.5km", 12.5},
		{".5", 0.5},
		{"3.", 3},
		{"1e3", 1000},
		{"1e", 1},
		{"-Infinity", math.Inf(-1)},
		{"1e999", math.Inf(1)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseFloat(tc.in), "input %q", tc.in)
	}
}

func TestParseFloatWithoutNumberIsNaN(t *testing.T) {
	for _, in := range []string{"", "abc", "NaN", "-", "x12"} {
		assert.True(t, math.IsNaN(ParseFloat(in)), "input %q", in)
	}
}

func TestFormatFloatRoundTrips(t *testing.T) {
	for _, f := range []float64{0, 10.5, -122.41941550000001, 1.0 / 3, 14, math.Inf(1), math.Inf(-1)} {
		assert.Equal(t, f, ParseFloat(FormatFloat(f)))
	}
}

func TestViewportValid(t *testing.T) {
	assert.True(t, Viewport{Center: LngLat{1, 2}, Zoom: 0}.Valid())
	assert.False(t, Viewport{Center: LngLat{math.NaN(), 2}, Zoom: 3}.Valid())
	assert.False(t, Viewport{Center: LngLat{1, 2}, Zoom: -1}.Valid())
	assert.False(t, Viewport{Center: LngLat{1, 2}, Zoom: math.Inf(1)}.Valid())
}
