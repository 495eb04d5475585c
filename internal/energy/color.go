package energy

import (
	"fmt"
	"math"
	"strconv"
)

// Chart gradient endpoints: "green energy" green fading into soft red as a
// bar approaches the day's maximum.
const (
	ColorLow  = "#4CAF50"
	ColorHigh = "#FF9999"
)

// hexToHSL converts "#rrggbb" to hue [0,360), saturation and lightness
// [0,100].
func hexToHSL(hex string) (h, s, l float64) {
	r := parseChannel(hex[1:3])
	g := parseChannel(hex[3:5])
	b := parseChannel(hex[5:7])

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l * 100
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	case b:
		h = (r-g)/d + 4
	}
	h /= 6

	return h * 360, s * 100, l * 100
}

func parseChannel(hex string) float64 {
	v, _ := strconv.ParseUint(hex, 16, 8)
	return float64(v) / 255
}

// hslToHex converts HSL (h in degrees, s and l in percent) back to
// "#rrggbb".
func hslToHex(h, s, l float64) string {
	s /= 100
	l /= 100

	f := func(n float64) int {
		k := math.Mod(n+h/30, 12)
		a := s * math.Min(l, 1-l)
		x := l - a*math.Max(-1, math.Min(k-3, math.Min(9-k, 1)))
		return int(math.Round(x * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", f(0), f(8), f(4))
}

// LerpHex interpolates between two hex colors through HSL space at
// t in [0,1].
func LerpHex(start, end string, t float64) string {
	sh, ss, sl := hexToHSL(start)
	eh, es, el := hexToHSL(end)
	return hslToHex(sh+t*(eh-sh), ss+t*(es-ss), sl+t*(el-sl))
}

// BarColor picks the gradient color for one bar given the series bounds.
// The transition scale is deliberately uneven: values in the lower half
// stay green longer, then ramp quickly toward red near the top.
func BarColor(energy, min, max float64) string {
	t := 0.0
	if max > min {
		t = (energy - min) / (max - min)
	}

	if t < 0.5 {
		t = t * 0.5
	} else {
		t = 0.5 + (t-0.7)*2.5
	}
	t = math.Max(0, math.Min(1, t))

	return LerpHex(ColorLow, ColorHigh, t)
}
