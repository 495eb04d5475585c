// Package energy holds the deterministic chart arithmetic: series bounds,
// bar color interpolation, a short-horizon forecast, and the placeholder
// series rendered when the backend has no data. Pure cosmetics; the
// backend owns the real numbers.
package energy

import (
	"fmt"
	"math/rand"
	"time"

	"gridview/internal/apiclient"
)

// Floor bounds keep a flat series from collapsing the color range.
const (
	boundsMinFloor = 10
	boundsMaxFloor = 50
)

// Bar is one renderable chart bar.
type Bar struct {
	Hour     string
	Energy   float64
	Color    string
	Forecast bool
}

// Bounds returns the color-normalization range for a series, clamped to
// the floor values so near-empty data still renders sensibly.
func Bounds(points []apiclient.UsagePoint) (min, max float64) {
	min, max = boundsMinFloor, boundsMaxFloor
	for _, p := range points {
		if p.Energy < min {
			min = p.Energy
		}
		if p.Energy > max {
			max = p.Energy
		}
	}
	return min, max
}

// Bars converts a usage series into renderable bars with interpolated
// colors.
func Bars(points []apiclient.UsagePoint) []Bar {
	min, max := Bounds(points)
	bars := make([]Bar, 0, len(points))
	for _, p := range points {
		bars = append(bars, Bar{
			Hour:   p.Hour,
			Energy: p.Energy,
			Color:  BarColor(p.Energy, min, max),
		})
	}
	return bars
}

// Forecast extends a series by horizon hours using a linear trend over the
// tail of the data. A short horizon against a short window is all the
// chart needs; anything smarter belongs server-side.
func Forecast(points []apiclient.UsagePoint, horizon int) []apiclient.UsagePoint {
	if horizon <= 0 || len(points) == 0 {
		return nil
	}

	window := len(points)
	if window > 6 {
		window = 6
	}
	tail := points[len(points)-window:]

	slope := 0.0
	if len(tail) > 1 {
		slope = (tail[len(tail)-1].Energy - tail[0].Energy) / float64(len(tail)-1)
	}

	lastHour, err := time.Parse("15:04", points[len(points)-1].Hour)
	if err != nil {
		lastHour = time.Time{}
	}
	lastEnergy := points[len(points)-1].Energy

	out := make([]apiclient.UsagePoint, 0, horizon)
	for i := 1; i <= horizon; i++ {
		predicted := lastEnergy + slope*float64(i)
		if predicted < 0 {
			predicted = 0
		}
		out = append(out, apiclient.UsagePoint{
			Hour:   lastHour.Add(time.Duration(i) * time.Hour).Format("15:04"),
			Energy: predicted,
		})
	}
	return out
}

// Placeholder builds a synthetic 24-hour series ending at now, used when
// the backend has no data for the selected building.
func Placeholder(now time.Time, rng *rand.Rand) []apiclient.UsagePoint {
	out := make([]apiclient.UsagePoint, 0, 24)
	for i := 23; i >= 0; i-- {
		hour := now.Add(-time.Duration(i) * time.Hour)
		out = append(out, apiclient.UsagePoint{
			Hour:   hour.Format("15:04"),
			Energy: float64(rng.Intn(50) + 10),
		})
	}
	return out
}

// EmissionColor maps a reported emission level to the dashboard's metric
// card color. Unknown levels read as medium.
func EmissionColor(level string) string {
	switch level {
	case "low":
		return "#22c55e"
	case "high":
		return "#ef4444"
	default:
		return "#eab308"
	}
}

// FormatKWh renders an energy value for display.
func FormatKWh(v float64) string {
	return fmt.Sprintf("%.0f kWh", v)
}
