package web

import (
	"gridview/internal/apiclient"
	"gridview/internal/energy"
)

// Fixed SVG geometry for the usage chart.
const (
	chartWidth  = 720
	chartHeight = 200
	chartGutter = 16
	barGap      = 2
	labelLeeway = 10
)

// chartBar is one positioned, colored SVG bar.
type chartBar struct {
	Hour     string
	X        int
	Y        int
	Width    int
	Height   int
	LabelX   int
	LabelY   int
	Color    string
	Forecast bool
}

// chartBars lays out the measured series plus its forecast extension.
// Colors normalize over the combined series so forecast bars read on the
// same scale.
func chartBars(usage, forecast []apiclient.UsagePoint) []chartBar {
	combined := make([]apiclient.UsagePoint, 0, len(usage)+len(forecast))
	combined = append(combined, usage...)
	combined = append(combined, forecast...)
	if len(combined) == 0 {
		return nil
	}

	min, max := energy.Bounds(combined)
	plotHeight := chartHeight - chartGutter - labelLeeway
	barWidth := (chartWidth - chartGutter) / len(combined)
	if barWidth < barGap+1 {
		barWidth = barGap + 1
	}

	bars := make([]chartBar, 0, len(combined))
	for i, p := range combined {
		frac := 0.0
		if max > min {
			frac = (p.Energy - min) / (max - min)
		}
		h := int(frac * float64(plotHeight))
		if h < 2 {
			h = 2
		}
		x := chartGutter/2 + i*barWidth
		bars = append(bars, chartBar{
			Hour:     p.Hour,
			X:        x,
			Y:        chartGutter/2 + plotHeight - h,
			Width:    barWidth - barGap,
			Height:   h,
			LabelX:   x + (barWidth-barGap)/2,
			LabelY:   chartGutter/2 + plotHeight + labelLeeway,
			Color:    energy.BarColor(p.Energy, min, max),
			Forecast: i >= len(usage),
		})
	}
	return bars
}
