package energy

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridview/internal/apiclient"
)

func points(energies ...float64) []apiclient.UsagePoint {
	out := make([]apiclient.UsagePoint, 0, len(energies))
	for i, e := range energies {
		out = append(out, apiclient.UsagePoint{
			Hour:   time.Date(2026, 8, 30, 8+i, 0, 0, 0, time.UTC).Format("15:04"),
			Energy: e,
		})
	}
	return out
}

func TestBounds(t *testing.T) {
	t.Run("floors hold for an empty series", func(t *testing.T) {
		min, max := Bounds(nil)
		assert.Equal(t, float64(boundsMinFloor), min)
		assert.Equal(t, float64(boundsMaxFloor), max)
	})

	t.Run("floors hold for a flat mid-range series", func(t *testing.T) {
		min, max := Bounds(points(30, 30, 30))
		assert.Equal(t, float64(boundsMinFloor), min)
		assert.Equal(t, float64(boundsMaxFloor), max)
	})

	t.Run("outliers widen the range", func(t *testing.T) {
		min, max := Bounds(points(5, 80))
		assert.Equal(t, 5.0, min)
		assert.Equal(t, 80.0, max)
	})
}

func TestBars(t *testing.T) {
	bars := Bars(points(10, 50))
	require.Len(t, bars, 2)
	assert.Equal(t, "08:00", bars[0].Hour)
	assert.NotEqual(t, bars[0].Color, bars[1].Color)
	assert.False(t, bars[0].Forecast)
}

func TestForecast(t *testing.T) {
	t.Run("extends the series hour by hour along the trend", func(t *testing.T) {
		got := Forecast(points(10, 20, 30), 2)
		require.Len(t, got, 2)
		assert.Equal(t, "11:00", got[0].Hour)
		assert.Equal(t, "12:00", got[1].Hour)
		assert.InDelta(t, 40, got[0].Energy, 0.001)
		assert.InDelta(t, 50, got[1].Energy, 0.001)
	})

	t.Run("a falling trend clamps at zero", func(t *testing.T) {
		got := Forecast(points(30, 20, 10), 4)
		require.Len(t, got, 4)
		assert.Zero(t, got[3].Energy)
	})

	t.Run("empty series or horizon yields nothing", func(t *testing.T) {
		assert.Nil(t, Forecast(nil, 3))
		assert.Nil(t, Forecast(points(10), 0))
	})

	t.Run("a single point predicts a flat line", func(t *testing.T) {
		got := Forecast(points(25), 2)
		require.Len(t, got, 2)
		assert.Equal(t, 25.0, got[0].Energy)
		assert.Equal(t, 25.0, got[1].Energy)
	})
}

func TestPlaceholder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	got := Placeholder(now, rng)
	require.Len(t, got, 24)
	assert.Equal(t, "16:00", got[0].Hour) // 23 hours back
	assert.Equal(t, "15:00", got[23].Hour)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.Energy, 10.0)
		assert.Less(t, p.Energy, 60.0)
	}
}

func TestEmissionColor(t *testing.T) {
	assert.Equal(t, "#22c55e", EmissionColor("low"))
	assert.Equal(t, "#ef4444", EmissionColor("high"))
	assert.Equal(t, "#eab308", EmissionColor("medium"))
	assert.Equal(t, "#eab308", EmissionColor(""))
}

func TestFormatKWh(t *testing.T) {
	assert.Equal(t, "42 kWh", FormatKWh(42.4))
}
