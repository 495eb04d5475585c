package web

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"gridview/internal/apiclient"
	"gridview/internal/energy"
	"gridview/internal/identity"
	"gridview/pkg/platform/sentinel"
)

const forecastHorizon = 4

// dashboardData feeds the dashboard template.
type dashboardData struct {
	User          *identity.Principal
	Building      Building
	Buildings     []Building
	Report        *apiclient.GeneratedReport
	Info          *apiclient.BuildingInfo
	Bars          []chartBar
	ChartWidth    int
	ChartHeight   int
	EmissionColor string
	EstimatedUse  string
	Placeholder   bool
	Error         string
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := h.sessions.Snapshot()
	building := selectedBuilding(r)

	data := dashboardData{
		User:        snap.User,
		Building:    building,
		Buildings:   buildings,
		ChartWidth:  chartWidth,
		ChartHeight: chartHeight,
	}

	report, err := h.api.GenerateData(r.Context(), building.Value)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnauthenticated) {
			http.Redirect(w, r, signInWithResume(r), http.StatusSeeOther)
			return
		}
		h.logger.Warn("usage report fetch failed", "building", building.Value, "error", err)
		data.Error = "Live usage data is unavailable right now."
		report = &apiclient.GeneratedReport{}
	}
	data.Report = report

	info, err := h.api.BuildingInfo(r.Context(), building.Value)
	if err != nil {
		h.logger.Warn("building info fetch failed", "building", building.Value, "error", err)
		info = &apiclient.BuildingInfo{Location: building.Label}
	}
	data.Info = info

	usage := report.Usage
	if len(usage) == 0 {
		data.Placeholder = true
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		usage = energy.Placeholder(time.Now(), rng)
	}
	data.Bars = chartBars(usage, energy.Forecast(usage, forecastHorizon))
	data.EmissionColor = energy.EmissionColor(report.EstimatedCarbonEmissions)
	data.EstimatedUse = energy.FormatKWh(report.EstimatedEnergyUse)

	h.views.renderPage(w, http.StatusOK, "dashboard", data)
}

// handleSelectBuilding persists the picked building and reloads.
func (h *Handler) handleSelectBuilding(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		if b, ok := buildingByValue(r.PostFormValue("building")); ok {
			persistBuilding(w, b)
		}
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func signInWithResume(r *http.Request) string {
	return "/signin?from=" + r.URL.Path
}
