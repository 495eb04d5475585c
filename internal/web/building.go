package web

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Building is a selectable building, mirroring the backend's naming.
type Building struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Buildings the dashboard can switch between. The backend owns the real
// inventory; this list mirrors it.
var buildings = []Building{
	{Label: "Main Building", Value: "main"},
	{Label: "East Wing", Value: "east"},
	{Label: "West Wing", Value: "west"},
}

const selectedBuildingCookie = "selectedBuilding"

func defaultBuilding() Building { return buildings[0] }

func buildingByValue(value string) (Building, bool) {
	for _, b := range buildings {
		if b.Value == value {
			return b, true
		}
	}
	return Building{}, false
}

// selectedBuilding reads the persisted selection, defaulting to the first
// building when the cookie is absent or no longer matches the inventory.
func selectedBuilding(r *http.Request) Building {
	cookie, err := r.Cookie(selectedBuildingCookie)
	if err != nil {
		return defaultBuilding()
	}
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return defaultBuilding()
	}
	var b Building
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return defaultBuilding()
	}
	if _, ok := buildingByValue(b.Value); !ok {
		return defaultBuilding()
	}
	return b
}

// persistBuilding stores the selection as URL-escaped JSON, the same
// {label, value} shape the backend and the original client state use.
func persistBuilding(w http.ResponseWriter, b Building) {
	payload, err := json.Marshal(b)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     selectedBuildingCookie,
		Value:    url.QueryEscape(string(payload)),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
