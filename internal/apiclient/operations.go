package apiclient

import (
	"context"
	"net/http"
)

// UsagePoint is one hour of measured energy use.
type UsagePoint struct {
	Hour   string  `json:"hour"`
	Energy float64 `json:"energy"`
}

// Advice is one generated action or tip.
type Advice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Request     string `json:"request"`
}

// GeneratedReport is the backend's per-building usage report. The
// misspelled emissions key is the backend's wire format; do not fix it
// here.
type GeneratedReport struct {
	EstimatedCarbonEmissions string       `json:"estimatedCarbonEmmissions"`
	EstimatedEnergyUse       float64      `json:"estimatedEnergyUse"`
	EstimatedEnergyUsage     string       `json:"estimatedEnergyUsage"`
	Usage                    []UsagePoint `json:"usage"`
	Actions                  []Advice     `json:"actions"`
	Tips                     []Advice     `json:"tips"`
}

// BuildingInfo is building metadata owned by the backend.
type BuildingInfo struct {
	Location  string `json:"location"`
	Timezone  string `json:"timezone"`
	Weather   string `json:"weather"`
	DayOfWeek string `json:"day_of_week"`
}

// AddReservationRequest books a parking space or charger slot.
type AddReservationRequest struct {
	SpaceID        string `json:"space_id"`
	StartTimestamp string `json:"start_timestamp"`
	EndTimestamp   string `json:"end_timestamp"`
}

// AddReservationResponse carries the created reservation ID.
type AddReservationResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// DeleteReservationRequest releases a charger time block.
type DeleteReservationRequest struct {
	ChargerID string `json:"charger_id"`
	TimeBlock string `json:"time_block"`
}

// DeleteReservationResponse is the backend's status payload.
type DeleteReservationResponse struct {
	Message string `json:"message"`
}

// GenerateData fetches the usage report for a building.
func (c *Client) GenerateData(ctx context.Context, buildingName string) (*GeneratedReport, error) {
	var report GeneratedReport
	err := c.do(ctx, apiRequest{
		method:       http.MethodGet,
		path:         "/data/generate/" + buildingName,
		requiresAuth: true,
		out:          &report,
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// BuildingInfo fetches metadata for a building.
func (c *Client) BuildingInfo(ctx context.Context, buildingName string) (*BuildingInfo, error) {
	var info BuildingInfo
	err := c.do(ctx, apiRequest{
		method:       http.MethodGet,
		path:         "/data/building/" + buildingName,
		requiresAuth: true,
		out:          &info,
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// AddReservation books a space.
func (c *Client) AddReservation(ctx context.Context, req AddReservationRequest) (*AddReservationResponse, error) {
	var resp AddReservationResponse
	err := c.do(ctx, apiRequest{
		method:       http.MethodPost,
		path:         "/reservations/add",
		body:         req,
		requiresAuth: true,
		out:          &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteReservation releases a charger time block.
func (c *Client) DeleteReservation(ctx context.Context, req DeleteReservationRequest) (*DeleteReservationResponse, error) {
	var resp DeleteReservationResponse
	err := c.do(ctx, apiRequest{
		method:       http.MethodPost,
		path:         "/reservations/delete",
		body:         req,
		requiresAuth: true,
		out:          &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
