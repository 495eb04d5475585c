// Package web is the view layer: server-rendered pages wired to the
// identity client and the energy API, with the route guard in front of
// everything protected.
package web

import (
	"context"
	"fmt"
	"log/slog"

	"gridview/internal/apiclient"
	"gridview/internal/identity"
	"gridview/internal/session"
)

// AuthClient is the slice of the identity client the views call.
type AuthClient interface {
	SignIn(ctx context.Context, identifier, secret string, persistence identity.Persistence) (*identity.Outcome, error)
	SignUp(ctx context.Context, identifier, secret, displayName string, persistence identity.Persistence) (*identity.Outcome, error)
	CompleteFederated(ctx context.Context, state, code, oauthErr string) (*identity.Principal, error)
	SignOut(ctx context.Context)
}

// EnergyAPI is the slice of the API client the views call.
type EnergyAPI interface {
	GenerateData(ctx context.Context, buildingName string) (*apiclient.GeneratedReport, error)
	BuildingInfo(ctx context.Context, buildingName string) (*apiclient.BuildingInfo, error)
	AddReservation(ctx context.Context, req apiclient.AddReservationRequest) (*apiclient.AddReservationResponse, error)
	DeleteReservation(ctx context.Context, req apiclient.DeleteReservationRequest) (*apiclient.DeleteReservationResponse, error)
}

// SessionReader exposes the observable session to views.
type SessionReader interface {
	Snapshot() session.Session
}

// Handler carries the view dependencies.
type Handler struct {
	auth     AuthClient
	sessions SessionReader
	api      EnergyAPI
	views    *views
	logger   *slog.Logger
}

// NewHandler builds the view layer.
func NewHandler(auth AuthClient, sessions SessionReader, api EnergyAPI, logger *slog.Logger) (*Handler, error) {
	v, err := newViews(logger)
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	return &Handler{
		auth:     auth,
		sessions: sessions,
		api:      api,
		views:    v,
		logger:   logger,
	}, nil
}
