package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"gridview/internal/apiclient/metrics"
	"gridview/pkg/platform/sentinel"
)

// One registration per test binary; promauto registers globally.
var testMetrics = metrics.New()

// countingTokens counts token fetches so tests can prove the
// unauthenticated short-circuit never reaches the token source twice or
// the network at all.
type countingTokens struct {
	mu    sync.Mutex
	token string
	err   error
	calls int
}

func (c *countingTokens) CurrentToken(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.token, nil
}

type ClientSuite struct {
	suite.Suite
	ctx    context.Context
	tokens *countingTokens
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.ctx = context.Background()
	s.tokens = &countingTokens{token: "bearer-token-1"}
}

func (s *ClientSuite) newServer(handler http.HandlerFunc) (*httptest.Server, *Client) {
	srv := httptest.NewServer(handler)
	s.T().Cleanup(srv.Close)
	return srv, New(srv.URL, s.tokens, testMetrics)
}

func (s *ClientSuite) TestUnauthenticatedShortCircuit() {
	hits := 0
	_, client := s.newServer(func(w http.ResponseWriter, r *http.Request) {
		hits++
	})
	s.tokens.err = sentinel.ErrUnauthenticated

	_, err := client.GenerateData(s.ctx, "main")
	s.Require().ErrorIs(err, sentinel.ErrUnauthenticated)
	s.Zero(hits, "an absent session must never produce network traffic")
	s.Equal(1, s.tokens.calls)
}

func (s *ClientSuite) TestRequestShape() {
	var gotMethod, gotPath, gotAuth, gotContentType string
	var gotBody map[string]string
	_, client := s.newServer(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "res-1", "message": "booked"})
	})

	resp, err := client.AddReservation(s.ctx, AddReservationRequest{
		SpaceID:        "space-7",
		StartTimestamp: "2026-08-30T09:00",
		EndTimestamp:   "2026-08-30T11:00",
	})
	s.Require().NoError(err)
	s.Equal("res-1", resp.ID)

	s.Equal(http.MethodPost, gotMethod)
	s.Equal("/reservations/add", gotPath)
	s.Equal("Bearer bearer-token-1", gotAuth)
	s.Equal("application/json", gotContentType)
	s.Equal("space-7", gotBody["space_id"])
}

func (s *ClientSuite) TestFreshTokenPerCall() {
	_, client := s.newServer(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(GeneratedReport{})
	})

	_, err := client.GenerateData(s.ctx, "main")
	s.Require().NoError(err)
	_, err = client.GenerateData(s.ctx, "east")
	s.Require().NoError(err)

	s.Equal(2, s.tokens.calls)
}

func (s *ClientSuite) TestErrorDecoding() {
	s.Run("backend message is surfaced", func() {
		_, client := s.newServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "space already reserved"})
		})

		_, err := client.AddReservation(s.ctx, AddReservationRequest{SpaceID: "space-1"})
		s.Require().Error(err)

		var apiErr *Error
		s.Require().ErrorAs(err, &apiErr)
		s.Equal(http.StatusConflict, apiErr.Status)
		s.Equal("space already reserved", apiErr.Message)
	})

	s.Run("non-JSON failure body degrades to the fallback message", func() {
		_, client := s.newServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>upstream exploded</html>"))
		})

		_, err := client.BuildingInfo(s.ctx, "main")
		s.Require().Error(err)

		var apiErr *Error
		s.Require().ErrorAs(err, &apiErr)
		s.Equal(http.StatusBadGateway, apiErr.Status)
		s.Equal(fallbackMessage, apiErr.Message)
	})
}

func (s *ClientSuite) TestReportDecoding() {
	_, client := s.newServer(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/data/generate/west", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"estimatedCarbonEmmissions": "low",
			"estimatedEnergyUse": 42,
			"usage": [{"hour": "09:00", "energy": 12.5}],
			"actions": [{"title": "Dim lobby lights", "impact": "minor"}]
		}`))
	})

	report, err := client.GenerateData(s.ctx, "west")
	s.Require().NoError(err)
	s.Equal("low", report.EstimatedCarbonEmissions)
	s.Equal(42.0, report.EstimatedEnergyUse)
	s.Require().Len(report.Usage, 1)
	s.Equal(12.5, report.Usage[0].Energy)
	s.Require().Len(report.Actions, 1)
	s.Equal("Dim lobby lights", report.Actions[0].Title)
}
