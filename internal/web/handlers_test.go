package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"gridview/internal/apiclient"
	"gridview/internal/identity"
	"gridview/internal/session"
)

type fakeAuth struct {
	signInErr   error
	signUpErr   error
	completeErr error
	redirectURL string
	principal   *identity.Principal
	signOuts    int

	lastIdentifier  string
	lastPersistence identity.Persistence
}

func (f *fakeAuth) SignIn(_ context.Context, identifier, _ string, persistence identity.Persistence) (*identity.Outcome, error) {
	f.lastIdentifier = identifier
	f.lastPersistence = persistence
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &identity.Outcome{Principal: f.principal, RedirectURL: f.redirectURL}, nil
}

func (f *fakeAuth) SignUp(_ context.Context, identifier, _, _ string, persistence identity.Persistence) (*identity.Outcome, error) {
	f.lastIdentifier = identifier
	f.lastPersistence = persistence
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &identity.Outcome{Principal: f.principal, RedirectURL: f.redirectURL}, nil
}

func (f *fakeAuth) CompleteFederated(context.Context, string, string, string) (*identity.Principal, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.principal, nil
}

func (f *fakeAuth) SignOut(context.Context) { f.signOuts++ }

type fakeAPI struct {
	report     *apiclient.GeneratedReport
	info       *apiclient.BuildingInfo
	reportErr  error
	addErr     error
	deleteErr  error
	lastAdd    apiclient.AddReservationRequest
	lastDelete apiclient.DeleteReservationRequest
}

func (f *fakeAPI) GenerateData(context.Context, string) (*apiclient.GeneratedReport, error) {
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return f.report, nil
}

func (f *fakeAPI) BuildingInfo(context.Context, string) (*apiclient.BuildingInfo, error) {
	return f.info, nil
}

func (f *fakeAPI) AddReservation(_ context.Context, req apiclient.AddReservationRequest) (*apiclient.AddReservationResponse, error) {
	f.lastAdd = req
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &apiclient.AddReservationResponse{ID: "res-1", Message: "Reservation confirmed."}, nil
}

func (f *fakeAPI) DeleteReservation(_ context.Context, req apiclient.DeleteReservationRequest) (*apiclient.DeleteReservationResponse, error) {
	f.lastDelete = req
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &apiclient.DeleteReservationResponse{Message: "Reservation released."}, nil
}

type fixedSession struct {
	snap session.Session
}

func (f *fixedSession) Snapshot() session.Session { return f.snap }

type HandlerSuite struct {
	suite.Suite
	auth     *fakeAuth
	api      *fakeAPI
	sessions *fixedSession
	router   http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.auth = &fakeAuth{
		principal: &identity.Principal{ID: "user-1", Email: "user@example.com", DisplayName: "User One"},
	}
	s.api = &fakeAPI{
		report: &apiclient.GeneratedReport{
			EstimatedCarbonEmissions: "low",
			EstimatedEnergyUse:       42,
			Usage: []apiclient.UsagePoint{
				{Hour: "09:00", Energy: 20},
				{Hour: "10:00", Energy: 35},
			},
			Actions: []apiclient.Advice{{Title: "Dim lobby lights", Description: "Lower lux after hours", Impact: "minor"}},
		},
		info: &apiclient.BuildingInfo{Location: "Main Building", Timezone: "UTC", Weather: "sunny", DayOfWeek: "Sunday"},
	}
	s.sessions = &fixedSession{snap: session.Session{}}

	handler, err := NewHandler(s.auth, s.sessions, s.api, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	s.router = handler.Router()
}

func (s *HandlerSuite) signedIn() {
	s.sessions.snap = session.Session{User: s.auth.principal}
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *HandlerSuite) TestSignInFlow() {
	s.Run("renders the form", func() {
		rec := s.do(httptest.NewRequest(http.MethodGet, "/signin", nil))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `name="email"`)
	})

	s.Run("success resumes the requested path", func() {
		rec := s.postForm("/signin", url.Values{
			"email":    {"user@example.com"},
			"password": {"secret"},
			"from":     {"/reservations"},
		})
		s.Equal(http.StatusSeeOther, rec.Code)
		s.Equal("/reservations", rec.Header().Get("Location"))
		s.Equal("user@example.com", s.auth.lastIdentifier)
		s.Equal(identity.PersistenceSession, s.auth.lastPersistence)
	})

	s.Run("remember me selects durable persistence", func() {
		s.postForm("/signin", url.Values{
			"email":    {"user@example.com"},
			"password": {"secret"},
			"remember": {"1"},
		})
		s.Equal(identity.PersistenceDurable, s.auth.lastPersistence)
	})

	s.Run("a provider failure re-renders with the mapped message", func() {
		s.auth.signInErr = &identity.AuthError{Kind: identity.KindInvalidCredential, Code: "auth/wrong-password"}

		rec := s.postForm("/signin", url.Values{
			"email":    {"user@example.com"},
			"password": {"wrong"},
		})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Contains(rec.Body.String(), "Incorrect password.")
	})

	s.Run("a federated identifier redirects to the provider", func() {
		s.auth.signInErr = nil
		s.auth.redirectURL = "https://idp.example/authorize?state=abc"

		rec := s.postForm("/signin", url.Values{"provider": {"google"}})
		s.Equal(http.StatusSeeOther, rec.Code)
		s.Equal("https://idp.example/authorize?state=abc", rec.Header().Get("Location"))
		s.Equal("google", s.auth.lastIdentifier)
	})
}

func (s *HandlerSuite) TestSignUpFailureRendersMessage() {
	s.auth.signUpErr = &identity.AuthError{Kind: identity.KindEmailInUse, Code: "auth/email-already-in-use"}

	rec := s.postForm("/signup", url.Values{
		"email":    {"taken@example.com"},
		"password": {"secret"},
		"name":     {"Taken"},
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "already in use")
}

func (s *HandlerSuite) TestOAuthCallback() {
	s.Run("failure bounces to sign-in with the mapped message", func() {
		s.auth.completeErr = &identity.AuthError{Kind: identity.KindExchangeCancelled, Code: "auth/popup-closed-by-user"}

		rec := s.do(httptest.NewRequest(http.MethodGet, "/oauth/callback?state=abc&error=access_denied", nil))
		s.Equal(http.StatusSeeOther, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		s.Require().NoError(err)
		s.Equal("/signin", loc.Path)
		s.Contains(loc.Query().Get("error"), "cancelled")
	})

	s.Run("success lands on the dashboard", func() {
		s.auth.completeErr = nil

		rec := s.do(httptest.NewRequest(http.MethodGet, "/oauth/callback?state=abc&code=xyz", nil))
		s.Equal(http.StatusSeeOther, rec.Code)
		s.Equal("/dashboard", rec.Header().Get("Location"))
	})

	s.Run("success resumes a remembered path", func() {
		req := httptest.NewRequest(http.MethodGet, "/oauth/callback?state=abc&code=xyz", nil)
		req.AddCookie(&http.Cookie{Name: resumeCookie, Value: url.QueryEscape("/reservations")})

		rec := s.do(req)
		s.Equal(http.StatusSeeOther, rec.Code)
		s.Equal("/reservations", rec.Header().Get("Location"))
	})
}

func (s *HandlerSuite) TestSignOut() {
	rec := s.postForm("/signout", url.Values{})
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/signin", rec.Header().Get("Location"))
	s.Equal(1, s.auth.signOuts)
}

func (s *HandlerSuite) TestDashboard() {
	s.Run("signed out redirects to sign-in", func() {
		rec := s.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		s.Equal(http.StatusSeeOther, rec.Code)
		s.Contains(rec.Header().Get("Location"), "/signin")
	})

	s.Run("loading renders the interstitial", func() {
		s.sessions.snap = session.Session{Loading: true}
		rec := s.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})

	s.Run("signed in renders the report", func() {
		s.signedIn()
		rec := s.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		s.Equal(http.StatusOK, rec.Code)

		body := rec.Body.String()
		s.Contains(body, "User One")
		s.Contains(body, "Currently: low")
		s.Contains(body, "42 kWh")
		s.Contains(body, "Dim lobby lights")
		s.NotContains(body, "representative series")
	})

	s.Run("an empty series falls back to the placeholder", func() {
		s.signedIn()
		s.api.report.Usage = nil

		rec := s.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "representative series")
	})

	s.Run("a backend failure renders a degraded page", func() {
		s.signedIn()
		s.api.reportErr = errors.New("backend down")

		rec := s.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "unavailable")
	})
}

func (s *HandlerSuite) TestBuildingSelection() {
	s.signedIn()

	rec := s.postForm("/dashboard/building", url.Values{"building": {"east"}})
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/dashboard", rec.Header().Get("Location"))

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == selectedBuildingCookie {
			cookie = c
		}
	}
	s.Require().NotNil(cookie)

	raw, err := url.QueryUnescape(cookie.Value)
	s.Require().NoError(err)
	s.JSONEq(`{"label":"East Wing","value":"east"}`, raw)

	s.Run("the selection round-trips on the next request", func() {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookie)
		s.Equal("East Wing", selectedBuilding(req).Label)
	})

	s.Run("an unknown building is ignored", func() {
		rec := s.postForm("/dashboard/building", url.Values{"building": {"atlantis"}})
		s.Empty(rec.Result().Cookies())
	})
}

func (s *HandlerSuite) TestReservations() {
	s.signedIn()

	s.Run("add posts the form fields and reports the outcome", func() {
		rec := s.postForm("/reservations/add", url.Values{
			"space_id":        {"space-7"},
			"start_timestamp": {"2026-08-30T09:00"},
			"end_timestamp":   {"2026-08-30T11:00"},
		})
		s.Equal(http.StatusSeeOther, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		s.Require().NoError(err)
		s.Equal("/reservations", loc.Path)
		s.Equal("Reservation confirmed.", loc.Query().Get("notice"))
		s.Equal("space-7", s.api.lastAdd.SpaceID)
	})

	s.Run("delete releases the charger block", func() {
		rec := s.postForm("/reservations/delete", url.Values{
			"charger_id": {"charger-2"},
			"time_block": {"09:00-10:00"},
		})
		s.Equal(http.StatusSeeOther, rec.Code)
		s.Equal("charger-2", s.api.lastDelete.ChargerID)
	})

	s.Run("a backend rejection surfaces its message", func() {
		s.api.addErr = &apiclient.Error{Status: http.StatusConflict, Message: "space already reserved"}

		rec := s.postForm("/reservations/add", url.Values{"space_id": {"space-7"}})
		loc, err := url.Parse(rec.Header().Get("Location"))
		s.Require().NoError(err)
		s.Equal("space already reserved", loc.Query().Get("error"))
	})
}

func (s *HandlerSuite) TestNotFound() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "404: Not Found")
}
