package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	attendancestore "rollcall/internal/attendance/store"
	"rollcall/internal/biometric"
	"rollcall/internal/geo"
	"rollcall/internal/identity"
	identitystore "rollcall/internal/identity/store"
	"rollcall/internal/session"
	sessionstore "rollcall/internal/session/store"
	"rollcall/internal/token"
	"rollcall/internal/verify"
	"rollcall/internal/verify/dedup"
	id "rollcall/pkg/domain"
	"rollcall/pkg/testutil"
)

var handlerNow = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

type HandlerSuite struct {
	suite.Suite

	router    *chi.Mux
	issuer    *token.Issuer
	studentID id.UserID
	sessionID id.SessionID
	anchor    geo.Point
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	sessions := sessionstore.NewMemory()
	identities := identitystore.NewMemory()
	records := attendancestore.NewMemory()
	s.issuer = token.NewIssuer("handler-test-key", 60*time.Second)

	s.studentID = id.NewUserID()
	s.sessionID = id.NewSessionID()
	s.anchor = geo.Point{Lon: 30.523, Lat: 50.45}

	ctx := context.Background()
	s.Require().NoError(sessions.Save(ctx, &session.Session{
		ID:        s.sessionID,
		Title:     "Algorithms, practical 2",
		Anchor:    &s.anchor,
		RadiusM:   50,
		Active:    true,
		CreatedAt: handlerNow.Add(-5 * time.Minute),
	}))

	descriptor := make(biometric.Descriptor, biometric.Dimension)
	s.Require().NoError(identities.Save(ctx, &identity.Identity{
		ID:         s.studentID,
		Name:       "Enrolled Student",
		Descriptor: descriptor,
	}))

	svc := verify.NewService(
		session.NewRegistry(sessions, slog.Default()),
		identities,
		records,
		s.issuer,
		biometric.NewMatcher(biometric.DefaultThreshold),
		slog.Default(),
		verify.WithDuplicateGuard(dedup.NewMemory()),
	)

	s.router = chi.NewRouter()
	s.router.Use(testutil.FreezeTime(handlerNow))
	New(svc, slog.Default()).Register(s.router)
}

func (s *HandlerSuite) postVerify(body map[string]any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) validBody() map[string]any {
	tok, err := s.issuer.Issue(s.sessionID, handlerNow)
	s.Require().NoError(err)

	return map[string]any{
		"studentId":      s.studentID.String(),
		"sessionId":      s.sessionID.String(),
		"qrToken":        tok,
		"latitude":       s.anchor.Lat,
		"longitude":      s.anchor.Lon,
		"faceDescriptor": make([]float64, biometric.Dimension),
	}
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *HandlerSuite) TestVerifyAccepted() {
	rec := s.postVerify(s.validBody())

	s.Require().Equal(http.StatusCreated, rec.Code)
	body := s.decode(rec)
	s.Equal("verified", body["status"])

	record, ok := body["record"].(map[string]any)
	s.Require().True(ok)
	s.Equal(s.studentID.String(), record["studentId"])
	s.Equal(s.sessionID.String(), record["sessionId"])
	s.Equal(true, record["verified"])

	location, ok := record["location"].([]any)
	s.Require().True(ok)
	s.Require().Len(location, 2)
	s.InDelta(s.anchor.Lon, location[0].(float64), 1e-9)
	s.InDelta(s.anchor.Lat, location[1].(float64), 1e-9)
}

func (s *HandlerSuite) TestVerifyUnknownSession() {
	body := s.validBody()
	body["sessionId"] = id.NewSessionID().String()
	delete(body, "qrToken")

	rec := s.postVerify(body)

	s.Require().Equal(http.StatusNotFound, rec.Code)
	s.Equal("SessionNotFound", s.decode(rec)["reason"])
}

func (s *HandlerSuite) TestVerifyMissingLocation() {
	body := s.validBody()
	delete(body, "latitude")
	delete(body, "longitude")

	rec := s.postVerify(body)

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Equal("MissingLocationInput", s.decode(rec)["reason"])
}

func (s *HandlerSuite) TestVerifyOutOfRange() {
	body := s.validBody()
	body["latitude"] = s.anchor.Lat + 0.01

	rec := s.postVerify(body)

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	resp := s.decode(rec)
	s.Equal("OutOfRange", resp["reason"])
	s.InDelta(1111.95, resp["distanceMeters"].(float64), 1.0)
	s.InDelta(50.0, resp["allowedRadiusMeters"].(float64), 1e-9)
}

func (s *HandlerSuite) TestVerifyDuplicateClaim() {
	first := s.postVerify(s.validBody())
	s.Require().Equal(http.StatusCreated, first.Code)

	second := s.postVerify(s.validBody())
	s.Require().Equal(http.StatusConflict, second.Code)
	s.Equal("DuplicateClaim", s.decode(second)["reason"])
}

func (s *HandlerSuite) TestVerifyBadDescriptorLength() {
	body := s.validBody()
	body["faceDescriptor"] = make([]float64, 64)

	rec := s.postVerify(body)

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	testutil.AssertErrorCode(s.T(), rec, "validation_error")
}

func (s *HandlerSuite) TestVerifyMalformedStudentID() {
	body := s.validBody()
	body["studentId"] = "not-a-uuid"

	rec := s.postVerify(body)

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	testutil.AssertErrorCode(s.T(), rec, "validation_error")
}

type unreachableSessionSource struct{}

func (unreachableSessionSource) Get(context.Context, id.SessionID) (*session.Session, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (s *HandlerSuite) TestVerifyDependencyUnavailable() {
	svc := verify.NewService(
		unreachableSessionSource{},
		identitystore.NewMemory(),
		attendancestore.NewMemory(),
		s.issuer,
		biometric.NewMatcher(biometric.DefaultThreshold),
		slog.Default(),
	)
	router := chi.NewRouter()
	router.Use(testutil.FreezeTime(handlerNow))
	New(svc, slog.Default()).Register(router)

	payload, err := json.Marshal(s.validBody())
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("DependencyUnavailable", s.decode(rec)["reason"])
}
