package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/audit"
	"rollcall/internal/geo"
	"rollcall/internal/session"
	sessionstore "rollcall/internal/session/store"
	"rollcall/internal/token"
	"rollcall/internal/token/metrics"
	id "rollcall/pkg/domain"
)

func newTestHandler(t *testing.T) (*chi.Mux, *token.Issuer, id.SessionID) {
	t.Helper()

	store := sessionstore.NewMemory()
	registry := session.NewRegistry(store, slog.Default())
	issuer := token.NewIssuer("token-handler-key", 60*time.Second)
	rotator := token.NewRotator(issuer, 10*time.Second, slog.Default())

	sessionID := id.NewSessionID()
	anchor := geo.Point{Lon: 30.5, Lat: 50.4}
	require.NoError(t, store.Save(context.Background(), &session.Session{
		ID:        sessionID,
		Title:     "Databases, lecture 1",
		Anchor:    &anchor,
		RadiusM:   50,
		Active:    true,
		CreatedAt: time.Now(),
	}))

	router := chi.NewRouter()
	New(registry, rotator, slog.Default()).Register(router)
	return router, issuer, sessionID
}

func postToken(t *testing.T, router *chi.Mux, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/token", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleToken_IssuesVerifiableToken(t *testing.T) {
	router, issuer, sessionID := newTestHandler(t)

	rec := postToken(t, router, map[string]any{"sessionId": sessionID.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sessionID.String(), resp.SessionID)
	assert.NoError(t, issuer.Verify(resp.Token, sessionID, time.Now()))
}

func TestHandleToken_StableWithinRotationInterval(t *testing.T) {
	router, _, sessionID := newTestHandler(t)

	first := postToken(t, router, map[string]any{"sessionId": sessionID.String()})
	second := postToken(t, router, map[string]any{"sessionId": sessionID.String()})
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b TokenResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.Token, b.Token)
}

func TestHandleToken_UnknownSession(t *testing.T) {
	router, _, _ := newTestHandler(t)

	rec := postToken(t, router, map[string]any{"sessionId": id.NewSessionID().String()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleToken_ClosedSession(t *testing.T) {
	store := sessionstore.NewMemory()
	registry := session.NewRegistry(store, slog.Default())
	issuer := token.NewIssuer("token-handler-key", 60*time.Second)
	rotator := token.NewRotator(issuer, 10*time.Second, slog.Default())

	sessionID := id.NewSessionID()
	ended := time.Now()
	require.NoError(t, store.Save(context.Background(), &session.Session{
		ID:        sessionID,
		Title:     "Closed session",
		Active:    true,
		CreatedAt: ended.Add(-time.Hour),
	}))
	_, err := store.SetInactive(context.Background(), sessionID, ended)
	require.NoError(t, err)

	router := chi.NewRouter()
	New(registry, rotator, slog.Default()).Register(router)

	rec := postToken(t, router, map[string]any{"sessionId": sessionID.String()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleToken_MalformedSessionID(t *testing.T) {
	router, _, _ := newTestHandler(t)

	rec := postToken(t, router, map[string]any{"sessionId": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type recordingEmitter struct {
	events []audit.Event
}

func (r *recordingEmitter) Emit(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return nil
}

func TestHandleToken_EmitsIssuanceAuditEvent(t *testing.T) {
	store := sessionstore.NewMemory()
	registry := session.NewRegistry(store, slog.Default())
	issuer := token.NewIssuer("token-handler-key", 60*time.Second)
	rotator := token.NewRotator(issuer, 10*time.Second, slog.Default())

	sessionID := id.NewSessionID()
	require.NoError(t, store.Save(context.Background(), &session.Session{
		ID:        sessionID,
		Title:     "Audited session",
		Active:    true,
		CreatedAt: time.Now(),
	}))

	audits := &recordingEmitter{}
	router := chi.NewRouter()
	New(registry, rotator, slog.Default(), WithAudit(audits)).Register(router)

	rec := postToken(t, router, map[string]any{"sessionId": sessionID.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, audits.events, 1)
	assert.Equal(t, audit.ActionTokenIssued, audits.events[0].Action)
	assert.Equal(t, audit.CategoryOperations, audits.events[0].Category)
	assert.Equal(t, sessionID, audits.events[0].SessionID)
}

func TestHandleToken_CountsPollsAndUnknownSessions(t *testing.T) {
	store := sessionstore.NewMemory()
	registry := session.NewRegistry(store, slog.Default())
	issuer := token.NewIssuer("token-handler-key", 60*time.Second)
	rotator := token.NewRotator(issuer, 10*time.Second, slog.Default())

	sessionID := id.NewSessionID()
	require.NoError(t, store.Save(context.Background(), &session.Session{
		ID:        sessionID,
		Title:     "Counted session",
		Active:    true,
		CreatedAt: time.Now(),
	}))

	m := &metrics.Metrics{
		TokensMinted:   prometheus.NewCounter(prometheus.CounterOpts{Name: "minted_total"}),
		TokenRequests:  prometheus.NewCounter(prometheus.CounterOpts{Name: "requests_total"}),
		UnknownSession: prometheus.NewCounter(prometheus.CounterOpts{Name: "unknown_total"}),
	}
	router := chi.NewRouter()
	New(registry, rotator, slog.Default(), WithMetrics(m)).Register(router)

	rec := postToken(t, router, map[string]any{"sessionId": sessionID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.TokenRequests))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(m.UnknownSession))

	rec = postToken(t, router, map[string]any{"sessionId": id.NewSessionID().String()})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.TokenRequests))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.UnknownSession))
}
