// Package verify runs the claim verification pipeline: session lookup, token
// freshness, geofence, biometric match, then the duplicate policy. Checks
// run in that fixed order and the first failure wins; later checks are never
// evaluated, so a single claim yields exactly one rejection reason.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rollcall/internal/attendance"
	"rollcall/internal/audit"
	"rollcall/internal/biometric"
	"rollcall/internal/geo"
	"rollcall/internal/identity"
	"rollcall/internal/session"
	"rollcall/internal/token"
	"rollcall/internal/verify/metrics"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/platform/circuit"
	"rollcall/pkg/requestcontext"
)

// State tracks how far a claim progressed through the pipeline.
type State string

const (
	StatePending          State = "pending"
	StateTokenChecked     State = "token_checked"
	StateGeofenceChecked  State = "geofence_checked"
	StateBiometricChecked State = "biometric_checked"
	StateAccepted         State = "accepted"
	StateRejected         State = "rejected"
)

// SessionSource resolves session metadata. Get returns a not_found domain
// error for unknown sessions and unavailable for backend failures.
type SessionSource interface {
	Get(ctx context.Context, sessionID id.SessionID) (*session.Session, error)
}

// IdentitySource resolves enrolled reference descriptors. FindByID returns
// (nil, nil) when no profile exists.
type IdentitySource interface {
	FindByID(ctx context.Context, userID id.UserID) (*identity.Identity, error)
}

// RecordStore persists accepted claims.
type RecordStore interface {
	Append(ctx context.Context, rec *attendance.Record) error
}

// TokenVerifier checks a presented session token against a claimed session.
type TokenVerifier interface {
	Verify(tokenString string, claimed id.SessionID, now time.Time) error
}

// DuplicateGuard reserves one accepted claim per (session, student) pair.
type DuplicateGuard interface {
	Reserve(ctx context.Context, sessionID id.SessionID, studentID id.UserID) (bool, error)
	Release(ctx context.Context, sessionID id.SessionID, studentID id.UserID) error
}

// AuditEmitter receives decision events. Emission is best-effort; failures
// are logged and never affect the decision.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Claim is one attendance assertion, already syntactically validated by the
// transport layer. Latitude and Longitude are nil when the client omitted
// them; the pipeline rejects such claims rather than guessing a position.
type Claim struct {
	StudentID  id.UserID
	SessionID  id.SessionID
	Token      string
	Latitude   *float64
	Longitude  *float64
	Descriptor biometric.Descriptor
}

// HasLocation reports whether both coordinates were supplied.
func (c Claim) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Result is the outcome of one pipeline run. Exactly one of Record and
// Rejection is set.
type Result struct {
	State State
	// Reached is the last pipeline state a rejected claim passed through.
	// For accepted claims it equals StateBiometricChecked.
	Reached   State
	Record    *attendance.Record
	Rejection *Rejection
	CheckedAt time.Time
}

// Accepted reports whether the claim produced an attendance record.
func (r *Result) Accepted() bool {
	return r.State == StateAccepted
}

type Option func(*Service)

// WithDuplicateGuard enables the reject duplicate policy. Without a guard
// every accepted claim appends a record, repeats included.
func WithDuplicateGuard(guard DuplicateGuard) Option {
	return func(s *Service) {
		s.guard = guard
	}
}

func WithAudit(emitter AuditEmitter) Option {
	return func(s *Service) {
		s.auditor = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLookupTimeout bounds each dependency lookup. Zero disables the bound.
func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.lookupTimeout = d
	}
}

// WithBreakers overrides the breakers guarding the session and identity
// lookups, for callers that tune thresholds or cooldowns.
func WithBreakers(sessions, identities *circuit.Breaker) Option {
	return func(s *Service) {
		if sessions != nil {
			s.sessionBreaker = sessions
		}
		if identities != nil {
			s.identityBreaker = identities
		}
	}
}

// Service orchestrates the verification pipeline.
type Service struct {
	sessions   SessionSource
	identities IdentitySource
	records    RecordStore
	tokens     TokenVerifier
	matcher    *biometric.Matcher

	guard   DuplicateGuard
	auditor AuditEmitter
	metrics *metrics.Metrics

	logger        *slog.Logger
	tracer        trace.Tracer
	lookupTimeout time.Duration

	sessionBreaker  *circuit.Breaker
	identityBreaker *circuit.Breaker
}

func NewService(
	sessions SessionSource,
	identities IdentitySource,
	records RecordStore,
	tokens TokenVerifier,
	matcher *biometric.Matcher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		sessions:        sessions,
		identities:      identities,
		records:         records,
		tokens:          tokens,
		matcher:         matcher,
		logger:          logger,
		tracer:          otel.Tracer("rollcall/verify"),
		sessionBreaker:  circuit.New("session-registry"),
		identityBreaker: circuit.New("identity-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs the full pipeline over one claim. It always returns a Result;
// infrastructure failures surface as DependencyUnavailable rejections rather
// than bare errors, so every claim ends in an auditable decision.
func (s *Service) Verify(ctx context.Context, claim Claim) *Result {
	start := time.Now()
	now := requestcontext.Now(ctx)

	ctx, span := s.tracer.Start(ctx, "verify.claim", trace.WithAttributes(
		attribute.String("session.id", claim.SessionID.String()),
	))
	defer span.End()

	result := s.run(ctx, claim, now)
	result.CheckedAt = now

	s.finish(ctx, claim, result)
	s.metrics.ObserveVerifyLatency(time.Since(start))
	span.SetAttributes(attribute.String("verify.state", string(result.State)))
	return result
}

func (s *Service) run(ctx context.Context, claim Claim, now time.Time) *Result {
	// Location is checked before anything else: without coordinates the
	// geofence can never pass, so no lookup is worth doing.
	if !claim.HasLocation() {
		return rejectedAt(StatePending, reject(ReasonMissingLocationInput, "latitude and longitude are required"))
	}

	sess, rej := s.lookupSession(ctx, claim.SessionID)
	if rej != nil {
		return rejectedAt(StatePending, rej)
	}
	if !sess.Active {
		return rejectedAt(StatePending, reject(ReasonSessionInactive, "session is no longer accepting claims"))
	}

	if claim.Token != "" {
		if rej := translateTokenError(s.tokens.Verify(claim.Token, claim.SessionID, now)); rej != nil {
			return rejectedAt(StatePending, rej)
		}
	}

	if !sess.HasAnchor() {
		return rejectedAt(StateTokenChecked, reject(ReasonInvalidSessionLocation, "session has no usable anchor location"))
	}
	point := geo.Point{Lon: *claim.Longitude, Lat: *claim.Latitude}
	distance := geo.Distance(*sess.Anchor, point)
	if distance > sess.RadiusM {
		return rejectedAt(StateTokenChecked, outOfRange(distance, sess.RadiusM))
	}

	reference, rej := s.lookupDescriptor(ctx, claim.StudentID)
	if rej != nil {
		return rejectedAt(StateGeofenceChecked, rej)
	}
	faceDistance, ok := s.matcher.Compare(reference, claim.Descriptor)
	if !ok {
		return rejectedAt(StateGeofenceChecked, identityMismatch(faceDistance))
	}

	if s.guard != nil {
		ok, err := s.guard.Reserve(ctx, claim.SessionID, claim.StudentID)
		if err != nil {
			s.logger.Error("duplicate guard unavailable", "error", err)
			return rejectedAt(StateBiometricChecked, reject(ReasonDependencyUnavailable, "duplicate check unavailable"))
		}
		if !ok {
			return rejectedAt(StateBiometricChecked, reject(ReasonDuplicateClaim, "attendance already recorded for this session"))
		}
	}

	record := &attendance.Record{
		ID:        id.NewRecordID(),
		StudentID: claim.StudentID,
		SessionID: claim.SessionID,
		Timestamp: now,
		Location:  point,
		Verified:  true,
	}
	if err := s.records.Append(ctx, record); err != nil {
		s.logger.Error("attendance append failed", "error", err)
		if s.guard != nil {
			if relErr := s.guard.Release(ctx, claim.SessionID, claim.StudentID); relErr != nil {
				s.logger.Error("duplicate guard release failed", "error", relErr)
			}
		}
		return rejectedAt(StateBiometricChecked, reject(ReasonDependencyUnavailable, "attendance store unavailable"))
	}

	return &Result{State: StateAccepted, Reached: StateBiometricChecked, Record: record}
}

func (s *Service) lookupSession(ctx context.Context, sessionID id.SessionID) (*session.Session, *Rejection) {
	if !s.sessionBreaker.Allow() {
		return nil, reject(ReasonDependencyUnavailable, "session registry unavailable")
	}

	ctx, cancel := s.boundLookup(ctx)
	defer cancel()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.recordSuccess(s.sessionBreaker)
			return nil, reject(ReasonSessionNotFound, "session not found")
		}
		s.recordFailure(s.sessionBreaker, err)
		return nil, reject(ReasonDependencyUnavailable, "session registry unavailable")
	}
	s.recordSuccess(s.sessionBreaker)
	return sess, nil
}

func (s *Service) lookupDescriptor(ctx context.Context, studentID id.UserID) (biometric.Descriptor, *Rejection) {
	if !s.identityBreaker.Allow() {
		return nil, reject(ReasonDependencyUnavailable, "identity store unavailable")
	}

	ctx, cancel := s.boundLookup(ctx)
	defer cancel()

	ident, err := s.identities.FindByID(ctx, studentID)
	if err != nil {
		s.recordFailure(s.identityBreaker, err)
		return nil, reject(ReasonDependencyUnavailable, "identity store unavailable")
	}
	s.recordSuccess(s.identityBreaker)
	if ident == nil || !ident.Enrolled() {
		return nil, reject(ReasonProfileNotFound, "no enrolled descriptor for student")
	}
	return ident.Descriptor, nil
}

func (s *Service) recordFailure(b *circuit.Breaker, err error) {
	s.logger.Error("dependency lookup failed", "dependency", b.Name(), "error", err)
	if _, change := b.RecordFailure(); change.Opened {
		s.logger.Warn("circuit opened", "dependency", b.Name())
	}
}

func (s *Service) recordSuccess(b *circuit.Breaker) {
	if _, change := b.RecordSuccess(); change.Closed {
		s.logger.Info("circuit closed", "dependency", b.Name())
	}
}

func (s *Service) boundLookup(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.lookupTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.lookupTimeout)
}

func (s *Service) finish(ctx context.Context, claim Claim, result *Result) {
	event := audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: result.CheckedAt,
		StudentID: claim.StudentID,
		SessionID: claim.SessionID,
		RequestID: requestcontext.RequestID(ctx),
	}
	if result.Accepted() {
		event.Action = audit.ActionAttendanceAccepted
		event.Decision = "accepted"
		s.metrics.IncrementOutcome("accepted", "")
	} else {
		event.Action = audit.ActionAttendanceRejected
		event.Decision = "rejected"
		event.Reason = string(result.Rejection.Reason)
		s.metrics.IncrementOutcome("rejected", string(result.Rejection.Reason))
		s.logger.Info("claim rejected",
			"session_id", claim.SessionID,
			"reason", result.Rejection.Reason,
		)
	}

	if s.auditor != nil {
		if err := s.auditor.Emit(ctx, event); err != nil {
			s.logger.Error("audit emit failed", "action", event.Action, "error", err)
		}
	}
}

// rejectedAt builds a terminal rejected result. The reached argument is the
// last state the claim passed through; it is kept on the result so callers
// can see how far the pipeline got.
func rejectedAt(reached State, rej *Rejection) *Result {
	return &Result{State: StateRejected, Reached: reached, Rejection: rej}
}

func translateTokenError(err error) *Rejection {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, token.ErrSignatureInvalid):
		return reject(ReasonTokenSignatureInvalid, "token signature is invalid")
	case errors.Is(err, token.ErrSessionMismatch):
		return reject(ReasonTokenSessionMismatch, "token was issued for a different session")
	case errors.Is(err, token.ErrExpired):
		return reject(ReasonTokenExpired, "token is older than the freshness window")
	default:
		return reject(ReasonTokenSignatureInvalid, "token could not be parsed")
	}
}
