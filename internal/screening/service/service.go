package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"neuroease/internal/screening/catalog"
	"neuroease/internal/screening/engine"
	"neuroease/internal/screening/metrics"
	"neuroease/internal/screening/models"
	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
	audit "neuroease/pkg/platform/audit"
	"neuroease/pkg/platform/sentinel"
	"neuroease/pkg/requestcontext"
)

// DoneMessage accompanies the completion signal of GetNextQuestion.
const DoneMessage = "All questions have been answered."

// Accumulator holds per-session answer state.
type Accumulator interface {
	Start(ctx context.Context, userID id.UserID) (models.Session, error)
	Record(ctx context.Context, sessionID id.SessionID, answer models.UserAnswer) (models.AnswerSet, error)
	Answers(ctx context.Context, userID id.UserID, sessionID id.SessionID) (models.AnswerSet, error)
	IdleTimeout() time.Duration
}

// CatalogProvider supplies the rule catalog snapshot for one evaluation.
type CatalogProvider interface {
	LoadRules(ctx context.Context) ([]models.DiagnosticRule, error)
}

// CatalogReloader forces a catalog refresh.
type CatalogReloader interface {
	Reload(ctx context.Context) (*catalog.Snapshot, error)
}

type DiagnosisStore interface {
	CreateIfAbsent(ctx context.Context, d *models.Diagnosis) error
	ListBySession(ctx context.Context, sessionID id.SessionID) ([]*models.Diagnosis, error)
	Exists(ctx context.Context, sessionID id.SessionID, ruleID id.RuleID) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the screening questionnaire: it records answers, evaluates
// them against the rule catalog, persists new diagnoses and picks the next
// question.
type Service struct {
	accumulator    Accumulator
	catalog        CatalogProvider
	diagnoses      DiagnosisStore
	reloader       CatalogReloader
	strategy       engine.Strategy
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithCatalogReloader enables ReloadCatalog.
func WithCatalogReloader(r CatalogReloader) Option {
	return func(s *Service) {
		s.reloader = r
	}
}

// WithStrategy selects the question selection strategy. Defaults to breadth.
func WithStrategy(strategy engine.Strategy) Option {
	return func(s *Service) {
		s.strategy = strategy
	}
}

// New constructs a Service.
func New(accumulator Accumulator, catalog CatalogProvider, diagnoses DiagnosisStore, opts ...Option) (*Service, error) {
	if accumulator == nil {
		return nil, errors.New("answer accumulator is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog provider is required")
	}
	if diagnoses == nil {
		return nil, errors.New("diagnosis store is required")
	}
	s := &Service{
		accumulator: accumulator,
		catalog:     catalog,
		diagnoses:   diagnoses,
		strategy:    engine.StrategyBreadth,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SessionIdleTimeout reports how long a session survives without activity.
func (s *Service) SessionIdleTimeout() time.Duration {
	return s.accumulator.IdleTimeout()
}

// StartSession opens a new screening session for userID.
func (s *Service) StartSession(ctx context.Context, userID id.UserID) (*models.Session, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	session, err := s.accumulator.Start(ctx, userID)
	if err != nil {
		return nil, accumulatorError(err, "failed to start session")
	}
	s.metrics.IncrementSessionsStarted()
	s.logAudit(ctx, audit.EventSessionStarted, userID, session.ID, "")
	return &session, nil
}

// SubmitAnswerRequest carries one answer submission. An empty SessionID
// starts a new session.
type SubmitAnswerRequest struct {
	UserID     id.UserID
	SessionID  id.SessionID
	QuestionID id.QuestionID
	Value      string
}

func (r *SubmitAnswerRequest) Normalize() {
	r.QuestionID = id.QuestionID(strings.TrimSpace(string(r.QuestionID)))
	r.Value = strings.TrimSpace(r.Value)
}

type SubmitAnswerResult struct {
	SessionID id.SessionID
	// SessionStarted is true when the submission opened the session.
	SessionStarted bool
	Matched        []models.DiagnosisResult
}

// SubmitAnswer records the answer, then evaluates the session's answers
// against the catalog. Every matched rule is reported; diagnoses are
// persisted only for rules not yet recorded in the session.
//
// The answer stays recorded when evaluation fails afterwards.
func (s *Service) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*SubmitAnswerResult, error) {
	if req.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	req.Normalize()

	answer := models.UserAnswer{
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		QuestionID:  req.QuestionID,
		Value:       req.Value,
		SubmittedAt: requestcontext.Now(ctx),
	}
	// Reject malformed answers before a session is created on their behalf.
	if err := answer.Validate(); err != nil {
		return nil, err
	}

	result := &SubmitAnswerResult{SessionID: req.SessionID}
	if result.SessionID.IsNil() {
		session, err := s.StartSession(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		result.SessionID = session.ID
		result.SessionStarted = true
		answer.SessionID = session.ID
	}

	answers, err := s.accumulator.Record(ctx, result.SessionID, answer)
	if err != nil {
		return nil, accumulatorError(err, "failed to record answer")
	}
	s.metrics.IncrementAnswersRecorded()
	s.logAudit(ctx, audit.EventAnswerRecorded, req.UserID, result.SessionID, answer.QuestionID.String())

	rules, err := s.catalog.LoadRules(ctx)
	if err != nil {
		return nil, catalogUnavailable(err)
	}

	start := time.Now()
	ev := engine.Evaluate(answers, rules)
	s.metrics.ObserveEvaluation(start)
	s.reportInvalid(ctx, ev.Invalid)

	for _, rule := range ev.Matched {
		s.metrics.IncrementRuleMatch(rule.Code)
	}
	fresh, err := s.unrecorded(ctx, result.SessionID, ev.Matched)
	if err != nil {
		return nil, err
	}
	for _, rule := range fresh {
		if err := s.recordDiagnosis(ctx, result.SessionID, req.UserID, rule); err != nil {
			return nil, err
		}
	}

	result.Matched = engine.BuildResults(ev.Matched)
	return result, nil
}

// unrecorded returns the matched rules with no diagnosis yet in the
// session. Existence checks run concurrently, one per matched rule.
func (s *Service) unrecorded(ctx context.Context, sessionID id.SessionID, matched []models.DiagnosticRule) ([]models.DiagnosticRule, error) {
	if len(matched) == 0 {
		return nil, nil
	}
	exists := make([]bool, len(matched))
	g, gctx := errgroup.WithContext(ctx)
	for i, rule := range matched {
		g.Go(func() error {
			ok, err := s.diagnoses.Exists(gctx, sessionID, rule.ID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check recorded diagnoses")
			}
			exists[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.DiagnosticRule, 0, len(matched))
	for i, rule := range matched {
		if !exists[i] {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (s *Service) recordDiagnosis(ctx context.Context, sessionID id.SessionID, userID id.UserID, rule models.DiagnosticRule) error {
	d := engine.NewDiagnosis(sessionID, userID, rule, requestcontext.Now(ctx))
	err := s.diagnoses.CreateIfAbsent(ctx, d)
	if errors.Is(err, sentinel.ErrConflict) {
		// A concurrent submission recorded it first.
		s.logger.DebugContext(ctx, "duplicate diagnosis absorbed",
			"code", string(dErrors.CodeDuplicateDiagnosis),
			"session_id", sessionID.String(),
			"rule_code", rule.Code,
		)
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record diagnosis")
	}
	s.metrics.IncrementDiagnosisCreated(rule.Code)
	s.logAudit(ctx, audit.EventDiagnosisRecorded, userID, sessionID, rule.Code)
	return nil
}

// NextQuestion is either a question to ask or the completion signal.
type NextQuestion struct {
	QuestionID id.QuestionID
	Done       bool
	Message    string
}

// GetNextQuestion picks the next unanswered catalog question for the session.
func (s *Service) GetNextQuestion(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*NextQuestion, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	g, gctx := errgroup.WithContext(ctx)
	var (
		answers models.AnswerSet
		rules   []models.DiagnosticRule
	)
	g.Go(func() error {
		set, err := s.accumulator.Answers(gctx, userID, sessionID)
		if err != nil {
			return accumulatorError(err, "failed to load answers")
		}
		answers = set
		return nil
	})
	g.Go(func() error {
		loaded, err := s.catalog.LoadRules(gctx)
		if err != nil {
			return catalogUnavailable(err)
		}
		rules = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	q, done := engine.Select(s.strategy, answers, rules)
	if done {
		return &NextQuestion{Done: true, Message: DoneMessage}, nil
	}
	return &NextQuestion{QuestionID: q}, nil
}

// ListDiagnoses returns the diagnoses recorded for a session, oldest first.
// It reads the durable store, so it keeps working after the session expires.
func (s *Service) ListDiagnoses(ctx context.Context, userID id.UserID, sessionID id.SessionID) ([]*models.Diagnosis, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	list, err := s.diagnoses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list diagnoses")
	}
	for _, d := range list {
		if d.UserID != userID {
			return nil, dErrors.New(dErrors.CodeForbidden, "session belongs to another user")
		}
	}
	if list == nil {
		list = []*models.Diagnosis{}
	}
	return list, nil
}

// ReloadCatalog forces a catalog refresh and returns the new rule count.
func (s *Service) ReloadCatalog(ctx context.Context) (int, error) {
	if s.reloader == nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "catalog reload is not supported by this deployment")
	}
	snap, err := s.reloader.Reload(ctx)
	if err != nil {
		return 0, catalogUnavailable(err)
	}
	s.logAudit(ctx, audit.EventCatalogReloaded, id.UserID{}, id.SessionID{}, "")
	return len(snap.Rules), nil
}

func (s *Service) reportInvalid(ctx context.Context, invalid []engine.InvalidRule) {
	if len(invalid) == 0 {
		return
	}
	s.metrics.AddInvalidRules(len(invalid))
	for _, ir := range invalid {
		s.logger.WarnContext(ctx, "skipping invalid diagnostic rule",
			"rule_id", int64(ir.Rule.ID),
			"rule_code", ir.Rule.Code,
			"error", ir.Err,
		)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, userID id.UserID, sessionID id.SessionID, subject string) {
	requestID := requestcontext.RequestID(ctx)
	clientIP := requestcontext.ClientIP(ctx)
	s.logger.InfoContext(ctx, string(event),
		"log_type", "audit",
		"user_id", userID.String(),
		"session_id", sessionID.String(),
		"subject", subject,
		"request_id", requestID,
		"client_ip", clientIP,
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp:    requestcontext.Now(ctx),
		UserID:       userID,
		SessionID:    sessionID,
		Subject:      subject,
		Action:       string(event),
		RequestID:    requestID,
		ClientIP:     clientIP,
		ClientDevice: requestcontext.ClientDevice(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

// accumulatorError passes domain errors through and wraps infrastructure
// failures.
func accumulatorError(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func catalogUnavailable(err error) error {
	if dErrors.HasCode(err, dErrors.CodeRuleCatalogUnavailable) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeRuleCatalogUnavailable, "rule catalog unavailable")
}
