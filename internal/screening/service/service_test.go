package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Accumulator,CatalogProvider,CatalogReloader,DiagnosisStore,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"neuroease/internal/screening/catalog"
	"neuroease/internal/screening/models"
	"neuroease/internal/screening/service/mocks"
	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
	audit "neuroease/pkg/platform/audit"
	"neuroease/pkg/platform/sentinel"
	"neuroease/pkg/requestcontext"
)

// =============================================================================
// Collaborator Contract Suite
// =============================================================================
// Mocks pin down how the service reacts to each collaborator outcome: error
// translation, duplicate absorption and audit emission.

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	accumulator *mocks.MockAccumulator
	catalog     *mocks.MockCatalogProvider
	diagnoses   *mocks.MockDiagnosisStore
	publisher   *mocks.MockAuditPublisher
	reloader    *mocks.MockCatalogReloader
	service     *Service

	userID    id.UserID
	sessionID id.SessionID
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.accumulator = mocks.NewMockAccumulator(s.ctrl)
	s.catalog = mocks.NewMockCatalogProvider(s.ctrl)
	s.diagnoses = mocks.NewMockDiagnosisStore(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.reloader = mocks.NewMockCatalogReloader(s.ctrl)

	var err error
	s.service, err = New(s.accumulator, s.catalog, s.diagnoses,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.publisher),
		WithCatalogReloader(s.reloader),
	)
	s.Require().NoError(err)

	s.userID = id.UserID(uuid.New())
	s.sessionID = id.NewSessionID()
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func gadRule() models.DiagnosticRule {
	return models.DiagnosticRule{
		ID:                     1,
		Code:                   "GAD",
		Title:                  "Generalized anxiety disorder",
		MinimumMatchesRequired: 1,
		Conditions:             []models.RuleCondition{{QuestionID: "Q1", Operator: models.OperatorEquals, Value: "yes"}},
	}
}

func (s *ServiceSuite) answerSet(q, v string) models.AnswerSet {
	return models.NewAnswerSet(models.UserAnswer{
		UserID: s.userID, SessionID: s.sessionID, QuestionID: id.QuestionID(q), Value: v,
	})
}

func (s *ServiceSuite) TestNew() {
	s.Run("nil accumulator", func() {
		_, err := New(nil, s.catalog, s.diagnoses)
		s.ErrorContains(err, "accumulator is required")
	})
	s.Run("nil catalog", func() {
		_, err := New(s.accumulator, nil, s.diagnoses)
		s.ErrorContains(err, "catalog provider is required")
	})
	s.Run("nil diagnosis store", func() {
		_, err := New(s.accumulator, s.catalog, nil)
		s.ErrorContains(err, "diagnosis store is required")
	})
}

func (s *ServiceSuite) TestSubmitAnswerRecordsAndPersistsNewMatch() {
	s.accumulator.EXPECT().Record(gomock.Any(), s.sessionID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ id.SessionID, a models.UserAnswer) (models.AnswerSet, error) {
			s.Equal(id.QuestionID("Q1"), a.QuestionID)
			s.Equal("Yes", a.Value)
			return s.answerSet("Q1", "Yes"), nil
		})
	s.catalog.EXPECT().LoadRules(gomock.Any()).Return([]models.DiagnosticRule{gadRule()}, nil)
	s.diagnoses.EXPECT().Exists(gomock.Any(), s.sessionID, id.RuleID(1)).Return(false, nil)
	s.diagnoses.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *models.Diagnosis) error {
			s.Equal(id.RuleID(1), d.RuleID)
			s.Equal("GAD", d.Code)
			s.Equal(s.userID, d.UserID)
			s.Equal(models.DetailFor("Generalized anxiety disorder"), d.Result)
			return nil
		})
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	result, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{
		UserID: s.userID, SessionID: s.sessionID, QuestionID: " Q1 ", Value: " Yes ",
	})
	s.Require().NoError(err)
	s.False(result.SessionStarted)
	s.Require().Len(result.Matched, 1)
	s.Equal("GAD", result.Matched[0].Code)
	s.Equal("Generalized anxiety disorder", result.Matched[0].Diagnosis)
}

func (s *ServiceSuite) TestSubmitAnswerSkipsAlreadyRecordedRule() {
	s.accumulator.EXPECT().Record(gomock.Any(), s.sessionID, gomock.Any()).Return(s.answerSet("Q1", "yes"), nil)
	s.catalog.EXPECT().LoadRules(gomock.Any()).Return([]models.DiagnosticRule{gadRule()}, nil)
	s.diagnoses.EXPECT().Exists(gomock.Any(), s.sessionID, id.RuleID(1)).Return(true, nil)
	s.diagnoses.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).Times(0)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	result, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{
		UserID: s.userID, SessionID: s.sessionID, QuestionID: "Q1", Value: "yes",
	})
	s.Require().NoError(err)
	s.Len(result.Matched, 1, "matched rules are reported on every evaluation")
}

func (s *ServiceSuite) TestSubmitAnswerAbsorbsDuplicateDiagnosis() {
	s.accumulator.EXPECT().Record(gomock.Any(), s.sessionID, gomock.Any()).Return(s.answerSet("Q1", "yes"), nil)
	s.catalog.EXPECT().LoadRules(gomock.Any()).Return([]models.DiagnosticRule{gadRule()}, nil)
	s.diagnoses.EXPECT().Exists(gomock.Any(), s.sessionID, id.RuleID(1)).Return(false, nil)
	s.diagnoses.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	result, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{
		UserID: s.userID, SessionID: s.sessionID, QuestionID: "Q1", Value: "yes",
	})
	s.Require().NoError(err)
	s.Len(result.Matched, 1)
}

func (s *ServiceSuite) TestSubmitAnswerCatalogFailureAfterRecording() {
	s.accumulator.EXPECT().Record(gomock.Any(), s.sessionID, gomock.Any()).Return(s.answerSet("Q1", "yes"), nil)
	s.catalog.EXPECT().LoadRules(gomock.Any()).Return(nil, errors.New("connection refused"))
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{
		UserID: s.userID, SessionID: s.sessionID, QuestionID: "Q1", Value: "yes",
	})
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleCatalogUnavailable))
}

func (s *ServiceSuite) TestSubmitAnswerDiagnosisStoreFailure() {
	s.accumulator.EXPECT().Record(gomock.Any(), s.sessionID, gomock.Any()).Return(s.answerSet("Q1", "yes"), nil)
	s.catalog.EXPECT().LoadRules(gomock.Any()).Return([]models.DiagnosticRule{gadRule()}, nil)
	s.diagnoses.EXPECT().Exists(gomock.Any(), s.sessionID, id.RuleID(1)).Return(false, nil)
	s.diagnoses.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{
		UserID: s.userID, SessionID: s.sessionID, QuestionID: "Q1", Value: "yes",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestSubmitAnswerExistenceCheckFailure() {
	s.accumulator.EXPECT().Record(gomock.Any(), s.sessionID, gomock.Any()).Return(s.answerSet("Q1", "yes"), nil)
	s.catalog.EXPECT().LoadRules(gomock.Any()).Return([]models.DiagnosticRule{gadRule()}, nil)
	s.diagnoses.EXPECT().Exists(gomock.Any(), s.sessionID, id.RuleID(1)).Return(false, errors.New("connection reset"))
	s.diagnoses.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).Times(0)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{
		UserID: s.userID, SessionID: s.sessionID, QuestionID: "Q1", Value: "yes",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestSubmitAnswerValidation() {
	s.Run("missing user", func() {
		_, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{SessionID: s.sessionID, QuestionID: "Q1", Value: "yes"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
	s.Run("missing question does not start a session", func() {
		_, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{UserID: s.userID, QuestionID: "  ", Value: "yes"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAnswer))
	})
	s.Run("blank value", func() {
		_, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{UserID: s.userID, SessionID: s.sessionID, QuestionID: "Q1", Value: " "})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAnswer))
	})
}

func (s *ServiceSuite) TestSubmitAnswerStartsSessionWhenMissing() {
	started := models.Session{ID: s.sessionID, UserID: s.userID}
	s.accumulator.EXPECT().Start(gomock.Any(), s.userID).Return(started, nil)
	s.accumulator.EXPECT().Record(gomock.Any(), s.sessionID, gomock.Any()).
		DoAndReturn(func(_ context.Context, sid id.SessionID, a models.UserAnswer) (models.AnswerSet, error) {
			s.Equal(sid, a.SessionID)
			return s.answerSet("Q9", "no"), nil
		})
	s.catalog.EXPECT().LoadRules(gomock.Any()).Return([]models.DiagnosticRule{gadRule()}, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	result, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{UserID: s.userID, QuestionID: "Q9", Value: "no"})
	s.Require().NoError(err)
	s.True(result.SessionStarted)
	s.Equal(s.sessionID, result.SessionID)
	s.Empty(result.Matched)
}

func (s *ServiceSuite) TestSubmitAnswerPassesThroughSessionExpired() {
	s.accumulator.EXPECT().Record(gomock.Any(), s.sessionID, gomock.Any()).
		Return(models.AnswerSet{}, dErrors.New(dErrors.CodeSessionExpired, "expired"))

	_, err := s.service.SubmitAnswer(s.ctx, SubmitAnswerRequest{
		UserID: s.userID, SessionID: s.sessionID, QuestionID: "Q1", Value: "yes",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeSessionExpired))
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailOperation() {
	s.accumulator.EXPECT().Start(gomock.Any(), s.userID).Return(models.Session{ID: s.sessionID, UserID: s.userID}, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventSessionStarted), e.Action)
			s.Equal(s.sessionID, e.SessionID)
			return errors.New("audit store down")
		})

	session, err := s.service.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(s.sessionID, session.ID)
}

func (s *ServiceSuite) TestAuditEventCarriesClientMetadata() {
	ctx := requestcontext.WithClientIP(s.ctx, "203.0.113.7")
	ctx = requestcontext.WithClientDevice(ctx, "Firefox on Linux x86_64 (desktop)")
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	s.accumulator.EXPECT().Start(gomock.Any(), s.userID).Return(models.Session{ID: s.sessionID, UserID: s.userID}, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal("203.0.113.7", e.ClientIP)
			s.Equal("Firefox on Linux x86_64 (desktop)", e.ClientDevice)
			s.Equal("req-42", e.RequestID)
			return nil
		})

	_, err := s.service.StartSession(ctx, s.userID)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestGetNextQuestion() {
	rules := []models.DiagnosticRule{gadRule(), {
		ID: 2, Code: "MDD", MinimumMatchesRequired: 1,
		Conditions: []models.RuleCondition{{QuestionID: "Q2", Operator: models.OperatorEquals, Value: "yes"}},
	}}

	s.Run("returns first unanswered question", func() {
		s.accumulator.EXPECT().Answers(gomock.Any(), s.userID, s.sessionID).Return(s.answerSet("Q1", "no"), nil)
		s.catalog.EXPECT().LoadRules(gomock.Any()).Return(rules, nil)

		next, err := s.service.GetNextQuestion(s.ctx, s.userID, s.sessionID)
		s.Require().NoError(err)
		s.False(next.Done)
		s.Equal(id.QuestionID("Q2"), next.QuestionID)
	})

	s.Run("signals done with message", func() {
		all := models.NewAnswerSet(
			models.UserAnswer{UserID: s.userID, SessionID: s.sessionID, QuestionID: "Q1", Value: "no"},
			models.UserAnswer{UserID: s.userID, SessionID: s.sessionID, QuestionID: "Q2", Value: "no"},
		)
		s.accumulator.EXPECT().Answers(gomock.Any(), s.userID, s.sessionID).Return(all, nil)
		s.catalog.EXPECT().LoadRules(gomock.Any()).Return(rules, nil)

		next, err := s.service.GetNextQuestion(s.ctx, s.userID, s.sessionID)
		s.Require().NoError(err)
		s.True(next.Done)
		s.Equal(DoneMessage, next.Message)
		s.Empty(next.QuestionID)
	})

	s.Run("catalog unavailable", func() {
		s.accumulator.EXPECT().Answers(gomock.Any(), s.userID, s.sessionID).Return(models.AnswerSet{}, nil).AnyTimes()
		s.catalog.EXPECT().LoadRules(gomock.Any()).Return(nil, errors.New("boom"))

		_, err := s.service.GetNextQuestion(s.ctx, s.userID, s.sessionID)
		s.True(dErrors.HasCode(err, dErrors.CodeRuleCatalogUnavailable))
	})
}

func (s *ServiceSuite) TestListDiagnoses() {
	s.Run("returns the session's diagnoses", func() {
		s.diagnoses.EXPECT().ListBySession(gomock.Any(), s.sessionID).
			Return([]*models.Diagnosis{{RuleID: 1, Code: "GAD", UserID: s.userID, SessionID: s.sessionID}}, nil)

		list, err := s.service.ListDiagnoses(s.ctx, s.userID, s.sessionID)
		s.Require().NoError(err)
		s.Len(list, 1)
	})

	s.Run("empty list is not nil", func() {
		s.diagnoses.EXPECT().ListBySession(gomock.Any(), s.sessionID).Return(nil, nil)

		list, err := s.service.ListDiagnoses(s.ctx, s.userID, s.sessionID)
		s.Require().NoError(err)
		s.NotNil(list)
		s.Empty(list)
	})

	s.Run("another user's session is forbidden", func() {
		s.diagnoses.EXPECT().ListBySession(gomock.Any(), s.sessionID).
			Return([]*models.Diagnosis{{RuleID: 1, UserID: id.UserID(uuid.New()), SessionID: s.sessionID}}, nil)

		_, err := s.service.ListDiagnoses(s.ctx, s.userID, s.sessionID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestReloadCatalog() {
	s.Run("returns rule count", func() {
		s.reloader.EXPECT().Reload(gomock.Any()).Return(&catalog.Snapshot{Rules: []models.DiagnosticRule{gadRule()}}, nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		n, err := s.service.ReloadCatalog(s.ctx)
		s.Require().NoError(err)
		s.Equal(1, n)
	})

	s.Run("reload failure is catalog unavailable", func() {
		s.reloader.EXPECT().Reload(gomock.Any()).Return(nil, errors.New("bad yaml"))

		_, err := s.service.ReloadCatalog(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeRuleCatalogUnavailable))
	})

	s.Run("unsupported without reloader", func() {
		svc, err := New(s.accumulator, s.catalog, s.diagnoses)
		s.Require().NoError(err)
		_, err = svc.ReloadCatalog(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
