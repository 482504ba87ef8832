package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "neuroease/pkg/domain"
)

// EventCategory classifies audit events for retention and routing.
type EventCategory string

const (
	// CategoryClinical covers events that carry screening outcomes. These are
	// retained with the patient record.
	CategoryClinical EventCategory = "clinical"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores can fan out. Subject names the thing acted
// on (a question id, a rule code); ClientIP and ClientDevice come from the
// request metadata middleware.
type Event struct {
	ID           uuid.UUID
	Category     EventCategory
	Timestamp    time.Time
	UserID       id.UserID
	SessionID    id.SessionID
	Subject      string
	Action       string
	RequestID    string
	ClientIP     string
	ClientDevice string
}

type AuditEvent string

const (
	EventSessionStarted    AuditEvent = "screening_session_started"
	EventAnswerRecorded    AuditEvent = "screening_answer_recorded"
	EventDiagnosisRecorded AuditEvent = "screening_diagnosis_recorded"
	EventCatalogReloaded   AuditEvent = "rule_catalog_reloaded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDiagnosisRecorded: CategoryClinical,

	EventSessionStarted:  CategoryOperations,
	EventAnswerRecorded:  CategoryOperations,
	EventCatalogReloaded: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
