package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/elevate-edu/elevate/pkg/constants"
)

// DomainEvent is the envelope published to the event bus. Payload holds
// event-specific fields and is serialized as JSON.
type DomainEvent struct {
	ID             string                 `json:"id"`
	Type           constants.EventType    `json:"type"`
	OrganizationID string                 `json:"organization_id"`
	OccurredAt     time.Time              `json:"occurred_at"`
	Payload        map[string]interface{} `json:"payload"`
}

// NewDomainEvent creates an event envelope stamped with a fresh id and the
// current time.
func NewDomainEvent(eventType constants.EventType, orgID string, payload map[string]interface{}) *DomainEvent {
	return &DomainEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		OrganizationID: orgID,
		OccurredAt:     time.Now().UTC(),
		Payload:        payload,
	}
}

// UserRegisteredEvent builds the user.registered event.
func UserRegisteredEvent(u *User) *DomainEvent {
	return NewDomainEvent(constants.EventUserRegistered, u.OrganizationID, map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    string(u.Role),
	})
}

// CourseCreatedEvent builds the course.created event.
func CourseCreatedEvent(c *Course) *DomainEvent {
	return NewDomainEvent(constants.EventCourseCreated, c.OrganizationID, map[string]interface{}{
		"course_id":  c.ID,
		"code":       c.Code,
		"created_by": c.CreatedBy,
	})
}

// QuestionnaireCompletedEvent builds the questionnaire.completed event.
func QuestionnaireCompletedEvent(r *QuestionnaireResponse) *DomainEvent {
	return NewDomainEvent(constants.EventQuestionnaireCompleted, r.OrganizationID, map[string]interface{}{
		"response_id": r.ID,
		"project_id":  r.ProjectID,
		"user_id":     r.UserID,
	})
}

// TeamFormedEvent builds the team.formed event.
func TeamFormedEvent(t *Team) *DomainEvent {
	return NewDomainEvent(constants.EventTeamFormed, t.OrganizationID, map[string]interface{}{
		"team_id":    t.ID,
		"project_id": t.ProjectID,
		"origin":     string(t.Origin),
		"members":    t.MemberIDs(),
		"score":      t.Score,
	})
}
