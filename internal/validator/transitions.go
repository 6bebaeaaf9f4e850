package validator

import (
	"fmt"
	"time"

	"github.com/edstack/exam-service/internal/models"
)

// TestAction is a lifecycle action applied to a test. Each action carries a
// whitelist of source states; validating here keeps every handler on the
// same rules instead of per-endpoint status comparisons.
type TestAction string

const (
	ActionPublish        TestAction = "publish"
	ActionStart          TestAction = "start"
	ActionComplete       TestAction = "complete"
	ActionArchive        TestAction = "archive"
	ActionMoveToDraft    TestAction = "move_to_draft"
	ActionPublishResults TestAction = "publish_results"
)

var allowedSources = map[TestAction][]models.TestStatus{
	ActionPublish: {
		models.TestStatusDraft,
		models.TestStatusArchived,
	},
	ActionStart: {
		models.TestStatusDraft,
		models.TestStatusNotStarted,
		models.TestStatusArchived,
	},
	ActionComplete: {
		models.TestStatusDraft,
		models.TestStatusNotStarted,
		models.TestStatusInProgress,
		models.TestStatusArchived,
	},
	ActionArchive: {
		models.TestStatusDraft,
		models.TestStatusNotStarted,
		models.TestStatusInProgress,
		models.TestStatusCompleted,
	},
	// Destructive override: an admin can un-publish a test students were
	// mid-attempt on. In-flight attempts are left as they are.
	ActionMoveToDraft: {
		models.TestStatusNotStarted,
		models.TestStatusInProgress,
		models.TestStatusCompleted,
		models.TestStatusArchived,
	},
	ActionPublishResults: {
		models.TestStatusCompleted,
	},
}

// ValidateTestAction checks whether the action is legal from the current
// status. Illegal transitions surface as ValidationErrors (mapped to 400).
func (v *Validator) ValidateTestAction(current models.TestStatus, action TestAction) error {
	for _, s := range allowedSources[action] {
		if current == s {
			return nil
		}
	}
	return ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("cannot %s a test in status %s", action, current),
		Value:   current,
		Rule:    "status_transition",
	}}
}

// ValidatePublish additionally requires at least one linked question.
func (v *Validator) ValidatePublish(current models.TestStatus, questionCount int) error {
	if err := v.ValidateTestAction(current, ActionPublish); err != nil {
		return err
	}
	if questionCount == 0 {
		return ValidationErrors{{
			Field:   "questions",
			Message: "test must have at least one question before publishing",
			Value:   questionCount,
			Rule:    "business_logic",
		}}
	}
	return nil
}

// ComputeScheduledStatus derives the status a test takes on creation or
// publication from its scheduling fields: a past-or-present start time means
// the test is live immediately, a future one means it is waiting.
func ComputeScheduledStatus(startTime *time.Time, autoStart bool, fallback models.TestStatus, now time.Time) models.TestStatus {
	if startTime == nil || !autoStart {
		return fallback
	}
	if startTime.After(now) {
		return models.TestStatusNotStarted
	}
	return models.TestStatusInProgress
}
