package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edstack/exam-service/internal/models"
)

func TestValidateTestAction(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		current models.TestStatus
		action  TestAction
		wantErr bool
	}{
		{name: "publish from draft", current: models.TestStatusDraft, action: ActionPublish},
		{name: "publish from archived", current: models.TestStatusArchived, action: ActionPublish},
		{name: "publish from in_progress rejected", current: models.TestStatusInProgress, action: ActionPublish, wantErr: true},
		{name: "start from not_started", current: models.TestStatusNotStarted, action: ActionStart},
		{name: "start from completed rejected", current: models.TestStatusCompleted, action: ActionStart, wantErr: true},
		{name: "complete from in_progress", current: models.TestStatusInProgress, action: ActionComplete},
		{name: "complete from completed rejected", current: models.TestStatusCompleted, action: ActionComplete, wantErr: true},
		{name: "archive from completed", current: models.TestStatusCompleted, action: ActionArchive},
		{name: "archive from archived rejected", current: models.TestStatusArchived, action: ActionArchive, wantErr: true},
		{name: "move_to_draft from in_progress", current: models.TestStatusInProgress, action: ActionMoveToDraft},
		{name: "move_to_draft from draft rejected", current: models.TestStatusDraft, action: ActionMoveToDraft, wantErr: true},
		{name: "publish_results from completed", current: models.TestStatusCompleted, action: ActionPublishResults},
		{name: "publish_results from in_progress rejected", current: models.TestStatusInProgress, action: ActionPublishResults, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateTestAction(tt.current, tt.action)
			if tt.wantErr {
				assert.Error(t, err)
				assert.IsType(t, ValidationErrors{}, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePublish(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidatePublish(models.TestStatusDraft, 5))
	assert.Error(t, v.ValidatePublish(models.TestStatusDraft, 0), "empty test must not publish")
	assert.Error(t, v.ValidatePublish(models.TestStatusInProgress, 5), "running test must not re-publish")
}

func TestComputeScheduledStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		startTime *time.Time
		autoStart bool
		want      models.TestStatus
	}{
		{name: "no schedule keeps fallback", startTime: nil, autoStart: true, want: models.TestStatusNotStarted},
		{name: "manual start keeps fallback", startTime: &past, autoStart: false, want: models.TestStatusNotStarted},
		{name: "future start waits", startTime: &future, autoStart: true, want: models.TestStatusNotStarted},
		{name: "past start goes live", startTime: &past, autoStart: true, want: models.TestStatusInProgress},
		{name: "start exactly now goes live", startTime: &now, autoStart: true, want: models.TestStatusInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScheduledStatus(tt.startTime, tt.autoStart, models.TestStatusNotStarted, now)
			assert.Equal(t, tt.want, got)
		})
	}
}
