// internal/app/app_test.go
package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
	confirmoption "assistant-workers/internal/workers/assistant/confirm-option"
	planoptions "assistant-workers/internal/workers/assistant/plan-options"
	sendoptionsummary "assistant-workers/internal/workers/assistant/send-option-summary"
)

func fixedNow() time.Time {
	return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Workers: map[string]config.WorkerConfig{
			planoptions.TaskType: {Enabled: true, Timeout: 20000},
		},
		Assistant: config.AssistantConfig{
			TeamMembers:          append([]string(nil), models.DefaultTeamMembers...),
			TeamSize:             len(models.DefaultTeamMembers),
			DefaultLocation:      models.DefaultLocation,
			TargetOptionCount:    6,
			MaxRankedRestaurants: 8,
			LookaheadDays:        3,
			RestaurantSource:     "fixture",
		},
	}
}

func TestBuild_OfflineFixture(t *testing.T) {
	a, err := Build(context.Background(), testConfig(), logger.NewTestLogger(t), Options{Offline: true, Now: fixedNow})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Email)
	assert.Nil(t, a.SMS)
	assert.Nil(t, a.Events)
	assert.Empty(t, a.ReadinessChecks())

	h := a.Handlers(nil)
	assert.Len(t, h.JobHandlers(), 5)

	plan, err := h.Plan.Execute(context.Background(), &planoptions.Input{Message: "team dinner in Hyderabad tomorrow"})
	require.NoError(t, err)
	require.Equal(t, "OPTIONS", plan.Status)
	require.NotEmpty(t, plan.Options)
	assert.Equal(t, "2026-10-15", plan.Date)

	summary, err := h.Summary.Execute(context.Background(), &sendoptionsummary.Input{Location: "Hyderabad", Options: plan.Options})
	require.NoError(t, err)
	assert.False(t, summary.Sent)
	assert.Equal(t, len(models.DefaultTeamMembers), summary.RecipientCount)

	confirmed, err := h.Confirm.Execute(context.Background(), &confirmoption.Input{Option: plan.Options[0]})
	require.NoError(t, err)
	assert.Equal(t, "BOOK_20261014120000", confirmed.ConfirmationID)
	assert.Equal(t, confirmoption.Notification{}, confirmed.Notified)
}

func TestBuild_UnknownSource(t *testing.T) {
	cfg := testConfig()
	cfg.Assistant.RestaurantSource = "yelp"

	_, err := Build(context.Background(), cfg, nil, Options{Offline: true})
	assert.Error(t, err)
}

func TestWorkerTimeout(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, 20*time.Second, workerTimeout(cfg, planoptions.TaskType, time.Second))
	assert.Equal(t, time.Second, workerTimeout(cfg, confirmoption.TaskType, time.Second))
}

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewNoOpLogger()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		}, 5, time.Millisecond, log, "op")
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			return errors.New("down")
		}, 3, time.Millisecond, log, "op")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "op failed after 3 attempts")
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryWithBackoff(ctx, func() error { return errors.New("down") }, 3, time.Hour, log, "op")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
