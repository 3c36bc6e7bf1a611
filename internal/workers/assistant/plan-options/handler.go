// internal/workers/assistant/plan-options/handler.go
package planoptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assistant-workers/internal/assistant/scheduler"
	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
	"assistant-workers/internal/sinks"
)

const (
	TaskType = "plan-options"
)

var (
	ErrInputValidation          = errors.New("INPUT_VALIDATION_FAILED")
	ErrRestaurantSourceFailed   = errors.New("RESTAURANT_SOURCE_FAILED")
	ErrAvailabilitySourceFailed = errors.New("AVAILABILITY_SOURCE_FAILED")
)

type Planner interface {
	Plan(ctx context.Context, req scheduler.Request) scheduler.Plan
}

type EventPublisher interface {
	PublishOptionsGenerated(ctx context.Context, payload sinks.OptionsGeneratedPayload) (string, error)
}

type Handler struct {
	config     *Config
	planner    Planner
	publisher  EventPublisher
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler builds the handler. publisher may be nil when events are disabled.
func NewHandler(config *Config, planner Planner, publisher EventPublisher, log logger.Logger) *Handler {
	log = logger.OrNoOp(log).WithFields(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		planner:    planner,
		publisher:  publisher,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("Processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if len(h.config.InputSchema) > 0 {
		vars, err := job.GetVariablesAsMap()
		if err == nil {
			err = validation.ValidateAgainstSchema(h.config.InputSchema, vars)
		}
		if err != nil {
			h.failJob(ctx, client, job, fmt.Errorf("%w: %v", ErrInputValidation, err))
			return
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, fmt.Errorf("%w: parse input: %v", ErrInputValidation, err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInputValidation)
	}
	if input.TargetCount < 0 || (h.config.MaxTarget > 0 && input.TargetCount > h.config.MaxTarget) {
		return nil, fmt.Errorf("%w: targetCount must be between 1 and %d", ErrInputValidation, h.config.MaxTarget)
	}

	defaults := h.config.Defaults.Merge(input.SessionDefaults)
	if err := validation.ValidateStruct(defaults); err != nil {
		return nil, fmt.Errorf("%w: sessionDefaults: %v", ErrInputValidation, err)
	}

	plan := h.planner.Plan(ctx, scheduler.Request{
		Message:     message,
		Defaults:    defaults,
		TargetCount: input.TargetCount,
	})

	if plan.Status == scheduler.StatusSourceFailed {
		if plan.Classification.Intent == models.IntentCalendarScheduling {
			return nil, fmt.Errorf("%w: %s", ErrAvailabilitySourceFailed, plan.Reason)
		}
		return nil, fmt.Errorf("%w: %s", ErrRestaurantSourceFailed, plan.Reason)
	}

	output := &Output{
		Status:       string(plan.Status),
		Intent:       string(plan.Classification.Intent),
		Options:      plan.Options,
		OptionCount:  len(plan.Options),
		Summary:      plan.Summary,
		EventContext: plan.EventContext,
		Reason:       plan.Reason,
		Message:      plan.Message,
		Location:     plan.Request.Location,
		Date:         plan.Request.Date,
		FailedDates:  plan.FailedDates,
		Availability: plan.Availability,
	}

	if plan.Status == scheduler.StatusOptions && h.publisher != nil {
		eventID, err := h.publisher.PublishOptionsGenerated(ctx, sinks.OptionsGeneratedPayload{
			Location: output.Location,
			Status:   output.Status,
			Options:  output.Options,
		})
		if err != nil {
			h.logger.Warn("Failed to publish options event", map[string]interface{}{
				"error": err.Error(),
			})
		}
		output.EventID = eventID
	}

	h.logger.Info("Plan completed", map[string]interface{}{
		"status":      output.Status,
		"intent":      output.Intent,
		"location":    output.Location,
		"optionCount": output.OptionCount,
	})
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// failJob maps source failures to retryable errors; once retries run out the
// error handler throws them as BPMN errors.
func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	var stdErr *apperrors.StandardError
	switch {
	case errors.Is(err, ErrInputValidation):
		stdErr = apperrors.NewInputValidationError(err.Error())
	case errors.Is(err, ErrRestaurantSourceFailed):
		stdErr = apperrors.NewRestaurantSourceFailedError("restaurants", err)
	case errors.Is(err, ErrAvailabilitySourceFailed):
		stdErr = apperrors.NewAvailabilitySourceFailedError("", err)
	default:
		stdErr = apperrors.NewInternalError(err)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
