// internal/workers/assistant/send-option-summary/handler.go
package sendoptionsummary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/sinks"
)

const (
	TaskType = "send-option-summary"
)

var (
	ErrInputValidation    = errors.New("INPUT_VALIDATION_FAILED")
	ErrNotificationFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

type EmailSender interface {
	Send(ctx context.Context, msg sinks.EmailMessage) (string, error)
}

type Handler struct {
	config     *Config
	email      EmailSender
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler builds the handler. A nil sender turns every job into a no-op
// completion with Sent=false.
func NewHandler(config *Config, email EmailSender, log logger.Logger) *Handler {
	log = logger.OrNoOp(log).WithFields(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:     config,
		email:      email,
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
	if len(input.Options) == 0 {
		return nil, fmt.Errorf("%w: options are required", ErrInputValidation)
	}
	for i, opt := range input.Options {
		if err := validation.ValidateStruct(opt); err != nil {
			return nil, fmt.Errorf("%w: option %d: %v", ErrInputValidation, i, err)
		}
	}

	recipients := input.Recipients
	if len(recipients) == 0 {
		recipients = h.config.DefaultRecipients
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrInputValidation)
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		location = "your area"
	}

	msg, err := sinks.RenderOptionSummary(location, input.Options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	msg.To = recipients

	output := &Output{RecipientCount: len(recipients), Subject: msg.Subject}
	if !h.config.Enabled || h.email == nil {
		h.logger.Info("Email disabled, summary not sent", map[string]interface{}{
			"optionCount": len(input.Options),
		})
		return output, nil
	}

	messageID, err := h.email.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	output.MessageID = messageID
	output.Sent = true

	h.logger.Info("Option summary sent", map[string]interface{}{
		"messageId":   messageID,
		"recipients":  len(recipients),
		"optionCount": len(input.Options),
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

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	var stdErr *apperrors.StandardError
	switch {
	case errors.Is(err, ErrInputValidation):
		stdErr = apperrors.NewInputValidationError(err.Error())
	case errors.Is(err, ErrNotificationFailed):
		stdErr = apperrors.NewNotificationSendFailedError("email", err)
	default:
		stdErr = apperrors.NewInternalError(err)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
