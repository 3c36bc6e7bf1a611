// internal/workers/assistant/extract-request/handler.go
package extractrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"assistant-workers/internal/assistant/extract"
	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/validation"
)

const (
	TaskType = "extract-request"
)

var (
	ErrInputValidation = errors.New("INPUT_VALIDATION_FAILED")
)

type Handler struct {
	config     *Config
	extractor  *extract.Extractor
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, extractor *extract.Extractor, log logger.Logger) *Handler {
	log = logger.OrNoOp(log).WithFields(map[string]interface{}{
		"taskType": TaskType,
	})
	if extractor == nil {
		extractor = extract.New(extract.WithLogger(log))
	}
	return &Handler{
		config:     config,
		extractor:  extractor,
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInputValidation)
	}

	defaults := h.config.Defaults.Merge(input.SessionDefaults).WithFallbacks()
	if err := validation.ValidateStruct(defaults); err != nil {
		return nil, fmt.Errorf("%w: sessionDefaults: %v", ErrInputValidation, err)
	}

	req := h.extractor.Extract(message, defaults)

	h.logger.Info("Request extracted", map[string]interface{}{
		"location":  req.Location,
		"cuisines":  req.Cuisines,
		"partySize": req.PartySize,
		"date":      req.Date,
	})

	return &Output{
		ExtractedRequest: req,
		HasDate:          req.HasDate(),
	}, nil
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
	stdErr := apperrors.NewInternalError(err)
	if errors.Is(err, ErrInputValidation) {
		stdErr = apperrors.NewInputValidationError(err.Error())
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
