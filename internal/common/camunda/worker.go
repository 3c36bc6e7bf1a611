// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/logger"
)

const pollInterval = 100 * time.Millisecond

// Registry opens job workers and closes them together on shutdown.
type Registry struct {
	client  zbc.Client
	logger  logger.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewRegistry(client zbc.Client, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Registry{client: client, logger: log, workers: make(map[string]worker.JobWorker)}
}

// Start opens a job worker for taskType unless the worker is disabled.
// It reports whether a worker was opened.
func (r *Registry) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		r.logger.Info("Worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	jw := r.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		PollInterval(pollInterval).
		Open()

	r.mu.Lock()
	r.workers[taskType] = jw
	r.mu.Unlock()

	r.logger.Info("Worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return true
}

func (r *Registry) TaskTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.workers))
	for t := range r.workers {
		out = append(out, t)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs to finish.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for taskType, jw := range r.workers {
		jw.Close()
		jw.AwaitClose()
		r.logger.Info("Worker stopped", map[string]interface{}{"taskType": taskType})
		delete(r.workers, taskType)
	}
}
