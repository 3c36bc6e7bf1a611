// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

var ErrActivityNotFound = errors.New("activity not found")

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON, creating the directory if needed.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func (r *ActivityRegistry) Find(id string) (*Activity, error) {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrActivityNotFound, id)
}

func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, error) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], nil
		}
	}
	return nil, fmt.Errorf("%w: task type %s", ErrActivityNotFound, taskType)
}

// Upsert replaces the activity with the same ID or appends it, keeping the list sorted by ID.
// It reports whether an existing entry was replaced.
func (r *ActivityRegistry) Upsert(a Activity, now time.Time) bool {
	replaced := false
	for i := range r.Activities {
		if r.Activities[i].ID == a.ID {
			r.Activities[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		r.Activities = append(r.Activities, a)
	}
	sort.SliceStable(r.Activities, func(i, j int) bool {
		return r.Activities[i].ID < r.Activities[j].ID
	})
	r.LastUpdated = now.UTC().Format(time.RFC3339)
	return replaced
}

func (r *ActivityRegistry) SetStatus(id, status string, now time.Time) error {
	if !validStatus(status) {
		return fmt.Errorf("unknown implementation status %q", status)
	}
	a, err := r.Find(id)
	if err != nil {
		return err
	}
	a.ImplementationStatus = status
	r.LastUpdated = now.UTC().Format(time.RFC3339)
	return nil
}

// InputSchemas maps task type to input schema for activities that declare one.
func (r *ActivityRegistry) InputSchemas() map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(r.Activities))
	for _, a := range r.Activities {
		if len(a.InputSchema) > 0 {
			out[a.TaskType] = a.InputSchema
		}
	}
	return out
}

// Validate checks required fields, uniqueness, timeouts, statuses and that every
// declared schema compiles. All problems are reported together.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return errors.New("registry contains no activities")
	}

	var errs []error
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range r.Activities {
		if a.ID == "" {
			errs = append(errs, errors.New("activity missing required field: id"))
			continue
		}
		if ids[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate activity ID: %s", a.ID))
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: displayName", a.ID))
		}
		if a.Category == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: category", a.ID))
		}
		if a.TaskType == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: taskType", a.ID))
		} else if taskTypes[a.TaskType] {
			errs = append(errs, fmt.Errorf("duplicate task type: %s", a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if a.ImplementationStatus != "" && !validStatus(a.ImplementationStatus) {
			errs = append(errs, fmt.Errorf("activity %s has unknown status %q", a.ID, a.ImplementationStatus))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				errs = append(errs, fmt.Errorf("activity %s has invalid timeout %q", a.ID, a.Timeout))
			}
		}
		if a.Retries < 0 {
			errs = append(errs, fmt.Errorf("activity %s has negative retries", a.ID))
		}
		for name, schema := range map[string]map[string]interface{}{"inputSchema": a.InputSchema, "outputSchema": a.OutputSchema} {
			if len(schema) == 0 {
				continue
			}
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
				errs = append(errs, fmt.Errorf("activity %s %s does not compile: %v", a.ID, name, err))
			}
		}
	}
	return errors.Join(errs...)
}
