// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func sampleActivity(id string) Activity {
	return Activity{
		ID:                   id,
		DisplayName:          "Sample " + id,
		Description:          "sample",
		Category:             "assistant",
		Version:              "1.0.0",
		TaskType:             id,
		ImplementationStatus: StatusCompleted,
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"message"},
			"properties": map[string]interface{}{
				"message": map[string]interface{}{"type": "string"},
			},
		},
		Timeout: "10s",
		Retries: 3,
	}
}

func TestRegistry_SaveAndLoad(t *testing.T) {
	reg := &ActivityRegistry{Version: "1.0.0"}
	reg.Upsert(sampleActivity("plan-options"), testNow)
	reg.Upsert(sampleActivity("classify-intent"), testNow)

	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 2)
	assert.Equal(t, "classify-intent", loaded.Activities[0].ID)
	assert.Equal(t, "2026-10-18T12:00:00Z", loaded.LastUpdated)
}

func TestRegistry_Upsert(t *testing.T) {
	reg := &ActivityRegistry{}
	assert.False(t, reg.Upsert(sampleActivity("a"), testNow))

	updated := sampleActivity("a")
	updated.Version = "2.0.0"
	assert.True(t, reg.Upsert(updated, testNow))

	require.Len(t, reg.Activities, 1)
	assert.Equal(t, "2.0.0", reg.Activities[0].Version)
}

func TestRegistry_FindAndSetStatus(t *testing.T) {
	reg := &ActivityRegistry{}
	reg.Upsert(sampleActivity("confirm-option"), testNow)

	a, err := reg.FindByTaskType("confirm-option")
	require.NoError(t, err)
	assert.Equal(t, "confirm-option", a.ID)

	_, err = reg.Find("missing")
	assert.ErrorIs(t, err, ErrActivityNotFound)

	require.NoError(t, reg.SetStatus("confirm-option", StatusVerified, testNow))
	a, _ = reg.Find("confirm-option")
	assert.Equal(t, StatusVerified, a.ImplementationStatus)

	assert.Error(t, reg.SetStatus("confirm-option", "shipped", testNow))
	assert.ErrorIs(t, reg.SetStatus("missing", StatusPlanned, testNow), ErrActivityNotFound)
}

func TestRegistry_InputSchemas(t *testing.T) {
	reg := &ActivityRegistry{}
	withSchema := sampleActivity("classify-intent")
	noSchema := sampleActivity("confirm-option")
	noSchema.InputSchema = nil
	reg.Upsert(withSchema, testNow)
	reg.Upsert(noSchema, testNow)

	schemas := reg.InputSchemas()
	assert.Len(t, schemas, 1)
	assert.Contains(t, schemas, "classify-intent")
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ActivityRegistry)
		wantErr string
	}{
		{name: "valid", mutate: func(*ActivityRegistry) {}},
		{
			name:    "empty",
			mutate:  func(r *ActivityRegistry) { r.Activities = nil },
			wantErr: "no activities",
		},
		{
			name:    "duplicate id",
			mutate:  func(r *ActivityRegistry) { r.Activities = append(r.Activities, r.Activities[0]) },
			wantErr: "duplicate activity ID",
		},
		{
			name:    "missing display name",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].DisplayName = "" },
			wantErr: "displayName",
		},
		{
			name:    "bad timeout",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].Timeout = "ten seconds" },
			wantErr: "invalid timeout",
		},
		{
			name:    "bad status",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].ImplementationStatus = "done" },
			wantErr: "unknown status",
		},
		{
			name: "schema does not compile",
			mutate: func(r *ActivityRegistry) {
				r.Activities[0].InputSchema = map[string]interface{}{"type": "banana"}
			},
			wantErr: "does not compile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{}
			reg.Upsert(sampleActivity("extract-request"), testNow)
			tt.mutate(reg)

			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
