// cmd/planner/root_test.go
package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, err := runCmd(t, "classify", "book", "a", "restaurant", "for", "dinner")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "RESTAURANT_BOOKING", result["intent"])
	assert.Equal(t, "keyword", result["strategy"])
}

func TestExtractCommand_LocationFlag(t *testing.T) {
	out, err := runCmd(t, "extract", "--location", "Pune", "--team-size", "4", "team dinner")
	require.NoError(t, err)

	var result struct {
		ExtractedRequest struct {
			Location  string `json:"location"`
			PartySize int    `json:"partySize"`
		} `json:"extractedRequest"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 4, result.ExtractedRequest.PartySize)
}

func TestPlanCommand(t *testing.T) {
	out, err := runCmd(t, "plan", "--target", "3", "team dinner in Hyderabad")
	require.NoError(t, err)

	var result struct {
		Status  string        `json:"status"`
		Options []interface{} `json:"options"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "OPTIONS", result.Status)
	assert.LessOrEqual(t, len(result.Options), 3)
}

func TestCommands_RequireMessage(t *testing.T) {
	_, err := runCmd(t, "plan")
	assert.Error(t, err)
}

func TestUnknownSource(t *testing.T) {
	_, err := runCmd(t, "plan", "--source", "yelp", "dinner")
	assert.Error(t, err)
}
