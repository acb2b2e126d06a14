package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateNoteRequestTechniqueTriState(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSet bool
		wantID  *string
	}{
		{"absent leaves technique alone", `{"title":"t"}`, false, nil},
		{"null clears technique", `{"technique_id":null}`, true, nil},
		{"value assigns technique", `{"technique_id":"tech-1"}`, true, strPtr("tech-1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateNoteRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.wantSet, req.TechniqueSet)
			assert.Equal(t, tt.wantID, req.TechniqueID)
		})
	}
}

func TestUpdateNoteRequestTags(t *testing.T) {
	var absent UpdateNoteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t"}`), &absent))
	assert.Nil(t, absent.Tags, "absent tags must not touch associations")

	var empty UpdateNoteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"tags":[]}`), &empty))
	require.NotNil(t, empty.Tags, "an explicit empty array replaces the set")
	assert.Empty(t, *empty.Tags)

	var full UpdateNoteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"tags":["a","b"]}`), &full))
	require.NotNil(t, full.Tags)
	assert.Equal(t, []string{"a", "b"}, *full.Tags)
}

func TestUpdateNoteRequestRejectsNonStringTechnique(t *testing.T) {
	var req UpdateNoteRequest
	err := json.Unmarshal([]byte(`{"technique_id":42}`), &req)
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
