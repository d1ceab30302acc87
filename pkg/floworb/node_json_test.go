package floworb

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNodeJSON_Envelope tests the wire shape of a node.
func TestNodeJSON_Envelope(t *testing.T) {
	n := Node{
		ID:       "r1",
		Kind:     KindReasoningAnalysis,
		Label:    "Gemini Pro",
		Position: Position{X: 1.5, Y: 2},
		Data: &ReasoningData{
			Prompt:         "describe",
			Execution:      Execution{Status: StatusError, ErrorMessage: "boom"},
			AnalysisResult: "text",
		},
	}

	raw, err := json.Marshal(n)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "r1",
		"kind": "ReasoningAnalysis",
		"label": "Gemini Pro",
		"position": {"x": 1.5, "y": 2},
		"data": {
			"prompt": "describe",
			"executionStatus": "error",
			"errorMessage": "boom",
			"analysisResult": "text"
		}
	}`, string(raw))
}

// TestNodeJSON_DecodePicksPayload tests that "kind" selects the payload type.
func TestNodeJSON_DecodePicksPayload(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"id":"i","kind":"ImageInput","data":{"imageName":"cat.png","imageData":"data:x"}}`), &n)
	require.NoError(t, err)

	d, ok := n.Data.(*ImageInputData)
	require.True(t, ok)
	assert.Equal(t, "cat.png", d.ImageName)
	assert.Equal(t, "data:x", d.ImageData)
}

// TestNodeJSON_MissingData tests that an absent payload decodes to the zero payload.
func TestNodeJSON_MissingData(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e","kind":"ImageEditOrGenerate"}`), &n))

	assert.IsType(t, &ImageEditData{}, n.Data)
	assert.Equal(t, StatusIdle, n.Status())
}

// TestNodeJSON_UnknownKind tests rejection of an unknown kind.
func TestNodeJSON_UnknownKind(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"id":"x","kind":"Upscaler"}`), &n)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

// TestKind_Executable tests which kinds can run.
func TestKind_Executable(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, Kind("Upscaler").Valid())

	assert.True(t, KindImageEditOrGenerate.Executable())
	assert.True(t, KindReasoningAnalysis.Executable())
	assert.True(t, KindVideoGenerate.Executable())
	assert.False(t, KindImageInput.Executable())
	assert.False(t, KindPromptTemplate.Executable())
	assert.False(t, KindOutputSink.Executable())
}
