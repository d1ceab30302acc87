package api

import (
	"encoding/json"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb"
)

// CreateNodeRequest is the body of POST /nodes.
// Data is decoded into the payload type for Kind; execution fields in it
// are ignored.
type CreateNodeRequest struct {
	ID       string           `json:"id,omitempty" validate:"omitempty,max=128"`
	Kind     string           `json:"kind"         validate:"required,oneof=ImageInput PromptTemplate ImageEditOrGenerate ReasoningAnalysis VideoGenerate OutputSink"`
	Label    string           `json:"label"        validate:"max=200"`
	Position floworb.Position `json:"position"`
	Data     json.RawMessage  `json:"data,omitempty"`
}

// UpdateNodeRequest is the body of PATCH /nodes/:id.
// Only present fields change. Fields the node's kind does not carry are ignored.
type UpdateNodeRequest struct {
	Label          *string           `json:"label,omitempty"          validate:"omitempty,max=200"`
	Position       *floworb.Position `json:"position,omitempty"`
	ImageName      *string           `json:"imageName,omitempty"`
	ImageData      *string           `json:"imageData,omitempty"`
	Prompt         *string           `json:"prompt,omitempty"`
	AnalysisResult *string           `json:"analysisResult,omitempty"`
	OutputImage    *string           `json:"outputImage,omitempty"`
	VideoURI       *string           `json:"videoUri,omitempty"`
}

func (r UpdateNodeRequest) patch() floworb.Patch {
	return floworb.Patch{
		Label:          r.Label,
		Position:       r.Position,
		ImageName:      r.ImageName,
		ImageData:      r.ImageData,
		Prompt:         r.Prompt,
		AnalysisResult: r.AnalysisResult,
		OutputImage:    r.OutputImage,
		VideoURI:       r.VideoURI,
	}
}

// CreateConnectionRequest is the body of POST /connections.
type CreateConnectionRequest struct {
	ID       string `json:"id,omitempty" validate:"omitempty,max=128"`
	SourceID string `json:"sourceId"     validate:"required"`
	TargetID string `json:"targetId"     validate:"required"`
}
