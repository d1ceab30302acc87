package floworb

import (
	"fmt"
)

// Kind identifies the variant of a node.
type Kind string

// Node kinds.
const (
	KindImageInput          Kind = "ImageInput"
	KindPromptTemplate      Kind = "PromptTemplate"
	KindImageEditOrGenerate Kind = "ImageEditOrGenerate"
	KindReasoningAnalysis   Kind = "ReasoningAnalysis"
	KindVideoGenerate       Kind = "VideoGenerate"
	KindOutputSink          Kind = "OutputSink"
)

// Kinds lists every node kind in display order.
var Kinds = []Kind{
	KindImageInput,
	KindPromptTemplate,
	KindImageEditOrGenerate,
	KindReasoningAnalysis,
	KindVideoGenerate,
	KindOutputSink,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Executable reports whether nodes of this kind can be run by the Engine.
// Image inputs, prompt templates and output sinks only hold data.
func (k Kind) Executable() bool {
	switch k {
	case KindImageEditOrGenerate, KindReasoningAnalysis, KindVideoGenerate:
		return true
	default:
		return false
	}
}

// ExecutionStatus is the outcome of the last run of a node.
type ExecutionStatus string

// Execution statuses.
const (
	StatusIdle       ExecutionStatus = "idle"
	StatusProcessing ExecutionStatus = "processing"
	StatusSuccess    ExecutionStatus = "success"
	StatusError      ExecutionStatus = "error"
)

// Position is the canvas coordinate of a node. The engine never reads it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is the common envelope around a kind-specific payload.
type Node struct {
	ID       string
	Kind     Kind
	Label    string
	Position Position
	Data     Payload
}

// Payload is the kind-specific part of a node.
// The set of implementations is closed: one per Kind.
type Payload interface {
	// Kind returns the node kind this payload belongs to.
	Kind() Kind

	clone() Payload
}

// Execution holds the last-run outcome of an executable node.
type Execution struct {
	Status       ExecutionStatus `json:"executionStatus,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// ImageInputData is the payload of an ImageInput node.
type ImageInputData struct {
	ImageName string `json:"imageName,omitempty"`
	ImageData string `json:"imageData,omitempty"`
}

// PromptTemplateData is the payload of a PromptTemplate node.
type PromptTemplateData struct {
	Prompt string `json:"prompt,omitempty"`
}

// ImageEditData is the payload of an ImageEditOrGenerate node.
// OutputImage holds the node's last produced image, or one forwarded from upstream.
type ImageEditData struct {
	Prompt string `json:"prompt,omitempty"`
	Execution
	OutputImage string `json:"outputImage,omitempty"`
}

// ReasoningData is the payload of a ReasoningAnalysis node.
type ReasoningData struct {
	Prompt string `json:"prompt,omitempty"`
	Execution
	AnalysisResult string `json:"analysisResult,omitempty"`
	OutputImage    string `json:"outputImage,omitempty"`
}

// VideoData is the payload of a VideoGenerate node.
type VideoData struct {
	Prompt string `json:"prompt,omitempty"`
	Execution
	VideoURI    string `json:"videoUri,omitempty"`
	OutputImage string `json:"outputImage,omitempty"`
}

// OutputSinkData is the payload of an OutputSink node.
type OutputSinkData struct {
	OutputImage string `json:"outputImage,omitempty"`
	VideoURI    string `json:"videoUri,omitempty"`
}

func (*ImageInputData) Kind() Kind     { return KindImageInput }
func (*PromptTemplateData) Kind() Kind { return KindPromptTemplate }
func (*ImageEditData) Kind() Kind      { return KindImageEditOrGenerate }
func (*ReasoningData) Kind() Kind      { return KindReasoningAnalysis }
func (*VideoData) Kind() Kind          { return KindVideoGenerate }
func (*OutputSinkData) Kind() Kind     { return KindOutputSink }

func (p *ImageInputData) clone() Payload     { c := *p; return &c }
func (p *PromptTemplateData) clone() Payload { c := *p; return &c }
func (p *ImageEditData) clone() Payload      { c := *p; return &c }
func (p *ReasoningData) clone() Payload      { c := *p; return &c }
func (p *VideoData) clone() Payload          { c := *p; return &c }
func (p *OutputSinkData) clone() Payload     { c := *p; return &c }

// NewPayload returns the zero payload for kind, with executable kinds idle.
func NewPayload(kind Kind) (Payload, error) {
	idle := Execution{Status: StatusIdle}
	switch kind {
	case KindImageInput:
		return &ImageInputData{}, nil
	case KindPromptTemplate:
		return &PromptTemplateData{}, nil
	case KindImageEditOrGenerate:
		return &ImageEditData{Execution: idle}, nil
	case KindReasoningAnalysis:
		return &ReasoningData{Execution: idle}, nil
	case KindVideoGenerate:
		return &VideoData{Execution: idle}, nil
	case KindOutputSink:
		return &OutputSinkData{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	if n.Data != nil {
		n.Data = n.Data.clone()
	}
	return n
}

// Status returns the execution status of the node.
// Non-executable kinds always report StatusIdle.
func (n Node) Status() ExecutionStatus {
	if e := execution(n.Data); e != nil && e.Status != "" {
		return e.Status
	}
	return StatusIdle
}

// ErrorMessage returns the message of the last failed run, if any.
func (n Node) ErrorMessage() string {
	if e := execution(n.Data); e != nil {
		return e.ErrorMessage
	}
	return ""
}

// Prompt returns the node's local prompt, if its kind has one.
func (n Node) Prompt() string {
	switch d := n.Data.(type) {
	case *PromptTemplateData:
		return d.Prompt
	case *ImageEditData:
		return d.Prompt
	case *ReasoningData:
		return d.Prompt
	case *VideoData:
		return d.Prompt
	}
	return ""
}

// OutputImage returns the image the node currently exposes, if its kind has one.
func (n Node) OutputImage() string {
	switch d := n.Data.(type) {
	case *ImageEditData:
		return d.OutputImage
	case *ReasoningData:
		return d.OutputImage
	case *VideoData:
		return d.OutputImage
	case *OutputSinkData:
		return d.OutputImage
	}
	return ""
}

func execution(p Payload) *Execution {
	switch d := p.(type) {
	case *ImageEditData:
		return &d.Execution
	case *ReasoningData:
		return &d.Execution
	case *VideoData:
		return &d.Execution
	}
	return nil
}

// Connection is a directed edge from SourceID to TargetID.
type Connection struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}
