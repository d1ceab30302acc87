package floworb

// Patch is a partial update of a node. Nil fields are left unchanged.
// Fields that the node's kind does not carry are ignored.
type Patch struct {
	Label    *string
	Position *Position

	ImageName      *string
	ImageData      *string
	Prompt         *string
	Status         *ExecutionStatus
	ErrorMessage   *string
	AnalysisResult *string
	OutputImage    *string
	VideoURI       *string
}

// Ptr returns a pointer to v. It keeps Patch literals short.
func Ptr[T any](v T) *T {
	return &v
}

// IsEmpty reports whether the patch sets no field.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// apply merges p into n in place.
func (p Patch) apply(n *Node) {
	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.Position != nil {
		n.Position = *p.Position
	}

	if e := execution(n.Data); e != nil {
		setIf(&e.Status, p.Status)
		setIf(&e.ErrorMessage, p.ErrorMessage)
	}

	switch d := n.Data.(type) {
	case *ImageInputData:
		setIf(&d.ImageName, p.ImageName)
		setIf(&d.ImageData, p.ImageData)
	case *PromptTemplateData:
		setIf(&d.Prompt, p.Prompt)
	case *ImageEditData:
		setIf(&d.Prompt, p.Prompt)
		setIf(&d.OutputImage, p.OutputImage)
	case *ReasoningData:
		setIf(&d.Prompt, p.Prompt)
		setIf(&d.AnalysisResult, p.AnalysisResult)
		setIf(&d.OutputImage, p.OutputImage)
	case *VideoData:
		setIf(&d.Prompt, p.Prompt)
		setIf(&d.VideoURI, p.VideoURI)
		setIf(&d.OutputImage, p.OutputImage)
	case *OutputSinkData:
		setIf(&d.OutputImage, p.OutputImage)
		setIf(&d.VideoURI, p.VideoURI)
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
