package floworb

// Inputs is what a node receives from its own prompt and its direct upstream nodes.
type Inputs struct {
	// Images are image contributions in incoming-edge creation order:
	// ImageInput image data and ImageEditOrGenerate output images.
	Images []string `json:"images"`

	// Prompts are text contributions: the node's own prompt first, then
	// PromptTemplate prompts and ReasoningAnalysis results in edge order.
	Prompts []string `json:"prompts"`

	// MissingUpstream lists ReasoningAnalysis sources that have no result yet.
	MissingUpstream []string `json:"missingUpstream,omitempty"`

	// FirstImage is the first image exposed by any source, scanning edges in
	// creation order. A source exposes an image through its image data or
	// its output image.
	FirstImage string `json:"firstImage,omitempty"`
}

// Empty reports whether there is neither an image nor a prompt.
func (in Inputs) Empty() bool {
	return len(in.Images) == 0 && len(in.Prompts) == 0
}

// Gather collects the inputs of nodeID. It only reads from s.
func Gather(s Store, nodeID string) (Inputs, error) {
	target, err := s.Node(nodeID)
	if err != nil {
		return Inputs{}, err
	}

	var in Inputs
	if p := target.Prompt(); p != "" && target.Kind != KindPromptTemplate {
		in.Prompts = append(in.Prompts, p)
	}

	for _, edge := range s.IncomingEdges(nodeID) {
		src, err := s.Node(edge.SourceID)
		if err != nil {
			// Removed between listing edges and reading the source.
			continue
		}

		if in.FirstImage == "" {
			in.FirstImage = exposedImage(src)
		}

		switch d := src.Data.(type) {
		case *ImageInputData:
			if d.ImageData != "" {
				in.Images = append(in.Images, d.ImageData)
			}
		case *ImageEditData:
			if d.OutputImage != "" {
				in.Images = append(in.Images, d.OutputImage)
			}
		case *ReasoningData:
			if d.AnalysisResult != "" {
				in.Prompts = append(in.Prompts, d.AnalysisResult)
			} else {
				in.MissingUpstream = append(in.MissingUpstream, src.ID)
			}
		case *PromptTemplateData:
			if d.Prompt != "" {
				in.Prompts = append(in.Prompts, d.Prompt)
			}
		}
	}
	return in, nil
}

func exposedImage(n Node) string {
	if d, ok := n.Data.(*ImageInputData); ok {
		return d.ImageData
	}
	return n.OutputImage()
}
