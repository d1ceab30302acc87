package floworb

// StarterGraph returns the workflow a new canvas opens with:
// a source image feeding an image editor feeding a result preview.
//
//	node-1 (ImageInput) --c1--> node-2 (ImageEditOrGenerate) --c2--> node-3 (OutputSink)
func StarterGraph() *Graph {
	g := NewGraph()

	specs := []NodeSpec{
		{ID: "node-1", Kind: KindImageInput, Label: "Source Image", Position: Position{X: 50, Y: 150}},
		{ID: "node-2", Kind: KindImageEditOrGenerate, Label: "Nano Editor", Position: Position{X: 400, Y: 100}},
		{ID: "node-3", Kind: KindOutputSink, Label: "Final Result", Position: Position{X: 800, Y: 150}},
	}
	for _, spec := range specs {
		if _, err := g.CreateNode(spec); err != nil {
			panic("floworb: starter graph: " + err.Error())
		}
	}

	edges := [][3]string{
		{"c1", "node-1", "node-2"},
		{"c2", "node-2", "node-3"},
	}
	for _, e := range edges {
		if _, _, err := g.ConnectWithID(e[0], e[1], e[2]); err != nil {
			panic("floworb: starter graph: " + err.Error())
		}
	}
	return g
}

// DefaultLabel returns the label a freshly added node of kind gets.
func DefaultLabel(kind Kind) string {
	switch kind {
	case KindImageInput:
		return "Source Image"
	case KindPromptTemplate:
		return "Prompt"
	case KindImageEditOrGenerate:
		return "Nano Editor"
	case KindReasoningAnalysis:
		return "Gemini Pro"
	case KindVideoGenerate:
		return "Veo Video"
	case KindOutputSink:
		return "Preview"
	default:
		return string(kind)
	}
}
