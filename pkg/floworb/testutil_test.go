package floworb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb/generation"
)

const (
	img1 = "data:image/png;base64,aW1nMQ=="
	img2 = "data:image/png;base64,aW1nMg=="
)

func testCtx() context.Context {
	return context.Background()
}

func addNode(t *testing.T, g *Graph, id string, kind Kind, data Payload) Node {
	t.Helper()
	n, err := g.CreateNode(NodeSpec{ID: id, Kind: kind, Data: data})
	require.NoError(t, err)
	return n
}

func addImageInput(t *testing.T, g *Graph, id, image string) Node {
	t.Helper()
	return addNode(t, g, id, KindImageInput, &ImageInputData{ImageData: image})
}

func addPrompt(t *testing.T, g *Graph, id, prompt string) Node {
	t.Helper()
	return addNode(t, g, id, KindPromptTemplate, &PromptTemplateData{Prompt: prompt})
}

func addEditor(t *testing.T, g *Graph, id, prompt string) Node {
	t.Helper()
	return addNode(t, g, id, KindImageEditOrGenerate, &ImageEditData{Prompt: prompt})
}

func addReasoner(t *testing.T, g *Graph, id, prompt string) Node {
	t.Helper()
	return addNode(t, g, id, KindReasoningAnalysis, &ReasoningData{Prompt: prompt})
}

func addSink(t *testing.T, g *Graph, id string) Node {
	t.Helper()
	return addNode(t, g, id, KindOutputSink, nil)
}

func connect(t *testing.T, g *Graph, src, tgt string) Connection {
	t.Helper()
	c, created, err := g.Connect(src, tgt)
	require.NoError(t, err)
	require.True(t, created)
	return c
}

func getNode(t *testing.T, g *Graph, id string) Node {
	t.Helper()
	n, err := g.Node(id)
	require.NoError(t, err)
	return n
}

// pipeline builds A (ImageInput img1) -> B (editor "make it blue") -> C (sink).
func pipeline(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	addImageInput(t, g, "A", img1)
	addEditor(t, g, "B", "make it blue")
	addSink(t, g, "C")
	connect(t, g, "A", "B")
	connect(t, g, "B", "C")
	return g
}

func newMock() *generation.MockService {
	return generation.NewMockService(img2)
}
