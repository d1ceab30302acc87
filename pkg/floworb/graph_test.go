package floworb

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateNode_Defaults tests generated ids and idle execution state.
func TestCreateNode_Defaults(t *testing.T) {
	g := NewGraph()

	n, err := g.CreateNode(NodeSpec{Kind: KindImageEditOrGenerate})
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, StatusIdle, n.Status())
	assert.IsType(t, &ImageEditData{}, n.Data)
	assert.Equal(t, 1, g.Len())
}

// TestCreateNode_ResetsExecution tests that callers cannot seed execution state.
func TestCreateNode_ResetsExecution(t *testing.T) {
	g := NewGraph()
	data := &ReasoningData{
		Prompt:         "describe",
		Execution:      Execution{Status: StatusSuccess, ErrorMessage: "old"},
		AnalysisResult: "kept",
	}

	n, err := g.CreateNode(NodeSpec{ID: "r", Kind: KindReasoningAnalysis, Data: data})
	require.NoError(t, err)

	assert.Equal(t, StatusIdle, n.Status())
	assert.Empty(t, n.ErrorMessage())
	assert.Equal(t, "kept", n.Data.(*ReasoningData).AnalysisResult)
	assert.Equal(t, StatusSuccess, data.Status, "caller's payload must not be mutated")
}

// TestCreateNode_Invalid tests NodeSpec validation failures.
func TestCreateNode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec NodeSpec
		want error
	}{
		{"missing kind", NodeSpec{ID: "x"}, ErrInvalidNode},
		{"unknown kind", NodeSpec{Kind: "Upscaler"}, ErrInvalidNode},
		{"whitespace id", NodeSpec{ID: "a b", Kind: KindOutputSink}, ErrInvalidNode},
		{"payload mismatch", NodeSpec{Kind: KindOutputSink, Data: &PromptTemplateData{}}, ErrInvalidNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph().CreateNode(tt.spec)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestCreateNode_DuplicateID tests that ids are unique.
func TestCreateNode_DuplicateID(t *testing.T) {
	g := NewGraph()
	addSink(t, g, "out")

	_, err := g.CreateNode(NodeSpec{ID: "out", Kind: KindOutputSink})
	assert.ErrorIs(t, err, ErrDuplicateNode)
	assert.Equal(t, 1, g.Len())
}

// TestNode_ReturnsCopy tests that mutating a returned node leaves the graph untouched.
func TestNode_ReturnsCopy(t *testing.T) {
	g := NewGraph()
	addEditor(t, g, "e", "original")

	n := getNode(t, g, "e")
	n.Data.(*ImageEditData).Prompt = "changed"

	assert.Equal(t, "original", getNode(t, g, "e").Prompt())
}

// TestConnect_NoDuplicateEdge tests that a pair is connected at most once.
func TestConnect_NoDuplicateEdge(t *testing.T) {
	g := NewGraph()
	addImageInput(t, g, "a", img1)
	addEditor(t, g, "b", "")

	first := connect(t, g, "a", "b")
	again, created, err := g.Connect("a", "b")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, again)
	assert.Len(t, g.Connections(), 1)
}

// TestConnect_Rejections tests self-loops, unknown endpoints and id clashes.
func TestConnect_Rejections(t *testing.T) {
	g := NewGraph()
	addImageInput(t, g, "a", img1)
	addEditor(t, g, "b", "")
	addSink(t, g, "c")
	_, _, err := g.ConnectWithID("e1", "a", "b")
	require.NoError(t, err)

	_, _, err = g.Connect("a", "a")
	assert.ErrorIs(t, err, ErrSelfLoop)

	_, _, err = g.Connect("a", "ghost")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, _, err = g.Connect("ghost", "a")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, _, err = g.ConnectWithID("e1", "b", "c")
	assert.ErrorIs(t, err, ErrDuplicateConnection)

	assert.Len(t, g.Connections(), 1)
}

// TestDisconnect tests edge removal and unknown ids.
func TestDisconnect(t *testing.T) {
	g := pipeline(t)
	edges := g.OutgoingEdges("A")
	require.Len(t, edges, 1)

	require.NoError(t, g.Disconnect(edges[0].ID))
	assert.Empty(t, g.IncomingEdges("B"))

	err := g.Disconnect(edges[0].ID)
	assert.ErrorIs(t, err, ErrConnectionNotFound)

	_, err = g.Connection(edges[0].ID)
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

// TestDeleteNode_CascadesEdges tests that no edge references a deleted node.
func TestDeleteNode_CascadesEdges(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"a", "b", "c", "d"} {
		addEditor(t, g, id, "p")
	}
	connect(t, g, "a", "b")
	connect(t, g, "b", "c")
	connect(t, g, "d", "b")
	connect(t, g, "a", "c")

	require.NoError(t, g.DeleteNode("b"))

	for _, c := range g.Connections() {
		assert.NotEqual(t, "b", c.SourceID)
		assert.NotEqual(t, "b", c.TargetID)
		_, err := g.Node(c.SourceID)
		assert.NoError(t, err)
		_, err = g.Node(c.TargetID)
		assert.NoError(t, err)
	}
	assert.Len(t, g.Connections(), 1)
	assert.Equal(t, 3, g.Len())

	assert.ErrorIs(t, g.DeleteNode("b"), ErrNodeNotFound)
}

// TestEdges_CreationOrder tests that edge listings follow creation order.
func TestEdges_CreationOrder(t *testing.T) {
	g := NewGraph()
	addEditor(t, g, "target", "")
	for i := 0; i < 5; i++ {
		addPrompt(t, g, fmt.Sprintf("p%d", i), fmt.Sprintf("prompt %d", i))
	}
	for _, i := range []int{3, 0, 4, 1, 2} {
		connect(t, g, fmt.Sprintf("p%d", i), "target")
	}

	var sources []string
	for _, e := range g.IncomingEdges("target") {
		sources = append(sources, e.SourceID)
	}
	assert.Equal(t, []string{"p3", "p0", "p4", "p1", "p2"}, sources)
}

// TestNodes_CreationOrder tests node listing order survives deletes.
func TestNodes_CreationOrder(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"x", "y", "z"} {
		addSink(t, g, id)
	}
	require.NoError(t, g.DeleteNode("y"))
	addSink(t, g, "y")

	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"x", "z", "y"}, ids)
}

// TestPatchNode tests merging and kind-irrelevant fields.
func TestPatchNode(t *testing.T) {
	g := NewGraph()
	addImageInput(t, g, "in", "")

	require.NoError(t, g.PatchNode("in", Patch{
		ImageData: Ptr(img1),
		ImageName: Ptr("cat.png"),
		Prompt:    Ptr("ignored"),
		Status:    Ptr(StatusSuccess),
	}))

	n := getNode(t, g, "in")
	d := n.Data.(*ImageInputData)
	assert.Equal(t, img1, d.ImageData)
	assert.Equal(t, "cat.png", d.ImageName)
	assert.Empty(t, n.Prompt())
	assert.Equal(t, StatusIdle, n.Status())

	assert.ErrorIs(t, g.PatchNode("ghost", Patch{}), ErrNodeNotFound)
}

// TestUpdateNode_StripsExecution tests that user edits cannot set execution state.
func TestUpdateNode_StripsExecution(t *testing.T) {
	g := NewGraph()
	addEditor(t, g, "e", "")

	n, err := g.UpdateNode("e", Patch{
		Label:        Ptr("Renamed"),
		Position:     &Position{X: 1, Y: 2},
		Prompt:       Ptr("new prompt"),
		Status:       Ptr(StatusSuccess),
		ErrorMessage: Ptr("nope"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", n.Label)
	assert.Equal(t, Position{X: 1, Y: 2}, n.Position)
	assert.Equal(t, "new prompt", n.Prompt())
	assert.Equal(t, StatusIdle, n.Status())
	assert.Empty(t, n.ErrorMessage())
}

// TestGraph_ConcurrentAccess tests the graph under concurrent mutation.
func TestGraph_ConcurrentAccess(t *testing.T) {
	g := NewGraph()
	addEditor(t, g, "hub", "")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("n%d", i)
			if _, err := g.CreateNode(NodeSpec{ID: id, Kind: KindPromptTemplate}); err != nil {
				t.Error(err)
				return
			}
			if _, _, err := g.Connect(id, "hub"); err != nil {
				t.Error(err)
			}
			_ = g.PatchNode(id, Patch{Prompt: Ptr(id)})
			_, _ = Gather(g, "hub")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 21, g.Len())
	assert.Len(t, g.IncomingEdges("hub"), 20)
}

// TestStarterGraph tests the default canvas.
func TestStarterGraph(t *testing.T) {
	g := StarterGraph()

	nodes := g.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, "node-1", nodes[0].ID)
	assert.Equal(t, KindImageInput, nodes[0].Kind)
	assert.Equal(t, KindImageEditOrGenerate, nodes[1].Kind)
	assert.Equal(t, KindOutputSink, nodes[2].Kind)
	assert.Equal(t, Position{X: 400, Y: 100}, nodes[1].Position)

	conns := g.Connections()
	require.Len(t, conns, 2)
	assert.Equal(t, Connection{ID: "c1", SourceID: "node-1", TargetID: "node-2"}, conns[0])
	assert.Equal(t, Connection{ID: "c2", SourceID: "node-2", TargetID: "node-3"}, conns[1])
}

// TestSnapshot_RoundTrip tests that Restore rebuilds an equivalent graph.
func TestSnapshot_RoundTrip(t *testing.T) {
	g := pipeline(t)
	require.NoError(t, g.PatchNode("B", Patch{Status: Ptr(StatusProcessing), OutputImage: Ptr(img2)}))

	restored, err := Restore(g.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, g.Connections(), restored.Connections())
	b := getNode(t, restored, "B")
	assert.Equal(t, img2, b.OutputImage())
	assert.Equal(t, StatusIdle, b.Status())
}

// TestRestore_DanglingConnection tests that a snapshot edge must reference known nodes.
func TestRestore_DanglingConnection(t *testing.T) {
	s := Snapshot{
		Nodes:       []Node{{ID: "a", Kind: KindOutputSink, Data: &OutputSinkData{}}},
		Connections: []Connection{{ID: "c", SourceID: "a", TargetID: "b"}},
	}

	_, err := Restore(s)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
