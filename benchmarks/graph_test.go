package benchmarks

import (
	"fmt"
	"testing"

	"github.com/orbimatrix/Floworb-AI/pkg/floworb"
)

const benchImage = "data:image/png;base64,YmVuY2g="

func nodeID(n int) string {
	return fmt.Sprintf("node-%d", n)
}

// buildFanIn creates n ImageInput and n PromptTemplate nodes all feeding
// one editor with id "target".
func buildFanIn(b *testing.B, n int) *floworb.Graph {
	b.Helper()
	g := floworb.NewGraph()
	if _, err := g.CreateNode(floworb.NodeSpec{ID: "target", Kind: floworb.KindImageEditOrGenerate}); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < n; i++ {
		img, err := g.CreateNode(floworb.NodeSpec{
			Kind: floworb.KindImageInput,
			Data: &floworb.ImageInputData{ImageData: benchImage},
		})
		if err != nil {
			b.Fatal(err)
		}
		prompt, err := g.CreateNode(floworb.NodeSpec{
			Kind: floworb.KindPromptTemplate,
			Data: &floworb.PromptTemplateData{Prompt: "prompt"},
		})
		if err != nil {
			b.Fatal(err)
		}
		for _, src := range []string{img.ID, prompt.ID} {
			if _, _, err := g.Connect(src, "target"); err != nil {
				b.Fatal(err)
			}
		}
	}
	return g
}

// buildChain creates n editors connected in a line.
func buildChain(b *testing.B, n int) *floworb.Graph {
	b.Helper()
	g := floworb.NewGraph()
	for i := 0; i < n; i++ {
		if _, err := g.CreateNode(floworb.NodeSpec{ID: nodeID(i), Kind: floworb.KindImageEditOrGenerate}); err != nil {
			b.Fatal(err)
		}
		if i > 0 {
			if _, _, err := g.Connect(nodeID(i-1), nodeID(i)); err != nil {
				b.Fatal(err)
			}
		}
	}
	return g
}

// BenchmarkNewGraph measures graph creation overhead.
func BenchmarkNewGraph(b *testing.B) {
	for i := 0; i < b.N; i++ {
		floworb.NewGraph()
	}
}

// BenchmarkCreateNode measures node creation including NodeSpec validation.
func BenchmarkCreateNode(b *testing.B) {
	g := floworb.NewGraph()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = g.CreateNode(floworb.NodeSpec{Kind: floworb.KindImageEditOrGenerate})
	}
}

// BenchmarkStarterGraph measures building the default canvas.
func BenchmarkStarterGraph(b *testing.B) {
	for i := 0; i < b.N; i++ {
		floworb.StarterGraph()
	}
}

// BenchmarkConnect_100 measures connecting a 100-node chain.
func BenchmarkConnect_100(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buildChain(b, 100)
	}
}

// BenchmarkDeleteNode_Cascade measures deleting a node with many edges.
func BenchmarkDeleteNode_Cascade(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		g := buildFanIn(b, 50)
		b.StartTimer()
		_ = g.DeleteNode("target")
	}
}

// BenchmarkGather_10 gathers from 20 upstream nodes.
func BenchmarkGather_10(b *testing.B) {
	g := buildFanIn(b, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = floworb.Gather(g, "target")
	}
}

// BenchmarkGather_100 gathers from 200 upstream nodes.
func BenchmarkGather_100(b *testing.B) {
	g := buildFanIn(b, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = floworb.Gather(g, "target")
	}
}

// BenchmarkSnapshotRestore_100 measures a snapshot round trip of a 100-node chain.
func BenchmarkSnapshotRestore_100(b *testing.B) {
	g := buildChain(b, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = floworb.Restore(g.Snapshot())
	}
}
