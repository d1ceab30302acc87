package floworb

import "fmt"

// Snapshot is a serialisable copy of a whole Graph.
type Snapshot struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// Snapshot returns a deep copy of every node and connection in creation order.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Nodes:       g.Nodes(),
		Connections: g.Connections(),
	}
}

// Restore builds a Graph from s. Node contents are kept; execution state is
// reset to idle, so a node saved mid-run comes back runnable.
func Restore(s Snapshot) (*Graph, error) {
	g := NewGraph()
	for _, n := range s.Nodes {
		_, err := g.CreateNode(NodeSpec{
			ID:       n.ID,
			Kind:     n.Kind,
			Label:    n.Label,
			Position: n.Position,
			Data:     n.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("restore node %q: %w", n.ID, err)
		}
	}
	for _, c := range s.Connections {
		if _, _, err := g.ConnectWithID(c.ID, c.SourceID, c.TargetID); err != nil {
			return nil, fmt.Errorf("restore connection %q: %w", c.ID, err)
		}
	}
	return g, nil
}
