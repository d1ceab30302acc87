package floworb

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Store is the read and patch access the Engine needs from a graph.
// Graph implements it.
type Store interface {
	// Node returns a copy of the node, or ErrNodeNotFound.
	Node(id string) (Node, error)

	// IncomingEdges returns connections targeting nodeID in creation order.
	IncomingEdges(nodeID string) []Connection

	// OutgoingEdges returns connections leaving nodeID in creation order.
	OutgoingEdges(nodeID string) []Connection

	// PatchNode merges p into the node in a single mutation.
	PatchNode(id string, p Patch) error
}

// NodeSpec describes a node to create.
type NodeSpec struct {
	// ID is optional; a fresh id is assigned when empty.
	ID string `validate:"omitempty,max=128"`
	// Kind is required.
	Kind Kind `validate:"required,oneof=ImageInput PromptTemplate ImageEditOrGenerate ReasoningAnalysis VideoGenerate OutputSink"`
	// Label is display text.
	Label string `validate:"max=200"`
	// Position is the canvas coordinate.
	Position Position
	// Data is the initial payload. Nil means the kind's zero payload.
	Data Payload
}

// Graph is the authoritative, concurrency-safe holder of nodes and connections.
//
// Nodes and connections are kept in creation order, and every enumeration
// (Nodes, Connections, IncomingEdges, OutgoingEdges) follows that order.
// The Graph enforces these invariants:
//   - node and connection ids are unique
//   - a connection never joins a node to itself
//   - at most one connection exists per (source, target) pair
//   - deleting a node deletes every connection that references it
//
// Example:
//
//	g := floworb.NewGraph()
//	src, _ := g.CreateNode(floworb.NodeSpec{Kind: floworb.KindImageInput})
//	edit, _ := g.CreateNode(floworb.NodeSpec{Kind: floworb.KindImageEditOrGenerate})
//	_, _, err := g.Connect(src.ID, edit.ID)
type Graph struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	order    []string
	conns    []Connection
	validate *validator.Validate
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateNode adds a node and returns a copy of it.
// Executable nodes start idle.
func (g *Graph) CreateNode(spec NodeSpec) (Node, error) {
	if err := g.validate.Struct(spec); err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if strings.ContainsAny(spec.ID, " \t\n\r") {
		return Node{}, fmt.Errorf("%w: id %q contains whitespace", ErrInvalidNode, spec.ID)
	}

	data := spec.Data
	if data == nil {
		var err error
		if data, err = NewPayload(spec.Kind); err != nil {
			return Node{}, err
		}
	} else {
		if data.Kind() != spec.Kind {
			return Node{}, fmt.Errorf("%w: payload for %s given to %s node", ErrInvalidNode, data.Kind(), spec.Kind)
		}
		data = data.clone()
		if e := execution(data); e != nil {
			*e = Execution{Status: StatusIdle}
		}
	}

	id := spec.ID
	if id == "" {
		id = "node-" + uuid.NewString()
	}

	node := &Node{
		ID:       id,
		Kind:     spec.Kind,
		Label:    spec.Label,
		Position: spec.Position,
		Data:     data,
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		return Node{}, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	g.nodes[id] = node
	g.order = append(g.order, id)

	return node.Clone(), nil
}

// DeleteNode removes the node and every connection touching it.
func (g *Graph) DeleteNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	delete(g.nodes, id)

	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	kept := g.conns[:0]
	for _, c := range g.conns {
		if c.SourceID != id && c.TargetID != id {
			kept = append(kept, c)
		}
	}
	g.conns = kept
	return nil
}

// Connect links sourceID to targetID with a fresh connection id.
// If the pair is already connected, the existing connection is returned
// with created == false.
func (g *Graph) Connect(sourceID, targetID string) (conn Connection, created bool, err error) {
	return g.ConnectWithID("", sourceID, targetID)
}

// ConnectWithID is Connect with a caller-chosen connection id.
// An empty id means a fresh one.
func (g *Graph) ConnectWithID(id, sourceID, targetID string) (Connection, bool, error) {
	if sourceID == targetID {
		return Connection{}, false, fmt.Errorf("%w: %s", ErrSelfLoop, sourceID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[sourceID]; !ok {
		return Connection{}, false, fmt.Errorf("%w: source %s", ErrNodeNotFound, sourceID)
	}
	if _, ok := g.nodes[targetID]; !ok {
		return Connection{}, false, fmt.Errorf("%w: target %s", ErrNodeNotFound, targetID)
	}

	for _, c := range g.conns {
		if c.SourceID == sourceID && c.TargetID == targetID {
			return c, false, nil
		}
	}

	if id == "" {
		id = "conn-" + uuid.NewString()
	} else {
		for _, c := range g.conns {
			if c.ID == id {
				return Connection{}, false, fmt.Errorf("%w: %s", ErrDuplicateConnection, id)
			}
		}
	}

	conn := Connection{ID: id, SourceID: sourceID, TargetID: targetID}
	g.conns = append(g.conns, conn)
	return conn, true, nil
}

// Disconnect removes a connection by id.
func (g *Graph) Disconnect(connectionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, c := range g.conns {
		if c.ID == connectionID {
			g.conns = append(g.conns[:i], g.conns[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrConnectionNotFound, connectionID)
}

// Node implements Store.
func (g *Graph) Node(id string) (Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n.Clone(), nil
}

// Nodes returns copies of all nodes in creation order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Clone())
	}
	return out
}

// Connections returns all connections in creation order.
func (g *Graph) Connections() []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Connection, len(g.conns))
	copy(out, g.conns)
	return out
}

// Connection returns the connection with the given id.
func (g *Graph) Connection(id string) (Connection, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, c := range g.conns {
		if c.ID == id {
			return c, nil
		}
	}
	return Connection{}, fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
}

// IncomingEdges implements Store.
func (g *Graph) IncomingEdges(nodeID string) []Connection {
	return g.edges(func(c Connection) bool { return c.TargetID == nodeID })
}

// OutgoingEdges implements Store.
func (g *Graph) OutgoingEdges(nodeID string) []Connection {
	return g.edges(func(c Connection) bool { return c.SourceID == nodeID })
}

func (g *Graph) edges(match func(Connection) bool) []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Connection
	for _, c := range g.conns {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

// PatchNode implements Store.
func (g *Graph) PatchNode(id string, p Patch) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	p.apply(n)
	return nil
}

// UpdateNode applies a user edit and returns the updated node.
// Execution fields are owned by the Engine and are stripped from p.
func (g *Graph) UpdateNode(id string, p Patch) (Node, error) {
	p.Status = nil
	p.ErrorMessage = nil

	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	p.apply(n)
	return n.Clone(), nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

var _ Store = (*Graph)(nil)
