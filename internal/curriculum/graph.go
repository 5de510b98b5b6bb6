package curriculum

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Graph is the topic dependency graph. It is built once and never mutated,
// so it is safe for concurrent use.
type Graph struct {
	order []Topic
	nodes map[Topic]TopicNode
	byKey map[string]Topic
}

// DefaultGraph returns the built-in topic graph:
// Algebra unlocks Geometry, Calculus and Statistics; Geometry unlocks Trigonometry.
func DefaultGraph() *Graph {
	g, err := NewGraph([]TopicNode{
		{ID: Algebra, Name: "Algebra"},
		{ID: Geometry, Name: "Geometry", Prerequisites: []Topic{Algebra}},
		{ID: Calculus, Name: "Calculus", Prerequisites: []Topic{Algebra}},
		{ID: Statistics, Name: "Statistics", Prerequisites: []Topic{Algebra}},
		{ID: Trigonometry, Name: "Trigonometry", Prerequisites: []Topic{Geometry}},
	})
	if err != nil {
		panic(err)
	}
	return g
}

// NewGraph builds a graph from nodes. A node without explicit Unlocks gets the
// reverse of every other node's Prerequisites pointing at it.
func NewGraph(nodes []TopicNode) (*Graph, error) {
	g := &Graph{
		nodes: make(map[Topic]TopicNode, len(nodes)),
		byKey: make(map[string]Topic, len(nodes)),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("topic id is required")
		}
		key := fold.String(string(n.ID))
		if _, dup := g.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate topic %q", n.ID)
		}
		if n.Name == "" {
			n.Name = string(n.ID)
		}
		g.byKey[key] = n.ID
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	for _, id := range g.order {
		n := g.nodes[id]
		for _, p := range n.Prerequisites {
			if _, ok := g.nodes[p]; !ok {
				return nil, fmt.Errorf("topic %q: unknown prerequisite %q", id, p)
			}
		}
		for _, u := range n.Unlocks {
			if _, ok := g.nodes[u]; !ok {
				return nil, fmt.Errorf("topic %q: unknown unlock %q", id, u)
			}
		}
	}

	derived := make(map[Topic][]Topic)
	for _, id := range g.order {
		for _, p := range g.nodes[id].Prerequisites {
			derived[p] = append(derived[p], id)
		}
	}
	for _, id := range g.order {
		n := g.nodes[id]
		if len(n.Unlocks) == 0 {
			n.Unlocks = derived[id]
			g.nodes[id] = n
		}
	}

	return g, nil
}

type graphFile struct {
	Topics []TopicNode `yaml:"topics"`
}

// LoadGraph reads a YAML graph file of the form
//
//	topics:
//	  - id: Algebra
//	  - id: Geometry
//	    prerequisites: [Algebra]
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}

	var f graphFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing graph: %w", err)
	}
	if len(f.Topics) == 0 {
		return nil, fmt.Errorf("graph %s has no topics", path)
	}

	g, err := NewGraph(f.Topics)
	if err != nil {
		return nil, err
	}
	slog.Info("topic graph loaded", "path", path, "topics", len(g.order))
	return g, nil
}

// Topics returns every topic in declaration order.
func (g *Graph) Topics() []Topic {
	return slices.Clone(g.order)
}

// Has reports whether t is part of the graph.
func (g *Graph) Has(t Topic) bool {
	_, ok := g.nodes[t]
	return ok
}

// ParseTopic resolves s to a topic, ignoring case. Unknown names are rejected.
func (g *Graph) ParseTopic(s string) (Topic, error) {
	t, ok := g.byKey[fold.String(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown topic %q", s)
	}
	return t, nil
}

// Name returns the display name of t.
func (g *Graph) Name(t Topic) string {
	if n, ok := g.nodes[t]; ok {
		return n.Name
	}
	return string(t)
}

// Prerequisites returns the topics that must be completed before t.
func (g *Graph) Prerequisites(t Topic) []Topic {
	return slices.Clone(g.nodes[t].Prerequisites)
}

// Unlocks returns the topics t enables.
func (g *Graph) Unlocks(t Topic) []Topic {
	return slices.Clone(g.nodes[t].Unlocks)
}

// IsUnlocked reports whether every prerequisite of t is in completed.
func (g *Graph) IsUnlocked(t Topic, completed map[Topic]bool) bool {
	n, ok := g.nodes[t]
	if !ok {
		return false
	}
	for _, p := range n.Prerequisites {
		if !completed[p] {
			return false
		}
	}
	return true
}

// Roots returns the topics with no prerequisites.
func (g *Graph) Roots() []Topic {
	var roots []Topic
	for _, id := range g.order {
		if len(g.nodes[id].Prerequisites) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}
