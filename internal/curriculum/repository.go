package curriculum

import (
	"log/slog"
	"slices"
)

// Repository holds the immutable question catalog and answers filter queries.
// It is never modified after construction and is safe for concurrent use.
type Repository struct {
	graph     *Graph
	questions []Question
	byTopic   map[Topic][]int
	rejected  []RecordError
}

// NewRepository creates a repository over an already-loaded question list.
func NewRepository(g *Graph, questions []Question) *Repository {
	r := &Repository{
		graph:     g,
		questions: slices.Clone(questions),
		byTopic:   make(map[Topic][]int),
	}
	for i, q := range r.questions {
		r.byTopic[q.Topic] = append(r.byTopic[q.Topic], i)
	}
	return r
}

// NewRepositoryFromFile loads the catalog at path. When the source is missing or
// malformed the returned repository is empty and usable, and the
// *CatalogLoadError is returned alongside it.
func NewRepositoryFromFile(path string, g *Graph) (*Repository, error) {
	questions, rejected, err := LoadCatalog(path, g)
	if err != nil {
		slog.Warn("catalog unavailable, using empty catalog", "path", path, "error", err)
		return NewRepository(g, nil), err
	}

	r := NewRepository(g, questions)
	r.rejected = rejected
	slog.Info("catalog loaded",
		"path", path,
		"questions", len(questions),
		"rejected", len(rejected),
	)
	return r, nil
}

// Graph returns the topic graph the catalog was validated against.
func (r *Repository) Graph() *Graph {
	return r.graph
}

// QuestionsFor returns the questions for topic in catalog order. An empty
// difficulty matches every level.
func (r *Repository) QuestionsFor(topic Topic, difficulty Difficulty) []Question {
	var out []Question
	for _, i := range r.byTopic[topic] {
		q := r.questions[i]
		if difficulty == "" || q.Difficulty == difficulty {
			out = append(out, q)
		}
	}
	return out
}

// Count returns the number of questions QuestionsFor would return.
func (r *Repository) Count(topic Topic, difficulty Difficulty) int {
	if difficulty == "" {
		return len(r.byTopic[topic])
	}
	n := 0
	for _, i := range r.byTopic[topic] {
		if r.questions[i].Difficulty == difficulty {
			n++
		}
	}
	return n
}

// Topics returns the graph topics that have at least one question.
func (r *Repository) Topics() []Topic {
	var out []Topic
	for _, t := range r.graph.Topics() {
		if len(r.byTopic[t]) > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the total number of questions in the catalog.
func (r *Repository) Len() int {
	return len(r.questions)
}

// Rejected returns the records skipped while loading the catalog.
func (r *Repository) Rejected() []RecordError {
	return slices.Clone(r.rejected)
}
