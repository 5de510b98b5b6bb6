package curriculum

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Topic identifies a unit of content (e.g., Algebra). The set of valid topics
// is defined by the Graph the catalog is loaded against.
type Topic string

// Topics of the built-in graph.
const (
	Algebra      Topic = "Algebra"
	Geometry     Topic = "Geometry"
	Calculus     Topic = "Calculus"
	Statistics   Topic = "Statistics"
	Trigonometry Topic = "Trigonometry"
)

// Difficulty is a question difficulty level. The zero value means "any".
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// AllDifficulties returns the difficulty levels in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

var fold = cases.Fold()

// ParseDifficulty matches s case-insensitively against the known levels.
// Unknown values are rejected rather than defaulted.
func ParseDifficulty(s string) (Difficulty, error) {
	key := fold.String(strings.TrimSpace(s))
	for _, d := range AllDifficulties() {
		if fold.String(string(d)) == key {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Question is an immutable multiple-choice question.
type Question struct {
	ID            string     `json:"id" yaml:"id"`
	Topic         Topic      `json:"topic" yaml:"topic"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	Prompt        string     `json:"prompt" yaml:"prompt"`
	Options       []string   `json:"options" yaml:"options"`
	CorrectAnswer int        `json:"correctAnswer" yaml:"correctAnswer"`
	ImageName     string     `json:"imageName,omitempty" yaml:"imageName,omitempty"`
}

// IsCorrect reports whether answer selects the correct option.
func (q Question) IsCorrect(answer int) bool {
	return answer == q.CorrectAnswer
}

// TopicNode describes one topic in the unlock graph.
type TopicNode struct {
	ID            Topic   `yaml:"id"`
	Name          string  `yaml:"name"`
	Prerequisites []Topic `yaml:"prerequisites"`
	Unlocks       []Topic `yaml:"unlocks"`
}
