package curriculum_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

const jsonCatalog = `[
  {"id": "alg-1", "topic": "Algebra", "difficulty": "easy", "prompt": "2x = 4, x = ?", "options": ["1", "2", "3", "4"], "correctAnswer": 1},
  {"id": "alg-2", "topic": "algebra", "difficulty": "Medium", "prompt": "x + 3 = 5, x = ?", "options": ["2", "3"], "correctAnswer": 0},
  {"id": "geo-1", "topic": "Geometry", "difficulty": "easy", "prompt": "Angles in a triangle?", "options": ["90", "180", "360"], "correctAnswer": 1}
]`

func TestParseCatalog_JSON(t *testing.T) {
	questions, rejected, err := curriculum.ParseCatalog([]byte(jsonCatalog), curriculum.FormatJSON, curriculum.DefaultGraph())
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if len(rejected) != 0 {
		t.Errorf("rejected = %v, want none", rejected)
	}
	if len(questions) != 3 {
		t.Fatalf("len(questions) = %d, want 3", len(questions))
	}
	if questions[1].Topic != "Algebra" {
		t.Errorf("Topic = %q, want Algebra (case-insensitive match)", questions[1].Topic)
	}
	if questions[1].Difficulty != curriculum.Medium {
		t.Errorf("Difficulty = %q, want medium", questions[1].Difficulty)
	}
}

func TestParseCatalog_YAMLWithQuestionsKey(t *testing.T) {
	doc := `
questions:
  - topic: Calculus
    difficulty: hard
    prompt: "d/dx x^2"
    options: ["x", "2x"]
    correctAnswer: 1
`
	questions, rejected, err := curriculum.ParseCatalog([]byte(doc), curriculum.FormatYAML, curriculum.DefaultGraph())
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if len(rejected) != 0 {
		t.Errorf("rejected = %v, want none", rejected)
	}
	if len(questions) != 1 {
		t.Fatalf("len(questions) = %d, want 1", len(questions))
	}
	if questions[0].ID == "" {
		t.Error("missing id should be generated")
	}
}

func TestParseCatalog_RejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"unknown topic", `{"topic": "Chemistry", "difficulty": "easy", "prompt": "p", "options": ["a", "b"], "correctAnswer": 0}`},
		{"unknown difficulty", `{"topic": "Algebra", "difficulty": "impossible", "prompt": "p", "options": ["a", "b"], "correctAnswer": 0}`},
		{"one option", `{"topic": "Algebra", "difficulty": "easy", "prompt": "p", "options": ["a"], "correctAnswer": 0}`},
		{"answer out of range", `{"topic": "Algebra", "difficulty": "easy", "prompt": "p", "options": ["a", "b"], "correctAnswer": 2}`},
		{"negative answer", `{"topic": "Algebra", "difficulty": "easy", "prompt": "p", "options": ["a", "b"], "correctAnswer": -1}`},
		{"missing prompt", `{"topic": "Algebra", "difficulty": "easy", "options": ["a", "b"], "correctAnswer": 0}`},
		{"fractional answer", `{"topic": "Algebra", "difficulty": "easy", "prompt": "p", "options": ["a", "b"], "correctAnswer": 0.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `[` + tt.record + `, {"topic": "Algebra", "difficulty": "easy", "prompt": "ok", "options": ["a", "b"], "correctAnswer": 0}]`
			questions, rejected, err := curriculum.ParseCatalog([]byte(doc), curriculum.FormatJSON, curriculum.DefaultGraph())
			if err != nil {
				t.Fatalf("ParseCatalog() error = %v", err)
			}
			if len(rejected) != 1 || rejected[0].Index != 0 {
				t.Errorf("rejected = %v, want record 0 rejected", rejected)
			}
			if len(questions) != 1 {
				t.Errorf("len(questions) = %d, want 1 valid record kept", len(questions))
			}
		})
	}
}

func TestParseCatalog_DuplicateIDs(t *testing.T) {
	doc := `[
	  {"id": "q1", "topic": "Algebra", "difficulty": "easy", "prompt": "a", "options": ["a", "b"], "correctAnswer": 0},
	  {"id": "q1", "topic": "Algebra", "difficulty": "easy", "prompt": "b", "options": ["a", "b"], "correctAnswer": 1}
	]`
	questions, rejected, err := curriculum.ParseCatalog([]byte(doc), curriculum.FormatJSON, curriculum.DefaultGraph())
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if len(questions) != 1 || len(rejected) != 1 {
		t.Errorf("got %d questions, %d rejected; want 1 and 1", len(questions), len(rejected))
	}
}

func TestParseCatalog_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format curriculum.Format
	}{
		{"bad json", `[{"topic":`, curriculum.FormatJSON},
		{"not a list", `{"topic": "Algebra"}`, curriculum.FormatJSON},
		{"scalar entries", `[1, 2]`, curriculum.FormatJSON},
		{"bad yaml", "questions: [\n  - : :", curriculum.FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := curriculum.ParseCatalog([]byte(tt.data), tt.format, curriculum.DefaultGraph())
			var cle *curriculum.CatalogLoadError
			if !errors.As(err, &cle) {
				t.Fatalf("error = %v, want *CatalogLoadError", err)
			}
		})
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, _, err := curriculum.LoadCatalog(path, curriculum.DefaultGraph())
	var cle *curriculum.CatalogLoadError
	if !errors.As(err, &cle) {
		t.Fatalf("error = %v, want *CatalogLoadError", err)
	}
	if cle.Path != path {
		t.Errorf("Path = %q, want %q", cle.Path, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("error should wrap os.ErrNotExist")
	}
}

func TestLoadCatalog_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yml")
	os.WriteFile(path, []byte(`
- id: st-1
  topic: Statistics
  difficulty: easy
  prompt: "Mean of 2 and 4?"
  options: ["2", "3", "4"]
  correctAnswer: 1
`), 0o644)

	questions, _, err := curriculum.LoadCatalog(path, curriculum.DefaultGraph())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(questions) != 1 || questions[0].Topic != "Statistics" {
		t.Errorf("questions = %+v, want one Statistics question", questions)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    curriculum.Difficulty
		wantErr bool
	}{
		{"easy", curriculum.Easy, false},
		{"MEDIUM", curriculum.Medium, false},
		{" Hard ", curriculum.Hard, false},
		{"", "", true},
		{"expert", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := curriculum.ParseDifficulty(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDifficulty(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDifficulty(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
