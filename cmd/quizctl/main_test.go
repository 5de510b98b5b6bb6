package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate(t *testing.T) {
	path := writeFile(t, "questions.json", `[
  {"topic": "Algebra", "difficulty": "easy", "prompt": "1+1", "options": ["1", "2"], "correctAnswer": 1},
  {"topic": "Geometry", "difficulty": "hard", "prompt": "angles", "options": ["90", "180"], "correctAnswer": 1}
]`)

	out, err := execute(t, "validate", path)
	if err != nil {
		t.Fatalf("validate error = %v, output = %s", err, out)
	}
	if !strings.Contains(out, "2 questions loaded") {
		t.Errorf("output = %q, want question count", out)
	}
}

func TestValidate_Rejections(t *testing.T) {
	path := writeFile(t, "questions.json", `[
  {"topic": "Algebra", "difficulty": "easy", "prompt": "1+1", "options": ["1", "2"], "correctAnswer": 1},
  {"id": "bad-1", "topic": "Astrology", "difficulty": "easy", "prompt": "?", "options": ["a", "b"], "correctAnswer": 0}
]`)

	out, err := execute(t, "validate", path)
	if err == nil {
		t.Fatal("validate should fail when records are rejected")
	}
	if !strings.Contains(out, "bad-1") {
		t.Errorf("output = %q, want rejected id", out)
	}
}

func TestValidate_MissingFile(t *testing.T) {
	if _, err := execute(t, "validate", filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("validate should fail for a missing file")
	}
}

func TestTopics(t *testing.T) {
	out, err := execute(t, "topics")
	if err != nil {
		t.Fatalf("topics error = %v", err)
	}
	if !strings.Contains(out, "unlocks:  Geometry, Calculus, Statistics") {
		t.Errorf("output = %q, want Algebra unlocks", out)
	}
}

func TestTopics_CustomGraph(t *testing.T) {
	graph := writeFile(t, "graph.yaml", `topics:
  - id: Counting
  - id: Addition
    prerequisites: [Counting]
`)

	out, err := execute(t, "topics", "--graph", graph)
	if err != nil {
		t.Fatalf("topics error = %v", err)
	}
	if !strings.Contains(out, "Addition\n  requires: Counting") {
		t.Errorf("output = %q", out)
	}
}

func TestExport_RequiresUser(t *testing.T) {
	if _, err := execute(t, "export"); err == nil {
		t.Error("export should require --user")
	}
}

func TestExport_MemoryStore(t *testing.T) {
	t.Setenv("QUIZ_STORE", "memory")
	out := filepath.Join(t.TempDir(), "u1.xlsx")

	stdout, err := execute(t, "export", "--user", "u1", "--out", out)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(stdout, "exported 0 results") {
		t.Errorf("output = %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}
