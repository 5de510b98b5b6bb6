package curriculum

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema/question.schema.json
var questionSchemaJSON string

var questionSchema = mustSchema(questionSchemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("compiling question schema: %v", err))
	}
	return schema
}

// Format is the encoding of a catalog source.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// CatalogLoadError reports a catalog source that is missing or malformed as a whole.
type CatalogLoadError struct {
	Path string
	Err  error
}

func (e *CatalogLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load catalog: %v", e.Err)
	}
	return fmt.Sprintf("load catalog %s: %v", e.Path, e.Err)
}

func (e *CatalogLoadError) Unwrap() error { return e.Err }

// RecordError describes a single catalog record that was rejected.
type RecordError struct {
	Index  int
	ID     string
	Reason string
}

func (e RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (%s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

type questionRecord struct {
	ID            string   `json:"id"`
	Topic         string   `json:"topic"`
	Difficulty    string   `json:"difficulty"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	ImageName     string   `json:"imageName"`
}

// LoadCatalog reads questions from path. A missing or unparsable file yields a
// *CatalogLoadError. Individual records that fail validation are skipped and
// reported in the returned slice.
func LoadCatalog(path string, g *Graph) ([]Question, []RecordError, error) {
	if path == "" {
		return nil, nil, &CatalogLoadError{Err: fmt.Errorf("no catalog path configured")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &CatalogLoadError{Path: path, Err: err}
	}

	questions, rejected, err := ParseCatalog(data, FormatFromPath(path), g)
	if err != nil {
		var cle *CatalogLoadError
		if errors.As(err, &cle) {
			cle.Path = path
		}
		return nil, nil, err
	}
	return questions, rejected, nil
}

// ParseCatalog decodes a catalog document. The document is either a list of
// question records or an object with a "questions" list.
func ParseCatalog(data []byte, format Format, g *Graph) ([]Question, []RecordError, error) {
	records, err := decodeRecords(data, format)
	if err != nil {
		return nil, nil, &CatalogLoadError{Err: err}
	}

	var (
		questions []Question
		rejected  []RecordError
		seen      = make(map[string]bool, len(records))
	)
	for i, raw := range records {
		q, reason := buildQuestion(raw, g)
		if reason == "" && seen[q.ID] {
			reason = "duplicate id"
		}
		if reason != "" {
			re := RecordError{Index: i, ID: q.ID, Reason: reason}
			slog.Warn("rejecting catalog record", "index", i, "id", q.ID, "reason", reason)
			rejected = append(rejected, re)
			continue
		}
		seen[q.ID] = true
		questions = append(questions, q)
	}
	return questions, rejected, nil
}

func decodeRecords(data []byte, format Format) ([]map[string]any, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}

	if obj, ok := doc.(map[string]any); ok {
		doc = obj["questions"]
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("catalog must be a list of questions")
	}

	records := make([]map[string]any, 0, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
		records = append(records, rec)
	}
	return records, nil
}

// buildQuestion validates one record. It returns a non-empty reason when the
// record must be rejected.
func buildQuestion(raw map[string]any, g *Graph) (Question, string) {
	id, _ := raw["id"].(string)

	res, err := questionSchema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return Question{ID: id}, err.Error()
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Question{ID: id}, strings.Join(msgs, "; ")
	}

	// The schema guarantees the shape, so a JSON round trip into the typed record is safe.
	b, err := json.Marshal(raw)
	if err != nil {
		return Question{ID: id}, err.Error()
	}
	var rec questionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return Question{ID: id}, err.Error()
	}

	topic, err := g.ParseTopic(rec.Topic)
	if err != nil {
		return Question{ID: id}, err.Error()
	}
	difficulty, err := ParseDifficulty(rec.Difficulty)
	if err != nil {
		return Question{ID: id}, err.Error()
	}
	if rec.CorrectAnswer >= len(rec.Options) {
		return Question{ID: id}, fmt.Sprintf("correctAnswer %d out of range for %d options", rec.CorrectAnswer, len(rec.Options))
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return Question{
		ID:            rec.ID,
		Topic:         topic,
		Difficulty:    difficulty,
		Prompt:        rec.Prompt,
		Options:       rec.Options,
		CorrectAnswer: rec.CorrectAnswer,
		ImageName:     rec.ImageName,
	}, ""
}
