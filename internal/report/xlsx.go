// Package report renders a user's quiz results as an Excel workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

const (
	ResultsSheet = "Results"
	SummarySheet = "Summary"
)

var resultsHeader = []any{
	"Completed At", "Topic", "Difficulty", "Score", "Total", "Percentage", "Outcome", "Elapsed (s)", "Result ID",
}

var summaryHeader = []any{
	"Topic", "Attempts", "Passed", "Best %", "Average %",
}

// WriteResults writes a workbook with one row per result and a per-topic
// summary. Topics are listed in graph order; g may be nil.
func WriteResults(w io.Writer, results []quiz.Result, g *curriculum.Graph) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, ResultsSheet, 1, resultsHeader); err != nil {
		return err
	}
	for i, r := range results {
		row := []any{
			r.CompletedAt.UTC().Format(time.RFC3339),
			topicName(g, r.Topic),
			string(r.Difficulty),
			r.Score,
			r.TotalQuestions,
			r.Percentage(),
			passLabel(r.Passed),
			int(r.Elapsed.Seconds()),
			r.ID,
		}
		if err := writeRow(f, ResultsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, SummarySheet, 1, summaryHeader); err != nil {
		return err
	}
	for i, s := range summarize(results, g) {
		row := []any{topicName(g, s.topic), s.attempts, s.passed, s.best, s.average()}
		if err := writeRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}

	for sheet, cols := range map[string]int{ResultsSheet: len(resultsHeader), SummarySheet: len(summaryHeader)} {
		last, _ := excelize.ColumnNumberToName(cols)
		if err := f.SetCellStyle(sheet, "A1", last+"1", bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

type topicSummary struct {
	topic    curriculum.Topic
	attempts int
	passed   int
	best     int
	sum      int
}

func (s topicSummary) average() int {
	if s.attempts == 0 {
		return 0
	}
	return s.sum / s.attempts
}

func summarize(results []quiz.Result, g *curriculum.Graph) []topicSummary {
	byTopic := make(map[curriculum.Topic]*topicSummary)
	var seen []curriculum.Topic
	for _, r := range results {
		s, ok := byTopic[r.Topic]
		if !ok {
			s = &topicSummary{topic: r.Topic}
			byTopic[r.Topic] = s
			seen = append(seen, r.Topic)
		}
		p := r.Percentage()
		s.attempts++
		s.sum += p
		s.best = max(s.best, p)
		if r.Passed {
			s.passed++
		}
	}

	var order []curriculum.Topic
	if g != nil {
		for _, t := range g.Topics() {
			if _, ok := byTopic[t]; ok {
				order = append(order, t)
			}
		}
	}
	for _, t := range seen {
		if g == nil || !g.Has(t) {
			order = append(order, t)
		}
	}

	out := make([]topicSummary, 0, len(order))
	for _, t := range order {
		out = append(out, *byTopic[t])
	}
	return out
}

func passLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

func topicName(g *curriculum.Graph, t curriculum.Topic) string {
	if g == nil {
		return string(t)
	}
	return g.Name(t)
}
