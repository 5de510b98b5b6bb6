package quiz_test

import (
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

func TestPassPolicy_RequiredScore(t *testing.T) {
	tests := []struct {
		name   string
		policy quiz.PassPolicy
		total  int
		want   int
	}{
		{"strict", quiz.PassPolicy{Mode: quiz.PassStrict}, 5, 5},
		{"threshold 10", quiz.DefaultPassPolicy(), 10, 7},
		{"threshold 3", quiz.DefaultPassPolicy(), 3, 3},
		{"threshold 4", quiz.DefaultPassPolicy(), 4, 3},
		{"threshold 1", quiz.DefaultPassPolicy(), 1, 1},
		{"custom ratio", quiz.PassPolicy{Mode: quiz.PassThreshold, Ratio: 0.5}, 5, 3},
		{"zero ratio uses default", quiz.PassPolicy{Mode: quiz.PassThreshold}, 10, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.RequiredScore(tt.total); got != tt.want {
				t.Errorf("RequiredScore(%d) = %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}

func TestPassPolicy_Passed(t *testing.T) {
	strict := quiz.PassPolicy{Mode: quiz.PassStrict}
	threshold := quiz.DefaultPassPolicy()

	if strict.Passed(9, 10) {
		t.Error("strict policy should fail 9/10")
	}
	if !strict.Passed(10, 10) {
		t.Error("strict policy should pass 10/10")
	}
	if !threshold.Passed(7, 10) {
		t.Error("threshold policy should pass 7/10")
	}
	if threshold.Passed(6, 10) {
		t.Error("threshold policy should fail 6/10")
	}
	if threshold.Passed(2, 3) {
		t.Error("threshold policy should fail 2/3 (needs ceil(2.1) = 3)")
	}
	if threshold.Passed(0, 0) {
		t.Error("empty quiz should never pass")
	}
}

func TestParsePassMode(t *testing.T) {
	tests := []struct {
		in      string
		want    quiz.PassMode
		wantErr bool
	}{
		{"strict", quiz.PassStrict, false},
		{"THRESHOLD", quiz.PassThreshold, false},
		{"lenient", "", true},
	}

	for _, tt := range tests {
		got, err := quiz.ParsePassMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePassMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePassMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
