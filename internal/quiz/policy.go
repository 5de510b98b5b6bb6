package quiz

import (
	"fmt"
	"math"
	"strings"
)

// PassMode selects how a score is judged.
type PassMode string

const (
	// PassStrict requires every question to be answered correctly.
	PassStrict PassMode = "strict"
	// PassThreshold requires at least ceil(total × Ratio) correct answers.
	PassThreshold PassMode = "threshold"
)

// DefaultPassRatio is the threshold used when none is configured.
const DefaultPassRatio = 0.7

// ParsePassMode parses a configured pass mode.
func ParsePassMode(s string) (PassMode, error) {
	switch PassMode(strings.ToLower(strings.TrimSpace(s))) {
	case PassStrict:
		return PassStrict, nil
	case PassThreshold:
		return PassThreshold, nil
	default:
		return "", fmt.Errorf("unknown pass mode %q", s)
	}
}

// PassPolicy decides whether a score passes.
type PassPolicy struct {
	Mode  PassMode
	Ratio float64
}

// DefaultPassPolicy returns the 70% threshold policy.
func DefaultPassPolicy() PassPolicy {
	return PassPolicy{Mode: PassThreshold, Ratio: DefaultPassRatio}
}

// RequiredScore returns the minimum score that passes for total questions.
func (p PassPolicy) RequiredScore(total int) int {
	if p.Mode == PassStrict {
		return total
	}
	ratio := p.Ratio
	if ratio <= 0 {
		ratio = DefaultPassRatio
	}
	// Tolerance keeps products such as 10 × 0.7 from rounding up to 8.
	return int(math.Ceil(float64(total)*ratio - 1e-9))
}

// Passed reports whether score out of total passes.
func (p PassPolicy) Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return score >= p.RequiredScore(total)
}

func (p PassPolicy) String() string {
	if p.Mode == PassStrict {
		return string(PassStrict)
	}
	return fmt.Sprintf("%s(%.2f)", PassThreshold, p.Ratio)
}
