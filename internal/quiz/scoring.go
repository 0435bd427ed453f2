package quiz

import (
	"math"
)

// PassThreshold is the minimum score (percent) that counts as a pass.
const PassThreshold = 70

// Result is the scored outcome of one answer set.
type Result struct {
	CorrectCount int
	Total        int
	Score        int
	Passed       bool
}

// Score grades a submitted answer set against the question set. A missing or
// mismatched answer counts as incorrect; extra keys are ignored. Score is
// round(100 * correct / total) and Passed is Score >= PassThreshold.
func (s *Set) Score(answers map[string]string) Result {
	total := s.Len()
	if total == 0 {
		return Result{}
	}

	correct := 0
	for _, q := range s.questions {
		if answers[q.ID] == q.Correct {
			correct++
		}
	}

	score := int(math.Round(100 * float64(correct) / float64(total)))
	return Result{
		CorrectCount: correct,
		Total:        total,
		Score:        score,
		Passed:       score >= PassThreshold,
	}
}
