package grading

// Detail is the graded outcome of one question.
type Detail struct {
	QuestionID string
	Answer     string
	IsCorrect  bool
	Score      int
}

// Result is the outcome of grading a whole submission.
type Result struct {
	EarnedScore int
	TotalScore  int
	Details     []Detail
}

// Grade scores answers against questions in the given order. Every question
// counts towards TotalScore whether or not it was answered, and each correct
// answer earns the full question score.
func Grade(questions []Question, answers map[string]string) Result {
	res := Result{Details: make([]Detail, 0, len(questions))}

	for _, q := range questions {
		res.TotalScore += q.Score

		raw := answers[q.ID]
		ok := IsCorrect(q, raw)
		awarded := 0
		if ok {
			awarded = q.Score
		}

		res.EarnedScore += awarded
		res.Details = append(res.Details, Detail{
			QuestionID: q.ID,
			Answer:     raw,
			IsCorrect:  ok,
			Score:      awarded,
		})
	}

	return res
}

// RecomputeTotal is the score of a result after any of its details changed.
func RecomputeTotal(details []Detail) int {
	total := 0
	for _, d := range details {
		total += d.Score
	}
	return total
}

// Passed reports whether score meets the exam's passing score. Exams without
// a passing score have no pass mark and always pass.
func Passed(score int, passingScore *int) bool {
	if passingScore == nil {
		return true
	}
	return score >= *passingScore
}
