// Package analysis reduces graded results of one exam into summary statistics.
package analysis

import (
	"math"
	"strconv"
)

const (
	bucketCount   = 11
	textPreviewLn = 20
)

// Detail is the graded outcome of one question within a result.
type Detail struct {
	QuestionID string
	IsCorrect  bool
}

// Result is one graded submission.
type Result struct {
	Score   int
	Details []Detail
}

// Question identifies a question to report on.
type Question struct {
	ID   string
	Text string
}

type Stats struct {
	Average float64 `json:"average"`
	Max     int     `json:"max"`
	Min     int     `json:"min"`
	Count   int     `json:"count"`
}

type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type QuestionStat struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	CorrectCount int    `json:"correct_count"`
	TotalCount   int    `json:"total_count"`
	Percentage   int    `json:"percentage"`
}

// Report is the analysis of one exam.
type Report struct {
	Stats         Stats          `json:"stats"`
	Distribution  []Bucket       `json:"distribution"`
	QuestionStats []QuestionStat `json:"question_stats"`
}

// Aggregate computes the report. With no results it returns zero stats and
// empty, non-nil slices.
func Aggregate(results []Result, questions []Question) Report {
	if len(results) == 0 {
		return Report{
			Distribution:  []Bucket{},
			QuestionStats: []QuestionStat{},
		}
	}

	total := 0
	maxScore, minScore := results[0].Score, results[0].Score
	counts := make([]int, bucketCount)
	for _, r := range results {
		total += r.Score
		if r.Score > maxScore {
			maxScore = r.Score
		}
		if r.Score < minScore {
			minScore = r.Score
		}
		counts[BucketIndex(r.Score)]++
	}

	distribution := make([]Bucket, bucketCount)
	for i := range distribution {
		distribution[i] = Bucket{Name: BucketName(i), Count: counts[i]}
	}

	return Report{
		Stats: Stats{
			Average: roundHalfUp(float64(total)/float64(len(results)), 1),
			Max:     maxScore,
			Min:     minScore,
			Count:   len(results),
		},
		Distribution:  distribution,
		QuestionStats: questionStats(results, questions),
	}
}

func questionStats(results []Result, questions []Question) []QuestionStat {
	// Each result counts at most once per question: its first detail for
	// that question decides.
	correct := make(map[string]int, len(questions))
	for _, r := range results {
		seen := make(map[string]bool, len(r.Details))
		for _, d := range r.Details {
			if seen[d.QuestionID] {
				continue
			}
			seen[d.QuestionID] = true
			if d.IsCorrect {
				correct[d.QuestionID]++
			}
		}
	}

	stats := make([]QuestionStat, 0, len(questions))
	for _, q := range questions {
		c := correct[q.ID]
		stats = append(stats, QuestionStat{
			ID:           q.ID,
			Text:         previewText(q.Text),
			CorrectCount: c,
			TotalCount:   len(results),
			Percentage:   percentage(c, len(results)),
		})
	}
	return stats
}

// BucketIndex maps a score to its distribution bucket. Scores of 100 and
// above share the last bucket; negative scores fall into the first.
func BucketIndex(score int) int {
	if score < 0 {
		return 0
	}
	return min(score/10, bucketCount-1)
}

// BucketName labels bucket i as "0~" through "90~", and "100" for the last.
func BucketName(i int) string {
	if i >= bucketCount-1 {
		return "100"
	}
	return strconv.Itoa(i*10) + "~"
}

func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(roundHalfUp(float64(correct)/float64(total)*100, 0))
}

func roundHalfUp(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}

func previewText(s string) string {
	r := []rune(s)
	if len(r) <= textPreviewLn {
		return s
	}
	return string(r[:textPreviewLn]) + "..."
}
