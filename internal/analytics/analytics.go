// Package analytics derives performance statistics from a finished or
// in-flight interview record. Everything here is pure computation over the
// stored answers; no provider calls are involved.
package analytics

import (
	"math"
	"sort"

	"github.com/avercier/parley/internal/session"
)

// benchmarks are the reference scores candidates are compared against.
var benchmarks = map[string]int{
	"technical":       75,
	"communication":   80,
	"problem_solving": 70,
	"confidence":      75,
	"overall":         75,
}

// Trend describes the score trajectory across the interview.
type Trend struct {
	Trend          string  `json:"trend"`
	FirstHalfAvg   float64 `json:"first_half_average"`
	SecondHalfAvg  float64 `json:"second_half_average"`
	ScoreDelta     float64 `json:"score_delta"`
}

// TypeStats aggregates the scores of one question type.
type TypeStats struct {
	AverageScore float64 `json:"average_score"`
	Count        int     `json:"count"`
	BestScore    int     `json:"best_score"`
	WorstScore   int     `json:"worst_score"`
}

// Benchmark compares one score dimension to its reference value.
type Benchmark struct {
	Score      int `json:"score"`
	Benchmark  int `json:"benchmark"`
	Difference int `json:"difference"`
	Percentile int `json:"percentile"`
}

// Insights is the full analytics payload for one session.
type Insights struct {
	SessionID         string               `json:"session_id"`
	PerformanceTrend  Trend                `json:"performance_trend"`
	TypePerformance   map[string]TypeStats `json:"question_type_performance"`
	Strengths         []string             `json:"strengths"`
	Weaknesses        []string             `json:"weaknesses"`
	Improvements      []string             `json:"improvement_suggestions"`
	BenchmarkScores   map[string]Benchmark `json:"benchmark_comparison"`
	ScoreVariance     float64              `json:"score_variance"`
	ConsistencyRating string               `json:"consistency_rating"`
}

// Analyze computes the full analytics payload from a session summary.
func Analyze(sum session.Summary) Insights {
	return Insights{
		SessionID:         sum.Info.SessionID,
		PerformanceTrend:  PerformanceTrend(sum.Answers),
		TypePerformance:   TypePerformance(sum.Questions, sum.Answers),
		Strengths:         topObservations(sum.Answers, func(e session.Evaluation) []string { return e.Strengths }),
		Weaknesses:        topObservations(sum.Answers, func(e session.Evaluation) []string { return e.Weaknesses }),
		Improvements:      Improvements(sum.Answers),
		BenchmarkScores:   BenchmarkComparison(sum.Scores),
		ScoreVariance:     ScoreVariance(answerScores(sum.Answers)),
		ConsistencyRating: ConsistencyRating(ScoreVariance(answerScores(sum.Answers))),
	}
}

// PerformanceTrend splits the answers in half and compares the averages.
// A swing above five points either way counts as a real change.
func PerformanceTrend(answers []session.Answer) Trend {
	if len(answers) < 2 {
		return Trend{Trend: "Insufficient data"}
	}

	scores := answerScores(answers)
	mid := len(scores) / 2
	first := mean(scores[:mid])
	second := mean(scores[mid:])
	delta := second - first

	trend := "Consistent"
	switch {
	case delta > 5:
		trend = "Improving"
	case delta < -5:
		trend = "Declining"
	}
	return Trend{
		Trend:         trend,
		FirstHalfAvg:  round1(first),
		SecondHalfAvg: round1(second),
		ScoreDelta:    round1(delta),
	}
}

// TypePerformance groups answer scores by the type of the question they
// answered. Questions with no declared type fall under "general".
func TypePerformance(questions []session.Question, answers []session.Answer) map[string]TypeStats {
	typeOf := make(map[int]string, len(questions))
	for _, q := range questions {
		t := q.Type
		if t == "" {
			t = "general"
		}
		typeOf[q.ID] = t
	}

	grouped := map[string][]int{}
	for _, a := range answers {
		t, ok := typeOf[a.QuestionID]
		if !ok {
			t = "general"
		}
		grouped[t] = append(grouped[t], a.Score)
	}

	out := make(map[string]TypeStats, len(grouped))
	for t, scores := range grouped {
		best, worst := scores[0], scores[0]
		for _, s := range scores[1:] {
			if s > best {
				best = s
			}
			if s < worst {
				worst = s
			}
		}
		out[t] = TypeStats{
			AverageScore: round1(mean(scores)),
			Count:        len(scores),
			BestScore:    best,
			WorstScore:   worst,
		}
	}
	return out
}

// Improvements collects the distinct improvement suggestions across all
// evaluations, first occurrence order, capped at ten.
func Improvements(answers []session.Answer) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, a := range answers {
		for _, s := range a.Evaluation.ImprovementSuggestions {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
			if len(out) == 10 {
				return out
			}
		}
	}
	return out
}

// BenchmarkComparison compares each score dimension to its reference value.
// The percentile is a linear estimate clamped to [5,95].
func BenchmarkComparison(scores session.Scores) map[string]Benchmark {
	actual := map[string]int{
		"technical":       scores.Technical,
		"communication":   scores.Communication,
		"problem_solving": scores.ProblemSolving,
		"confidence":      scores.Confidence,
		"overall":         scores.Overall,
	}

	out := make(map[string]Benchmark, len(actual))
	for dim, score := range actual {
		ref := benchmarks[dim]
		diff := score - ref
		pct := 50 + diff*2
		if pct > 95 {
			pct = 95
		}
		if pct < 5 {
			pct = 5
		}
		out[dim] = Benchmark{
			Score:      score,
			Benchmark:  ref,
			Difference: diff,
			Percentile: pct,
		}
	}
	return out
}

// ScoreVariance is the population variance of the per-answer scores.
func ScoreVariance(scores []int) float64 {
	if len(scores) < 2 {
		return 0
	}
	m := mean(scores)
	var sum float64
	for _, s := range scores {
		d := float64(s) - m
		sum += d * d
	}
	return round1(sum / float64(len(scores)))
}

// ConsistencyRating maps score variance to a human label.
func ConsistencyRating(variance float64) string {
	switch {
	case variance < 50:
		return "Very Consistent"
	case variance < 100:
		return "Consistent"
	case variance < 200:
		return "Moderately Consistent"
	default:
		return "Inconsistent"
	}
}

// topObservations tallies the free-text observations of one kind across all
// evaluations and returns the five most frequent, ties broken alphabetically.
func topObservations(answers []session.Answer, pick func(session.Evaluation) []string) []string {
	counts := map[string]int{}
	for _, a := range answers {
		for _, s := range pick(a.Evaluation) {
			if s != "" {
				counts[s]++
			}
		}
	}

	items := make([]string, 0, len(counts))
	for s := range counts {
		items = append(items, s)
	}
	sort.Slice(items, func(i, j int) bool {
		if counts[items[i]] != counts[items[j]] {
			return counts[items[i]] > counts[items[j]]
		}
		return items[i] < items[j]
	})
	if len(items) > 5 {
		items = items[:5]
	}
	return items
}

func answerScores(answers []session.Answer) []int {
	scores := make([]int, len(answers))
	for i, a := range answers {
		scores[i] = a.Score
	}
	return scores
}

func mean(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum int
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
