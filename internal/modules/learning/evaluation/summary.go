// Package evaluation turns a learner's recent evaluation log into summary statistics.
package evaluation

import (
	"sort"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	Correct   = "correct"
	Partial   = "partial"
	Incorrect = "incorrect"
)

const (
	// MaxRecords bounds how much history a summary looks at.
	MaxRecords = 100
	// MaxRecentTopics bounds Summary.RecentTopics.
	MaxRecentTopics = 10
)

// Record is one graded interaction as read from storage, most recent first.
type Record struct {
	Evaluation  string
	ErrorType   *string
	TopicName   *string
	EvaluatedAt time.Time
}

type ErrorPattern struct {
	ErrorType  string `json:"error_type"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type Summary struct {
	TotalEvaluations   int            `json:"total_evaluations"`
	CorrectCount       int            `json:"correct_count"`
	PartialCount       int            `json:"partial_count"`
	IncorrectCount     int            `json:"incorrect_count"`
	AccuracyPercentage int            `json:"accuracy_percentage"`
	ErrorPatterns      []ErrorPattern `json:"error_patterns"`
	RecentTopics       []string       `json:"recent_topics"`
}

// Summarize aggregates records. It never fails and does not retain records.
//
// Records whose evaluation is not one of the three known outcomes count toward
// the total only. Error pattern percentages are taken against the total, so they
// need not sum to 100. Equal error counts keep first-seen order.
func Summarize(records []Record) Summary {
	out := Summary{
		TotalEvaluations: len(records),
		ErrorPatterns:    []ErrorPattern{},
		RecentTopics:     []string{},
	}

	errorCounts := orderedmap.New[string, int]()
	seenTopics := make(map[string]struct{}, MaxRecentTopics)

	for _, r := range records {
		switch r.Evaluation {
		case Correct:
			out.CorrectCount++
		case Partial:
			out.PartialCount++
		case Incorrect:
			out.IncorrectCount++
		}

		if et, ok := label(r.ErrorType); ok {
			n, _ := errorCounts.Get(et)
			errorCounts.Set(et, n+1)
		}

		if len(out.RecentTopics) < MaxRecentTopics {
			if topic, ok := label(r.TopicName); ok {
				if _, dup := seenTopics[topic]; !dup {
					seenTopics[topic] = struct{}{}
					out.RecentTopics = append(out.RecentTopics, topic)
				}
			}
		}
	}

	out.AccuracyPercentage = Percent(out.CorrectCount, out.TotalEvaluations)

	for pair := errorCounts.Oldest(); pair != nil; pair = pair.Next() {
		out.ErrorPatterns = append(out.ErrorPatterns, ErrorPattern{
			ErrorType:  pair.Key,
			Count:      pair.Value,
			Percentage: Percent(pair.Value, out.TotalEvaluations),
		})
	}
	sort.SliceStable(out.ErrorPatterns, func(i, j int) bool {
		return out.ErrorPatterns[i].Count > out.ErrorPatterns[j].Count
	})

	return out
}

// Percent returns round(100*part/total) with halves rounded up, or 0 when total <= 0.
// Integer arithmetic keeps x.5 boundaries exact.
func Percent(part, total int) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

func label(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}
