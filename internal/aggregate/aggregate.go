// Package aggregate turns per-review sentiment labels into summary
// statistics.
package aggregate

import (
	"errors"
	"fmt"

	"reviewscope-backend/internal/sentiment"
)

var ErrEmpty = errors.New("no labels to summarize")

type Summary struct {
	// AverageScore is the mean of the label scores, in [1, 5].
	AverageScore float64
	// Distribution maps each label present to its share in percent.
	Distribution map[sentiment.Label]float64
	Counts       map[sentiment.Label]int
	// MostCommon is the label with the highest count, ties go to the label
	// with the lowest score.
	MostCommon sentiment.Label
	Total      int
}

// Summarize computes the statistics of every label given, callers are
// expected to leave out reviews that could not be classified.
func Summarize(labels []sentiment.Label) (Summary, error) {
	if len(labels) == 0 {
		return Summary{}, ErrEmpty
	}

	counts := map[sentiment.Label]int{}
	sum := 0
	for _, l := range labels {
		if !l.Valid() {
			return Summary{}, fmt.Errorf("cannot summarize label %s", l)
		}
		counts[l]++
		sum += l.Score()
	}

	total := len(labels)
	distribution := make(map[sentiment.Label]float64, len(counts))
	for l, n := range counts {
		distribution[l] = float64(n) / float64(total) * 100
	}

	return Summary{
		AverageScore: float64(sum) / float64(total),
		Distribution: distribution,
		Counts:       counts,
		MostCommon:   mostCommon(counts),
		Total:        total,
	}, nil
}

// MostCommonOf applies the most common rule to a stored distribution,
// Unknown is returned for an empty distribution.
func MostCommonOf(distribution map[sentiment.Label]float64) sentiment.Label {
	return mostCommon(distribution)
}

// mostCommon walks the labels in ascending score order so the first
// maximum found is the lowest scoring label among ties.
func mostCommon[N int | float64](counts map[sentiment.Label]N) sentiment.Label {
	best := sentiment.Unknown
	var bestCount N
	for _, l := range sentiment.Labels {
		n, ok := counts[l]
		if !ok {
			continue
		}
		if best == sentiment.Unknown || n > bestCount {
			best = l
			bestCount = n
		}
	}
	return best
}
