// Package lexicon is an offline sentiment classifier that scores reviews
// with a polarity word list.
package lexicon

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"

	"reviewscope-backend/internal/sentiment"

	"github.com/antzucaro/matchr"
)

// words this many runes or longer are matched fuzzily when they are not
// in the lexicon.
const fuzzyMinLength = 5

// fuzzyThreshold is the minimum Jaro-Winkler similarity of a fuzzy match.
const fuzzyThreshold = 0.92

// negation applies to the next sentiment word within this many tokens.
const negationWindow = 3

var ErrEmptyText = errors.New("cannot classify empty text")

type Classifier struct {
	// lexicon words grouped by first rune, sorted for deterministic
	// fuzzy matching.
	byInitial map[rune][]string
}

func New() *Classifier {
	byInitial := map[rune][]string{}
	for word := range words {
		initial := []rune(word)[0]
		byInitial[initial] = append(byInitial[initial], word)
	}
	for _, group := range byInitial {
		sort.Strings(group)
	}
	return &Classifier{byInitial: byInitial}
}

func (c *Classifier) Classify(ctx context.Context, text string) (sentiment.Label, error) {
	if strings.TrimSpace(text) == "" {
		return sentiment.Unknown, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return sentiment.Unknown, err
	}
	return FromPolarity(c.Polarity(text)), nil
}

func (c *Classifier) Close() error {
	return nil
}

// FromPolarity maps a polarity in [-1, 1] onto the five level scale.
func FromPolarity(p float64) sentiment.Label {
	switch {
	case p <= -0.6:
		return sentiment.OneStar
	case p < -0.1:
		return sentiment.TwoStars
	case p <= 0.1:
		return sentiment.ThreeStars
	case p < 0.7:
		return sentiment.FourStars
	default:
		return sentiment.FiveStars
	}
}

func tokenize(text string) []string {
	text = strings.ReplaceAll(strings.ToLower(text), "n't", " not")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// Polarity returns the mean polarity of the sentiment words in text, 0
// when there are none.
func (c *Classifier) Polarity(text string) float64 {
	var sum float64
	var matched int

	negateFor := 0
	boost := 1.0
	for _, token := range tokenize(text) {
		token = strings.Trim(token, "'")
		if token == "" {
			continue
		}
		if negators[token] {
			negateFor = negationWindow
			continue
		}
		if factor, ok := intensifiers[token]; ok {
			boost *= factor
			continue
		}

		score, ok := c.lookup(token)
		if !ok {
			if negateFor > 0 {
				negateFor--
			}
			continue
		}

		score *= boost
		if negateFor > 0 {
			// "not good" is milder than "bad"
			score *= -0.7
		}
		sum += clamp(score)
		matched++

		negateFor = 0
		boost = 1.0
	}

	if matched == 0 {
		return 0
	}
	return clamp(sum / float64(matched))
}

func (c *Classifier) lookup(token string) (float64, bool) {
	score, ok := words[token]
	if ok {
		return score, true
	}
	runes := []rune(token)
	if len(runes) < fuzzyMinLength {
		return 0, false
	}

	best := ""
	bestSimilarity := 0.0
	for _, candidate := range c.byInitial[runes[0]] {
		similarity := matchr.JaroWinkler(token, candidate, false)
		if similarity > bestSimilarity {
			best = candidate
			bestSimilarity = similarity
		}
	}
	if bestSimilarity < fuzzyThreshold {
		return 0, false
	}
	return words[best], true
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
