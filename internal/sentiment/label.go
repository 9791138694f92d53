// Package sentiment defines the five level sentiment scale and the
// classifier contract.
package sentiment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"
)

// Label is one of five ordered sentiment levels. The zero value Unknown
// marks a text that could not be classified.
type Label int

const (
	Unknown Label = iota
	OneStar
	TwoStars
	ThreeStars
	FourStars
	FiveStars
)

// Labels lists every valid label from most negative to most positive.
var Labels = []Label{OneStar, TwoStars, ThreeStars, FourStars, FiveStars}

func (l Label) String() string {
	switch l {
	case Unknown:
		return "unknown"
	case OneStar:
		return "1 star (very negative)"
	case TwoStars:
		return "2 stars (negative)"
	case ThreeStars:
		return "3 stars (neutral)"
	case FourStars:
		return "4 stars (positive)"
	case FiveStars:
		return "5 stars (very positive)"
	}
	return fmt.Sprintf("label(%d)", int(l))
}

// Score maps the label to 1..5, Unknown and invalid labels map to 0.
func (l Label) Score() int {
	if !l.Valid() {
		return 0
	}
	return int(l)
}

// Valid reports whether the label is one of the five levels.
func (l Label) Valid() bool {
	return l >= OneStar && l <= FiveStars
}

func (l Label) MarshalText() ([]byte, error) {
	if l != Unknown && !l.Valid() {
		return nil, fmt.Errorf("invalid label %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Label) UnmarshalText(text []byte) error {
	if string(text) == Unknown.String() {
		*l = Unknown
		return nil
	}
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

var starPattern = regexp.MustCompile(`^\s*([1-5])\s*(stars?)?\b`)

// ParseLabel accepts the canonical label text, model output like
// "4 stars" or a bare score like "4".
func ParseLabel(s string) (Label, error) {
	groups := starPattern.FindStringSubmatch(strings.ToLower(s))
	if groups == nil {
		return Unknown, fmt.Errorf("unrecognized sentiment label %q", s)
	}
	n, _ := strconv.Atoi(groups[1])
	return Label(n), nil
}

// FromScore returns the label of a 1..5 score.
func FromScore(score int) (Label, error) {
	l := Label(score)
	if !l.Valid() {
		return Unknown, fmt.Errorf("score %d is out of range", score)
	}
	return l, nil
}

var descriptors = [...]string{
	OneStar:    "very negative",
	TwoStars:   "negative",
	ThreeStars: "neutral",
	FourStars:  "positive",
	FiveStars:  "very positive",
}

// MatchLabel parses s leniently, falling back to the closest descriptor
// ("very negative" ... "very positive") by Jaro-Winkler similarity.
func MatchLabel(s string) (Label, bool) {
	l, err := ParseLabel(s)
	if err == nil {
		return l, true
	}

	normalized := strings.Trim(strings.ToLower(strings.TrimSpace(s)), "()")
	best := Unknown
	bestScore := 0.0
	for _, candidate := range Labels {
		score := matchr.JaroWinkler(normalized, descriptors[candidate], false)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if bestScore < 0.9 {
		return Unknown, false
	}
	return best, true
}
