package sentiment

import (
	"context"
)

// Classifier labels a single non-empty text. Implementations hold their own
// resources (models, connections) and release them on Close.
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
	Close() error
}

// Func adapts a function to Classifier.
type Func func(ctx context.Context, text string) (Label, error)

func (f Func) Classify(ctx context.Context, text string) (Label, error) {
	return f(ctx, text)
}

func (f Func) Close() error {
	return nil
}

// Fixed returns a classifier that answers with the label registered for
// each text and fails for texts it does not know.
func Fixed(labels map[string]Label) Classifier {
	return Func(func(ctx context.Context, text string) (Label, error) {
		l, ok := labels[text]
		if !ok {
			return Unknown, errUnknownText{text: text}
		}
		return l, nil
	})
}

type errUnknownText struct {
	text string
}

func (e errUnknownText) Error() string {
	return "no label registered for " + e.text
}
