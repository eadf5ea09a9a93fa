package responder

import "math/rand/v2"

// Chooser picks an index in [0, n). Production code draws uniformly; tests
// inject a scripted Chooser for deterministic replies.
type Chooser interface {
	IntN(n int) int
}

// RandomChooser draws from the auto-seeded math/rand/v2 global source.
type RandomChooser struct{}

// IntN returns a uniform index in [0, n).
func (RandomChooser) IntN(n int) int {
	return rand.IntN(n)
}

// pick returns a chooser-selected element of items.
func pick(ch Chooser, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[ch.IntN(len(items))]
}
