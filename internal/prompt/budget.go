package prompt

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const DefaultMaxShrinkIterations = 20

var ErrOverBudget = errors.New("prompt does not fit the token budget")

// EstimateTokens approximates the token count as one token per four characters.
func EstimateTokens(s string) int {
	return (utf8.RuneCountInString(s) + 3) / 4
}

// FitToBudget renders with build and shrinks s until the result is within
// maxTokens or maxIterations shrinks have been spent. The last rendering is
// always returned; it comes with ErrOverBudget when it is still too long.
func FitToBudget(build func() (string, error), s Shrinkable, maxTokens, maxIterations int) (string, error) {
	if maxIterations < 0 {
		maxIterations = DefaultMaxShrinkIterations
	}
	for i := 0; ; i++ {
		text, err := build()
		if err != nil {
			return "", err
		}
		n := EstimateTokens(text)
		if maxTokens <= 0 || n <= maxTokens {
			return text, nil
		}
		if i >= maxIterations {
			return text, fmt.Errorf("%w: ~%d tokens after %d shrinks, limit %d", ErrOverBudget, n, i, maxTokens)
		}
		s.Shrink()
	}
}
