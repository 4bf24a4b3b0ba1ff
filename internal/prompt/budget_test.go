package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingShrinker struct {
	calls int
}

func (c *countingShrinker) Shrink() { c.calls++ }

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 1, EstimateTokens("привет"[:8]))
}

func TestFitToBudgetShrinksUntilItFits(t *testing.T) {
	s := &countingShrinker{}
	build := func() (string, error) {
		return strings.Repeat("x", 400-s.calls*100), nil
	}

	text, err := FitToBudget(build, s, 50, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls)
	assert.Len(t, text, 200)
}

func TestFitToBudgetGivesUp(t *testing.T) {
	s := &countingShrinker{}
	build := func() (string, error) { return strings.Repeat("x", 1000), nil }

	text, err := FitToBudget(build, s, 10, 3)
	assert.True(t, errors.Is(err, ErrOverBudget))
	assert.Len(t, text, 1000)
	assert.Equal(t, 3, s.calls)
}

func TestFitToBudgetPropagatesBuildErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := FitToBudget(func() (string, error) { return "", boom }, &countingShrinker{}, 10, 3)
	assert.ErrorIs(t, err, boom)
}

func TestFitToBudgetWithMainPrompt(t *testing.T) {
	h := history(1, 0, 0, 0)
	h.Observations[0].AXTree = strings.Repeat("[1] link 'a very long accessibility tree line'\n", 200)
	p := newPrompt(t, h, "")

	text, err := FitToBudget(p.EffectuatorPrompt, p, 1500, DefaultMaxShrinkIterations)
	require.NoError(t, err)
	assert.LessOrEqual(t, EstimateTokens(text), 1500)
	assert.Contains(t, text, "lines to reduce prompt size.")
}
