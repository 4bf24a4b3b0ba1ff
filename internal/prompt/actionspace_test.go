package prompt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/llm"
)

type stubActions struct {
	err error
}

func (s stubActions) Describe(withLong, withExamples bool) string { return "\nnoop()" }
func (s stubActions) ExampleAction(abstract bool) string {
	if abstract {
		return "ABSTRACT"
	}
	return "noop()"
}
func (s stubActions) Validate(string) error { return s.err }

func TestActionSpacePrompt(t *testing.T) {
	as := NewActionSpace(stubActions{})

	assert.Equal(t, "# Action space:\n\nnoop()\n", as.Prompt())
	assert.Equal(t, "\n<action>\nABSTRACT\n</action>\n", as.AbstractExample())
	assert.Equal(t, "\n<action>\nnoop()\n</action>\n", as.ConcreteExample())
}

func TestActionSpaceDefaultSet(t *testing.T) {
	as := NewActionSpace(nil)

	assert.Contains(t, as.Prompt(), "# Action space:\n\n16 different types of actions are available.")
	assert.Contains(t, as.ConcreteExample(), "click('a51')")
}

func TestActionSpaceParseAnswerRoundTrip(t *testing.T) {
	as := NewActionSpace(action.NewDefaultSet())

	ans, err := as.ParseAnswer("I will press the button.\n<action>click('41')</action>")
	require.NoError(t, err)
	assert.Equal(t, "click('41')", ans["action"])
}

func TestActionSpaceParseAnswerMergesTags(t *testing.T) {
	set, err := action.New(action.Options{Subsets: []action.Subset{action.SubsetBid}, MultiAction: true})
	require.NoError(t, err)
	as := NewActionSpace(set)

	ans, err := as.ParseAnswer("<action>fill('12', 'milk')</action> then <action>click('13')</action>")
	require.NoError(t, err)
	assert.Equal(t, "fill('12', 'milk')\nclick('13')", ans["action"])
}

func TestActionSpaceValidationError(t *testing.T) {
	as := NewActionSpace(stubActions{err: errors.New("Invalid action type 'fly'.")})

	_, err := as.ParseAnswer("<action>fly()</action>")
	require.Error(t, err)

	var pe *llm.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t,
		"Error while parsing action\n: Invalid action type 'fly'.\nMake sure your answer is restricted to the allowed actions.",
		pe.Msg,
	)
}

func TestActionSpaceMissingTag(t *testing.T) {
	_, err := NewActionSpace(stubActions{}).ParseAnswer("click('41')")
	require.Error(t, err)
	assert.Equal(t, "Missing the key <action> in the answer.", err.Error())
}
