package prompt

import (
	"fmt"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/llm"
)

// ActionSet is what the prompts need from an action catalogue.
// *action.Set satisfies it.
type ActionSet interface {
	Describe(withLong, withExamples bool) string
	ExampleAction(abstract bool) string
	// Validate compiles text and discards the result.
	Validate(text string) error
}

// ActionSpace describes the available actions to the model and checks the
// action it proposes.
type ActionSpace struct {
	*Fragment
	set ActionSet
}

// NewActionSpace wraps set. A nil set means action.NewDefaultSet().
func NewActionSpace(set ActionSet) *ActionSpace {
	if set == nil {
		set = action.NewDefaultSet()
	}
	f := NewFragment(
		"# Action space:\n"+set.Describe(false, true)+"\n",
		Visible(),
	).WithExamples(
		"\n<action>\n"+set.ExampleAction(true)+"\n</action>\n",
		"\n<action>\n"+set.ExampleAction(false)+"\n</action>\n",
	)
	return &ActionSpace{Fragment: f, set: set}
}

// Validate returns a *llm.ParseError the model can act on when text is not a valid action.
func (a *ActionSpace) Validate(text string) error {
	if err := a.set.Validate(text); err != nil {
		return &llm.ParseError{Msg: fmt.Sprintf(
			"Error while parsing action\n: %v\nMake sure your answer is restricted to the allowed actions.", err,
		)}
	}
	return nil
}

// ParseAnswer extracts the action tag from reply and validates it. The action
// text is returned as written by the model.
func (a *ActionSpace) ParseAnswer(reply string) (llm.Answer, error) {
	if !a.IsVisible() {
		return llm.Answer{}, nil
	}
	ans, err := llm.ParseTags(reply, llm.TagOptions{Keys: []string{"action"}, MergeMultiple: true})
	if err != nil {
		return nil, err
	}
	if err := a.Validate(ans["action"]); err != nil {
		return nil, err
	}
	return ans, nil
}
