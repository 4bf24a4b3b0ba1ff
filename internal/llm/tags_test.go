package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTagsMergesRepeatedTags(t *testing.T) {
	reply := "<state>a</state>\nsome text b\n<state>c</state>"

	ans, err := ParseTags(reply, TagOptions{Keys: []string{"state"}, MergeMultiple: true})
	require.NoError(t, err)
	assert.Equal(t, "a\nc", ans["state"])
}

func TestParseTagsRejectsRepeatedTagsWithoutMerge(t *testing.T) {
	reply := "<state>a</state><state>c</state>"

	ans, err := ParseTags(reply, TagOptions{Keys: []string{"state"}})
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "Found multiple instances of the key state")
	assert.Equal(t, "a", ans["state"])
}

func TestParseTagsMissingRequired(t *testing.T) {
	reply := "<state>the page shows a login form</state>"

	_, err := ParseTags(reply, TagOptions{Keys: []string{"state", "progress"}, MergeMultiple: true})
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Missing the key <progress> in the answer.", pe.Msg)
}

func TestParseTagsReportsEveryMissingKey(t *testing.T) {
	_, err := ParseTags("nothing tagged here", TagOptions{Keys: []string{"action", "explanation"}})
	require.Error(t, err)
	assert.Equal(t,
		"Missing the key <action> in the answer.\nMissing the key <explanation> in the answer.",
		err.Error(),
	)
}

func TestParseTagsOptionalKeys(t *testing.T) {
	reply := "<state>s</state><progress>in-progress</progress>"

	ans, err := ParseTags(reply, TagOptions{
		Keys:          []string{"state", "progress"},
		OptionalKeys:  []string{"think"},
		MergeMultiple: true,
	})
	require.NoError(t, err)
	_, ok := ans["think"]
	assert.False(t, ok)
	assert.Equal(t, "in-progress", ans["progress"])

	ans, err = ParseTags("<think>hmm</think>"+reply, TagOptions{
		Keys:         []string{"state", "progress"},
		OptionalKeys: []string{"think"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hmm", ans["think"])
}

func TestParseTagsMultiline(t *testing.T) {
	reply := "<action>\nclick('41')\n</action>\n<explanation>\nThe search\nbutton.\n</explanation>"

	ans, err := ParseTags(reply, TagOptions{Keys: []string{"action", "explanation"}, MergeMultiple: true})
	require.NoError(t, err)
	assert.Equal(t, "click('41')", ans["action"])
	assert.Equal(t, "The search\nbutton.", ans["explanation"])
}

func TestIsParseError(t *testing.T) {
	assert.False(t, IsParseError(assert.AnError))
	assert.True(t, IsParseError(&ParseError{Msg: "x"}))
}
