package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAXTree(t *testing.T) {
	tests := []struct {
		coord CoordType
		want  string
	}{
		{CoordNone, "\n## AXTree (you may only interact with elements in this tree):\n[1] button 'Go'\n"},
		{CoordCenter, "\n## AXTree (you may only interact with elements in this tree):\n" +
			"Note: center coordinates are provided in parenthesis and are\n  relative to the top left corner of the page.\n\n" +
			"[1] button 'Go'\n"},
		{CoordBox, "\n## AXTree (you may only interact with elements in this tree):\n" +
			"Note: bounding box of each object are provided in parenthesis and are\n  relative to the top left corner of the page.\n\n" +
			"[1] button 'Go'\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.coord), func(t *testing.T) {
			assert.Equal(t, tt.want, NewAXTree("[1] button 'Go'", tt.coord, "## ", Visible()).Prompt())
		})
	}
}

func TestAXTreeAndHTMLStartIterations(t *testing.T) {
	ax := NewAXTree(numbered(20), CoordNone, "", Visible())
	html := NewHTML(numbered(20), "", Visible())
	axText, htmlText := ax.Prompt(), html.Prompt()

	for i := 0; i < 5; i++ {
		ax.Shrink()
		html.Shrink()
	}
	assert.Equal(t, axText, ax.Prompt())
	assert.Equal(t, htmlText, html.Prompt())

	html.Shrink()
	assert.NotEqual(t, htmlText, html.Prompt())

	for i := 0; i < 5; i++ {
		ax.Shrink()
	}
	assert.Equal(t, axText, ax.Prompt())
	ax.Shrink()
	assert.Contains(t, ax.Prompt(), "lines to reduce prompt size.")
}

func TestError(t *testing.T) {
	assert.Equal(t, "\n## Error from previous action:\nTimeout\n", NewError("Timeout", "## ", Visible()).Prompt())
	assert.Equal(t, "", NewError("Timeout", "## ", Hidden()).Prompt())
}

func TestHTML(t *testing.T) {
	assert.Equal(t, "\n## HTML:\n<p>hi</p>\n", NewHTML("<p>hi</p>", "## ", Visible()).Prompt())
}

func TestPlatformNote(t *testing.T) {
	assert.Contains(t, NewPlatformNote("darwin").Prompt(), "use Meta instead of Control")
	assert.Equal(t, "", NewPlatformNote("linux").Prompt())
}

func TestGoalInstructions(t *testing.T) {
	p := NewGoalInstructions("Buy milk", Visible()).Prompt()
	assert.Contains(t, p, "# Instructions\nReview the current state of the page")
	assert.Contains(t, p, "\n## Goal:\nBuy milk\n")
}

func TestChatInstructions(t *testing.T) {
	p := NewChatInstructions([]ChatMessage{
		{Role: "user", Message: "Find the cheapest flight"},
		{Role: "assistant", Message: "On it."},
	}, Visible()).Prompt()

	assert.Contains(t, p, "You are a UI Assistant")
	assert.Contains(t, p, "## Chat messages:\n\n - [user] Find the cheapest flight\n - [assistant] On it.")
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, NewSystemPrompt().Prompt(), "You are an agent trying to solve a web task")
}
