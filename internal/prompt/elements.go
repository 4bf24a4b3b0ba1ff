package prompt

import (
	"fmt"
	"strings"
)

// CoordType selects the coordinate note shown above the accessibility tree.
type CoordType string

const (
	CoordNone   CoordType = "none"
	CoordCenter CoordType = "center"
	CoordBox    CoordType = "box"
)

const (
	axTreeStartIteration = 10
	htmlStartIteration   = 5
)

const (
	centerCoordNote = "Note: center coordinates are provided in parenthesis and are\n" +
		"  relative to the top left corner of the page.\n\n"
	boxCoordNote = "Note: bounding box of each object are provided in parenthesis and are\n" +
		"  relative to the top left corner of the page.\n\n"
)

func coordNote(ct CoordType) string {
	switch ct {
	case CoordCenter:
		return centerCoordNote
	case CoordBox:
		return boxCoordNote
	}
	return ""
}

// NewAXTree renders an accessibility tree dump. It starts truncating after 10 shrink calls.
func NewAXTree(tree string, ct CoordType, prefix string, vis Visibility) *Truncater {
	text := fmt.Sprintf("\n%sAXTree (you may only interact with elements in this tree):\n%s%s\n",
		prefix, coordNote(ct), tree)
	return NewTruncater(text, vis, axTreeStartIteration)
}

// NewHTML renders a page markup dump. It starts truncating after 5 shrink calls.
func NewHTML(html, prefix string, vis Visibility) *Truncater {
	return NewTruncater(fmt.Sprintf("\n%sHTML:\n%s\n", prefix, html), vis, htmlStartIteration)
}

func NewError(err, prefix string, vis Visibility) *Fragment {
	return NewFragment(fmt.Sprintf("\n%sError from previous action:\n%s\n", prefix, err), vis)
}

// NewPlatformNote reminds the model about Meta vs Control. The platform is a
// GOOS value resolved once by the caller.
func NewPlatformNote(platform string) *Fragment {
	return NewFragment(
		"\nNote: you are on mac so you should use Meta instead of Control for Control+C etc.\n",
		VisibleWhen(platform == "darwin"),
	)
}

const systemPrompt = "You are an agent trying to solve a web task based on the content of the page and a user instructions. " +
	"You can interact with the page and explore. Each time you submit an action it will be sent to the browser and you will receive a new page."

func NewSystemPrompt() *Fragment {
	return NewFragment(systemPrompt, Visible())
}

func NewGoalInstructions(goal string, vis Visibility) *Fragment {
	text := "# Instructions\n" +
		"Review the current state of the page and all other information to find the best possible next action to accomplish your goal. " +
		"Your answer will be interpreted and executed by a program, make sure to follow the formatting instructions.\n" +
		"\n## Goal:\n" + goal + "\n"
	return NewFragment(text, vis)
}

// ChatMessage is one line of the user/assistant chat shown to the model.
type ChatMessage struct {
	Role    string `json:"role" yaml:"role"`
	Message string `json:"message" yaml:"message"`
}

func NewChatInstructions(msgs []ChatMessage, vis Visibility) *Fragment {
	var sb strings.Builder
	sb.WriteString("# Instructions\n\n" +
		"You are a UI Assistant, your goal is to help the user perform tasks using a web browser. " +
		"You can communicate with the user via a chat, in which the user gives you instructions and in which you can send back messages. " +
		"You have access to a web browser that both you and the user can see, and with which only you can interact via specific commands.\n\n" +
		"Review the instructions from the user, the current state of the page and all other information to find the best possible next action to accomplish your goal. " +
		"Your answer will be interpreted and executed by a program, make sure to follow the formatting instructions.\n\n" +
		"## Chat messages:\n\n")

	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = fmt.Sprintf(" - [%s] %s", m.Role, m.Message)
	}
	sb.WriteString(strings.Join(lines, "\n"))
	return NewFragment(sb.String(), vis)
}
