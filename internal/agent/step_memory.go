package agent

import (
	"fmt"
	"strings"
)

// actionKey identifies an action on a page. Whitespace differences in the
// action text do not count.
type actionKey struct {
	url    string
	action string
}

func keyOf(url, action string) actionKey {
	return actionKey{url: url, action: oneLine(action)}
}

// StepMemory logs executed actions and detects two kinds of loops: the same
// action repeated in a row, and a switch between two actions that already
// happened once (A, B, A, B).
type StepMemory struct {
	log      []string
	maxLines int

	loopThreshold int
	last          actionKey
	hasLast       bool
	streak        int
	// how often each action followed another one
	transitions map[[2]actionKey]int

	loopTriggered int
}

func NewStepMemory(maxLines, loopThreshold int) *StepMemory {
	if maxLines <= 0 {
		maxLines = 5
	}
	if loopThreshold <= 1 {
		loopThreshold = 2
	}
	return &StepMemory{
		maxLines:      maxLines,
		loopThreshold: loopThreshold,
		transitions:   make(map[[2]actionKey]int),
	}
}

// Add records an action that was sent to the browser.
func (m *StepMemory) Add(step int, url, action string) {
	m.log = append(m.log, fmt.Sprintf("step=%d url=%s action=%s", step, url, oneLine(action)))

	k := keyOf(url, action)
	if m.hasLast && k == m.last {
		m.streak++
	} else {
		m.streak = 1
	}
	if m.hasLast {
		m.transitions[[2]actionKey{m.last, k}]++
	}
	m.last, m.hasLast = k, true
}

// ShouldBlock reports whether running action next would continue a loop. The
// reason is addressed to the model.
func (m *StepMemory) ShouldBlock(url, action string) (bool, string) {
	if !m.hasLast {
		return false, ""
	}
	k := keyOf(url, action)

	if k == m.last {
		if m.streak < m.loopThreshold {
			return false, ""
		}
		return true, fmt.Sprintf(
			"The same action (%s) has already been executed %d times in a row on this page. "+
				"Do NOT repeat it again. Choose a different action or a different strategy.",
			k.action, m.streak,
		)
	}

	if m.transitions[[2]actionKey{m.last, k}] > 0 {
		return true, fmt.Sprintf(
			"Going from %s to %s has already occurred before on this page. "+
				"Do NOT repeat this pattern. Try a different action.",
			m.last.action, k.action,
		)
	}
	return false, ""
}

// AddSystemNote appends a note to the log. Blank notes are ignored.
func (m *StepMemory) AddSystemNote(note string) {
	if strings.TrimSpace(note) != "" {
		m.log = append(m.log, note)
	}
}

// HistoryLines returns the latest lines of the log, at most maxLines.
func (m *StepMemory) HistoryLines() []string {
	if len(m.log) == 0 {
		return nil
	}
	return append([]string(nil), m.log[max(0, len(m.log)-m.maxLines):]...)
}

// FullHistory returns every line recorded during the run.
func (m *StepMemory) FullHistory() []string {
	return append([]string(nil), m.log...)
}

func (m *StepMemory) MarkLoopTriggered() {
	m.loopTriggered++
}

// LoopTriggered is how many times the guard blocked an action.
func (m *StepMemory) LoopTriggered() int {
	return m.loopTriggered
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
