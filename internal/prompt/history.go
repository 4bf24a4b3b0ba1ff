package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var ErrHistoryShape = errors.New("history needs as many strategies as states, or one fewer")

// Observation is what the agent saw at one step.
type Observation struct {
	Goal            string
	AXTree          string
	HTML            string
	URL             string
	LastActionError string
}

// History holds the four parallel sequences a prompt is built from.
type History struct {
	Observations []Observation
	States       []string
	Strategies   []string
	Actions      []string
}

func (h History) Lengths() Lengths {
	return Lengths{
		Observations: len(h.Observations),
		States:       len(h.States),
		Strategies:   len(h.Strategies),
		Actions:      len(h.Actions),
	}
}

func (h History) checkShape() error {
	s, t := len(h.States), len(h.Strategies)
	if s != t && s != t+1 {
		return fmt.Errorf("%w: %d states, %d strategies", ErrHistoryShape, s, t)
	}
	return nil
}

// window keeps the last n states, strategies and actions.
func (h History) window(n int) History {
	return History{
		Observations: h.Observations,
		States:       tail(h.States, n),
		Strategies:   tail(h.Strategies, n),
		Actions:      tail(h.Actions, n),
	}
}

func tail(s []string, n int) []string {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// renderHistory lists every step before the latest state. Observations are
// left out to save tokens.
func renderHistory(h History) (string, error) {
	if err := h.checkShape(); err != nil {
		return "", err
	}

	parts := []string{"\n# History of interaction with the task:\n"}
	for i := 1; i < len(h.States); i++ {
		var step strings.Builder
		fmt.Fprintf(&step, "\n### State:\n%s\n", h.States[i-1])
		if i-1 < len(h.Strategies) {
			fmt.Fprintf(&step, "\n### Strategy:\n%s\n", h.Strategies[i-1])
		}
		if i <= len(h.Actions) {
			fmt.Fprintf(&step, "\n### Action:\n%s\n", h.Actions[i-1])
		}
		parts = append(parts, fmt.Sprintf("## Step %d", i-1), step.String())
	}
	return strings.Join(parts, "\n") + "\n", nil
}
