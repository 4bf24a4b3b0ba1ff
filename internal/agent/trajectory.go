package agent

import (
	"github.com/nbenliogludev/go-world-model-agent/internal/prompt"
)

// Trajectory is the growing record of a run: what was observed, what the
// encoder inferred, which strategies were chosen and which actions were sent.
type Trajectory struct {
	Goal string
	h    prompt.History
	// strategy the effectuator is currently carrying out
	active string
}

func NewTrajectory(goal string) *Trajectory {
	return &Trajectory{Goal: goal}
}

func (t *Trajectory) Observe(obs prompt.Observation) {
	obs.Goal = t.Goal
	t.h.Observations = append(t.h.Observations, obs)
}

func (t *Trajectory) AddState(s string) {
	t.h.States = append(t.h.States, s)
}

// AddStrategy records s and makes it the active strategy.
func (t *Trajectory) AddStrategy(s string) {
	t.h.Strategies = append(t.h.Strategies, s)
	t.active = s
}

func (t *Trajectory) AddAction(a string) {
	t.h.Actions = append(t.h.Actions, a)
}

func (t *Trajectory) Active() string {
	return t.active
}

func (t *Trajectory) Lengths() prompt.Lengths {
	return t.h.Lengths()
}

// History returns a copy safe to hand to a prompt build.
func (t *Trajectory) History() prompt.History {
	return prompt.History{
		Observations: append([]prompt.Observation(nil), t.h.Observations...),
		States:       append([]string(nil), t.h.States...),
		Strategies:   append([]string(nil), t.h.Strategies...),
		Actions:      append([]string(nil), t.h.Actions...),
	}
}

// Imagined returns the history with the latest observation dropped, so the
// latest state and strategy are rendered without the page. Dynamics and
// action-reward prompts are built from it.
func (t *Trajectory) Imagined() prompt.History {
	h := t.History()
	if n := len(h.Observations); n > 0 {
		h.Observations = h.Observations[:n-1]
	}
	return h
}

func (t *Trajectory) LastState() string {
	if len(t.h.States) == 0 {
		return ""
	}
	return t.h.States[len(t.h.States)-1]
}
