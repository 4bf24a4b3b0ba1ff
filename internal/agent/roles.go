package agent

import (
	"github.com/nbenliogludev/go-world-model-agent/internal/llm"
	"github.com/nbenliogludev/go-world-model-agent/internal/prompt"
)

// Role is one world-model call: which prompt to build, which history shape it
// expects and how its reply is parsed.
type Role struct {
	Name string
	Mode prompt.Mode
	// put the action catalogue in the system message
	WithActions bool
	Build       func(*prompt.MainPrompt) (string, error)
	Parse       func(*prompt.MainPrompt, string) (llm.Answer, error)
}

var (
	// Encoder turns the latest observation into a state and a progress label.
	Encoder = Role{
		Name:  "encoder",
		Mode:  prompt.ModeEncoding,
		Build: (*prompt.MainPrompt).EncoderPrompt,
		Parse: (*prompt.MainPrompt).ParseEncoderAnswer,
	}

	// Policy proposes the next strategy for the current state.
	Policy = Role{
		Name:  "policy",
		Mode:  prompt.ModeStrategy,
		Build: (*prompt.MainPrompt).PolicyPrompt,
		Parse: (*prompt.MainPrompt).ParsePolicyAnswer,
	}

	// Effectuator grounds the active strategy into one browser action.
	Effectuator = Role{
		Name:        "effectuator",
		Mode:        prompt.ModePolicy,
		WithActions: true,
		Build:       (*prompt.MainPrompt).EffectuatorPrompt,
		Parse:       (*prompt.MainPrompt).ParseEffectuatorAnswer,
	}

	// Dynamics predicts the state reached by applying the latest strategy.
	Dynamics = Role{
		Name:  "dynamics",
		Mode:  prompt.ModeDynamics,
		Build: (*prompt.MainPrompt).DynamicsPrompt,
		Parse: (*prompt.MainPrompt).ParseDynamicsAnswer,
	}

	// ActionReward judges whether the latest strategy moves toward the goal.
	ActionReward = Role{
		Name:  "action-reward",
		Mode:  prompt.ModeDynamics,
		Build: (*prompt.MainPrompt).ActionRewardPrompt,
		Parse: (*prompt.MainPrompt).ParseActionRewardAnswer,
	}
)

// Roles lists every role in the order a step may use them.
var Roles = []Role{Encoder, Policy, Dynamics, ActionReward, Effectuator}

// RoleByName finds a role by its Name.
func RoleByName(name string) (Role, bool) {
	for _, r := range Roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

const (
	ProgressInProgress  = "in-progress"
	ProgressNotSure     = "not-sure"
	ProgressGoalReached = "goal-reached"

	RewardTowards = "towards-the-goal"
	RewardNotSure = "not-sure"
	RewardAway    = "away-from-the-goal"
)
