package prompt

// Mode is the current-step rendering picked from the shape of the history.
type Mode int

const (
	ModeUnmatched Mode = iota
	// latest observation only, short history window
	ModeEncoding
	// latest observation and state
	ModeStrategy
	// latest observation, state and the active strategy
	ModePolicy
	// latest state and strategy, no observation
	ModeDynamics
	// latest state only
	ModeRollout
)

func (m Mode) String() string {
	switch m {
	case ModeEncoding:
		return "encoding"
	case ModeStrategy:
		return "strategy"
	case ModePolicy:
		return "policy"
	case ModeDynamics:
		return "dynamics"
	case ModeRollout:
		return "rollout"
	}
	return "unmatched"
}

// Lengths are the sizes of the observation, state, strategy and action histories.
type Lengths struct {
	Observations int
	States       int
	Strategies   int
	Actions      int
}

// Classify picks the mode for a history shape. The checks run in priority
// order and the first match wins.
func Classify(l Lengths) Mode {
	o, s, t, a := l.Observations, l.States, l.Strategies, l.Actions
	switch {
	case o == s+1 && s == t:
		return ModeEncoding
	case o == s && s == t+1 && t == a:
		return ModeStrategy
	case o == s && s == t && t == a+1:
		return ModePolicy
	case o <= s && s == t && t >= a+1:
		return ModeDynamics
	case o < s && s == t+1:
		return ModeRollout
	}
	return ModeUnmatched
}
