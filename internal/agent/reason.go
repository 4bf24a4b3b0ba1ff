package agent

// ExitReason says why a run stopped.
type ExitReason string

const (
	ExitGoalReached  ExitReason = "goal reached"
	ExitMaxSteps     ExitReason = "max steps reached"
	ExitInterrupted  ExitReason = "interrupted"
	ExitLLMError     ExitReason = "llm error"
	ExitSnapshotFail ExitReason = "snapshot error"
	ExitFailed       ExitReason = "failed"
)

func humanizeReason(reason ExitReason) string {
	switch reason {
	case ExitGoalReached:
		return "the encoder reported the goal as reached"
	case ExitMaxSteps:
		return "step limit reached"
	case ExitInterrupted:
		return "execution was interrupted by user (Ctrl+C)"
	case ExitLLMError:
		return "LLM client error"
	case ExitSnapshotFail:
		return "page snapshot error"
	default:
		return string(reason)
	}
}
