package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// SummaryInput is what the summary model sees of a finished run.
type SummaryInput struct {
	Goal       string
	ExitReason string
	Duration   string
	FinalURL   string
	FinalState string
	// strategies in the order they were chosen
	Strategies []string
	Messages   []string
	Steps      []string
}

type Client interface {
	// Complete sends the conversation and returns the raw text of the first choice.
	Complete(ctx context.Context, msgs []Message) (string, error)
	SummarizeRun(ctx context.Context, input SummaryInput) (string, error)
}
