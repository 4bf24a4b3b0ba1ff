package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	summaryTemperature = 0.2
	summaryMaxTokens   = 600
)

const summarySystemPrompt = `You review finished runs of a browser agent. At every step the agent
inferred a state of the page, chose a strategy and sent one browser action.

Write a short report for a person:
1. Was the goal reached? Say what the evidence is.
2. Which strategies were tried, in order.
3. Loops, failed actions or unparsable answers, if any.
4. What should change for the next attempt.`

// Render lays the run out as titled sections. Empty sections are left out.
func (in SummaryInput) Render() string {
	var sb strings.Builder
	section := func(title string, lines ...string) {
		var kept []string
		for _, l := range lines {
			if strings.TrimSpace(l) != "" {
				kept = append(kept, l)
			}
		}
		if len(kept) == 0 {
			return
		}
		fmt.Fprintf(&sb, "## %s\n%s\n\n", title, strings.Join(kept, "\n"))
	}

	section("Goal", in.Goal)
	section("Outcome", in.ExitReason, in.Duration)
	section("Final URL", in.FinalURL)
	section("Final state", in.FinalState)
	section("Strategies", in.Strategies...)
	section("Messages to user", in.Messages...)
	section("Trace", in.Steps...)
	return strings.TrimRight(sb.String(), "\n")
}

func (c *OpenAIClient) SummarizeRun(ctx context.Context, input SummaryInput) (string, error) {
	msgs := []Message{
		{Role: RoleSystem, Content: summarySystemPrompt},
		{Role: RoleUser, Content: input.Render()},
	}
	return c.create(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    toOpenAIMessages(msgs),
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
}
