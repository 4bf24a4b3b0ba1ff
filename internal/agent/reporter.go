package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/llm"
)

// Reporter logs each step and prints the execution report at the end of a run.
type Reporter struct {
	llm   llm.Client
	goal  string
	log   *zap.Logger
	out   io.Writer
	trace []string

	finalURL string
	messages []string
}

func NewReporter(llmClient llm.Client, goal string, log *zap.Logger) *Reporter {
	return &Reporter{
		llm:  llmClient,
		goal: goal,
		log:  log,
		out:  os.Stdout,
	}
}

// SetOutput redirects the final report.
func (r *Reporter) SetOutput(w io.Writer) {
	r.out = w
}

func (r *Reporter) LogState(step int, url, state, progress string) {
	r.log.Info("state",
		zap.Int("step", step),
		zap.String("url", url),
		zap.String("progress", progress),
	)
	r.log.Debug("state text", zap.String("state", state))
	r.finalURL = url
	r.trace = append(r.trace, fmt.Sprintf("STEP %d | URL=%s | PROGRESS=%s | STATE=%s",
		step, url, strings.ToUpper(progress), oneLine(state)))
}

func (r *Reporter) LogStrategy(step int, strategy string) {
	r.log.Info("strategy", zap.Int("step", step), zap.String("strategy", oneLine(strategy)))
	r.trace = append(r.trace, fmt.Sprintf("STEP %d | STRATEGY=%s", step, oneLine(strategy)))
}

func (r *Reporter) LogLookahead(step int, nextState, reward string) {
	r.log.Info("lookahead",
		zap.Int("step", step),
		zap.String("reward", reward),
	)
	r.log.Debug("predicted state", zap.String("next_state", nextState))
	r.trace = append(r.trace, fmt.Sprintf("STEP %d | PREDICTED=%s | REWARD=%s", step, oneLine(nextState), reward))
}

func (r *Reporter) LogAction(step int, act, explanation string) {
	r.log.Info("action",
		zap.Int("step", step),
		zap.String("action", oneLine(act)),
		zap.String("explanation", oneLine(explanation)),
	)
	r.trace = append(r.trace, fmt.Sprintf("STEP %d | ACTION=%s", step, oneLine(act)))
}

// Message records a message the agent sent to the user.
func (r *Reporter) Message(text string) {
	r.log.Info("message to user", zap.String("text", text))
	r.messages = append(r.messages, text)
}

func (r *Reporter) StepError(step int, err error) {
	r.log.Error("step failed", zap.Int("step", step), zap.Error(err))
	r.trace = append(r.trace, fmt.Sprintf("STEP %d | ERROR=%v", step, err))
}

// Trace returns the step lines recorded so far.
func (r *Reporter) Trace() []string {
	return append([]string(nil), r.trace...)
}

// Report prints the execution report, including a model-written summary.
func (r *Reporter) Report(ctx context.Context, start time.Time, reason ExitReason, mem *StepMemory, traj *Trajectory) {
	duration := time.Since(start).Truncate(time.Millisecond)
	r.log.Info("run finished", zap.String("reason", string(reason)), zap.Duration("duration", duration))

	fmt.Fprintln(r.out, "\n===== EXECUTION REPORT =====")
	fmt.Fprintf(r.out, "Goal: %s\n", r.goal)
	fmt.Fprintf(r.out, "Duration: %s\n", duration)
	fmt.Fprintf(r.out, "Exit reason: %s\n", reason)
	if n := mem.LoopTriggered(); n > 0 {
		fmt.Fprintf(r.out, "Loop guard triggered: %d times\n", n)
	}

	if len(r.messages) > 0 {
		fmt.Fprintln(r.out, "\n--- MESSAGES TO USER ---")
		for _, m := range r.messages {
			fmt.Fprintln(r.out, m)
		}
	}

	fmt.Fprintln(r.out, "\n--- RAW STEP TRACE ---")
	for _, line := range r.trace {
		fmt.Fprintln(r.out, line)
	}

	fmt.Fprintln(r.out, "\n--- LLM SUMMARY ---")
	summary, err := r.llm.SummarizeRun(ctx, llm.SummaryInput{
		Goal:       r.goal,
		ExitReason: humanizeReason(reason),
		Duration:   duration.String(),
		FinalURL:   r.finalURL,
		FinalState: traj.LastState(),
		Strategies: traj.History().Strategies,
		Messages:   r.messages,
		Steps:      append(r.Trace(), mem.FullHistory()...),
	})
	if err != nil {
		r.log.Warn("summary failed", zap.Error(err))
		fmt.Fprintln(r.out, "(failed to generate summary)")
	} else {
		fmt.Fprintln(r.out, summary)
	}

	fmt.Fprintln(r.out, "===== END OF REPORT =====")
}
