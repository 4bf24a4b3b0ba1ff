package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/browser"
	"github.com/nbenliogludev/go-world-model-agent/internal/config"
	"github.com/nbenliogludev/go-world-model-agent/internal/llm"
)

// fakeLLM replies from a per-role script. The last reply of a script repeats.
type fakeLLM struct {
	replies map[string][]string
	err     error
	calls   map[string][][]llm.Message
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		replies: map[string][]string{},
		calls:   map[string][][]llm.Message{},
	}
}

func (f *fakeLLM) script(role string, replies ...string) *fakeLLM {
	f.replies[role] = replies
	return f
}

// roleOf recognizes the prompt by the answer tags its examples ask for.
func roleOf(msgs []llm.Message) string {
	body := msgs[1].Content
	switch {
	case strings.Contains(body, "<next_state>"):
		return Dynamics.Name
	case strings.Contains(body, "<response>"):
		return ActionReward.Name
	case strings.Contains(body, "<explanation>"):
		return Effectuator.Name
	case strings.Contains(body, "<strategy>"):
		return Policy.Name
	}
	return Encoder.Name
}

func (f *fakeLLM) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	role := roleOf(msgs)
	f.calls[role] = append(f.calls[role], append([]llm.Message(nil), msgs...))

	script := f.replies[role]
	if len(script) == 0 {
		return "", errors.New("no scripted reply for " + role)
	}
	n := len(f.calls[role]) - 1
	if n >= len(script) {
		n = len(script) - 1
	}
	return script[n], nil
}

func (f *fakeLLM) SummarizeRun(context.Context, llm.SummaryInput) (string, error) {
	return "summary", nil
}

// lastPrompt returns the user prompt of the latest call for role.
func (f *fakeLLM) lastPrompt(role string) string {
	calls := f.calls[role]
	if len(calls) == 0 {
		return ""
	}
	return calls[len(calls)-1][1].Content
}

type fakeDriver struct {
	snap        browser.PageSnapshot
	snapErr     error
	execErr     error
	executed    []string
	navigations []string
}

var _ browser.Driver = (*fakeDriver)(nil)

func newFakeDriver() *fakeDriver {
	return &fakeDriver{snap: browser.PageSnapshot{
		URL:   "https://shop.example.com/",
		Title: "Shop",
		Tree:  "RootWebArea 'Shop'\n\t[12] searchbox 'Search'\n\t[13] button 'Go'\n",
	}}
}

func (d *fakeDriver) Goto(_ context.Context, url string) error {
	d.navigations = append(d.navigations, url)
	return nil
}

func (d *fakeDriver) Snapshot(context.Context) (*browser.PageSnapshot, error) {
	if d.snapErr != nil {
		return nil, d.snapErr
	}
	snap := d.snap
	return &snap, nil
}

func (d *fakeDriver) Execute(_ context.Context, prog *action.Program, opts action.ExecOptions) error {
	d.executed = append(d.executed, prog.Code())
	for _, c := range prog.Calls {
		if c.Name == "send_msg_to_user" {
			opts.OnMessage(action.MessageToUser, c.String("text"))
		}
	}
	return d.execErr
}

func (d *fakeDriver) Close() {}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Agent.StepDelayMs = 0
	cfg.Agent.MaxSteps = 5
	cfg.Prompt.Platform = "linux"
	return cfg
}

func newTestRunner(t *testing.T, d browser.Driver, c llm.Client, cfg config.Config) *Runner {
	t.Helper()
	r := NewRunner(NewAgent(d, c, cfg, zap.NewNop()), "Find wireless headphones")
	r.reporter.SetOutput(io.Discard)
	return r
}

func encoderReply(progress string) string {
	return "<think>looking</think>\n<state>Search page with a search box [12].</state>\n<progress>" + progress + "</progress>"
}

const (
	policyReply = "<strategy>Search for wireless headphones.</strategy>"
	clickReply  = "<explanation>Submit the search.</explanation>\n<action>click('13')</action>"
)
