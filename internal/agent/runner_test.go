package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/llm"
	"github.com/nbenliogludev/go-world-model-agent/internal/prompt"
)

func TestRunnerGoalReached(t *testing.T) {
	d := newFakeDriver()
	c := newFakeLLM().
		script(Encoder.Name, encoderReply("in-progress"), encoderReply("Goal-Reached.")).
		script(Policy.Name, policyReply).
		script(Effectuator.Name, clickReply)

	r := newTestRunner(t, d, c, testConfig())
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []string{"click('13')"}, d.executed)
	assert.Equal(t, prompt.Lengths{Observations: 2, States: 2, Strategies: 1, Actions: 1}, r.Trajectory().Lengths())
	assert.Equal(t, "Search for wireless headphones.", r.Trajectory().Active())
	assert.Len(t, c.calls[Encoder.Name], 2)
	assert.Len(t, c.calls[Policy.Name], 1)
	assert.NotEmpty(t, r.RunID())
}

func TestRunnerPromptsCarryTheRun(t *testing.T) {
	d := newFakeDriver()
	c := newFakeLLM().
		script(Encoder.Name, encoderReply("in-progress"), encoderReply("goal-reached")).
		script(Policy.Name, policyReply).
		script(Effectuator.Name, clickReply)

	r := newTestRunner(t, d, c, testConfig())
	require.NoError(t, r.Run(context.Background()))

	eff := c.calls[Effectuator.Name][0]
	assert.Contains(t, eff[0].Content, "# Action space:")
	assert.Contains(t, eff[0].Content, "Find wireless headphones")
	assert.Contains(t, eff[1].Content, "Search for wireless headphones.")

	enc := c.lastPrompt(Encoder.Name)
	assert.Contains(t, enc, "# History of interaction with the task:")
	assert.Contains(t, enc, "## Active Strategy:\nSearch for wireless headphones.")
	assert.Contains(t, enc, "[12] searchbox 'Search'")
	assert.NotContains(t, c.calls[Encoder.Name][0][0].Content, "# Action space:")
}

func TestRunnerParseRetry(t *testing.T) {
	d := newFakeDriver()
	c := newFakeLLM().
		script(Encoder.Name, encoderReply("in-progress"), encoderReply("goal-reached")).
		script(Policy.Name, policyReply).
		script(Effectuator.Name, "<action>teleport('mars')</action>", clickReply)

	r := newTestRunner(t, d, c, testConfig())
	require.NoError(t, r.Run(context.Background()))

	calls := c.calls[Effectuator.Name]
	require.Len(t, calls, 2)
	retry := calls[1]
	require.Len(t, retry, 4)
	assert.Equal(t, llm.RoleAssistant, retry[2].Role)
	assert.Equal(t, "<action>teleport('mars')</action>", retry[2].Content)
	assert.Equal(t, llm.RoleUser, retry[3].Role)
	assert.Contains(t, retry[3].Content, "Answer again")
	assert.Equal(t, []string{"click('13')"}, d.executed)
}

func TestRunnerParseRetriesExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.MaxParseRetries = 1

	c := newFakeLLM().
		script(Encoder.Name, "no tags at all")

	r := newTestRunner(t, newFakeDriver(), c, cfg)
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, llm.IsParseError(err))
	assert.Len(t, c.calls[Encoder.Name], 2)
}

func TestRunnerMaxSteps(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.MaxSteps = 2

	d := newFakeDriver()
	c := newFakeLLM().
		script(Encoder.Name, encoderReply("in-progress")).
		script(Policy.Name, policyReply).
		script(Effectuator.Name,
			"<explanation>type</explanation><action>fill('12', 'headphones')</action>",
			clickReply,
		)

	r := newTestRunner(t, d, c, cfg)
	err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrMaxSteps)
	assert.Equal(t, []string{"fill('12', 'headphones')", "click('13')"}, d.executed)
}

func TestAgentUsesDefaultActionSet(t *testing.T) {
	a := NewAgent(newFakeDriver(), newFakeLLM(), testConfig(), nil)
	want := action.NewDefaultSet()

	assert.Equal(t, want.Names(), a.actions.Names())
	assert.True(t, a.actions.Options().DemoMode)
	assert.Equal(t, prompt.NewActionSpace(nil).Prompt(), a.space.Prompt())

	err := a.space.Validate("report_infeasible('login required')")
	require.Error(t, err)
	assert.True(t, llm.IsParseError(err))
	assert.Contains(t, err.Error(), "Invalid action type 'report_infeasible'.")
	require.NoError(t, a.space.Validate("send_msg_to_user('hi')"))
}

func TestRunnerRejectsInfeasibleReport(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.MaxParseRetries = 1

	d := newFakeDriver()
	c := newFakeLLM().
		script(Encoder.Name, encoderReply("in-progress")).
		script(Policy.Name, policyReply).
		script(Effectuator.Name, "<explanation>no account</explanation><action>report_infeasible('login required')</action>")

	r := newTestRunner(t, d, c, cfg)
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, llm.IsParseError(err))
	assert.Equal(t, ExitFailed, exitReasonFor(err))
	assert.Empty(t, d.executed)
	assert.NotContains(t, c.calls[Effectuator.Name][0][0].Content, "report_infeasible")
}

func TestRunnerMessageToUser(t *testing.T) {
	d := newFakeDriver()
	c := newFakeLLM().
		script(Encoder.Name, encoderReply("in-progress"), encoderReply("goal-reached")).
		script(Policy.Name, policyReply).
		script(Effectuator.Name, "<explanation>answer</explanation><action>send_msg_to_user('Cheapest is $79')</action>")

	r := newTestRunner(t, d, c, testConfig())
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"Cheapest is $79"}, r.reporter.messages)
}

func TestRunnerLLMFailure(t *testing.T) {
	c := newFakeLLM()
	c.err = errors.New("rate limited")

	r := newTestRunner(t, newFakeDriver(), c, testConfig())
	err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrLLMFail)
	assert.Equal(t, ExitLLMError, exitReasonFor(err))
}

func TestRunnerSnapshotFailure(t *testing.T) {
	d := newFakeDriver()
	d.snapErr = errors.New("page crashed")

	r := newTestRunner(t, d, newFakeLLM(), testConfig())
	err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrSnapshotFail)
	assert.Equal(t, ExitSnapshotFail, exitReasonFor(err))
}

func TestRunnerInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t, newFakeDriver(), newFakeLLM(), testConfig())
	require.ErrorIs(t, r.Run(ctx), ErrInterrupted)
}

func TestRunnerActionErrorReachesNextObservation(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.MaxSteps = 2

	d := newFakeDriver()
	d.execErr = errors.New("element 13 is not visible")
	c := newFakeLLM().
		script(Encoder.Name, encoderReply("in-progress")).
		script(Policy.Name, policyReply).
		script(Effectuator.Name, clickReply)

	r := newTestRunner(t, d, c, cfg)
	require.ErrorIs(t, r.Run(context.Background()), ErrMaxSteps)

	assert.NotContains(t, c.calls[Encoder.Name][0][1].Content, "Error from previous action")
	assert.Contains(t, c.calls[Encoder.Name][1][1].Content,
		"## Error from previous action:\nelement 13 is not visible")
	assert.Contains(t, r.mem.FullHistory(), "ACTION ERROR at step 1: element 13 is not visible")
}

func TestRunnerLoopGuard(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.MaxSteps = 4
	cfg.Agent.LoopThreshold = 2

	d := newFakeDriver()
	c := newFakeLLM().
		script(Encoder.Name, encoderReply("in-progress")).
		script(Policy.Name, policyReply).
		script(Effectuator.Name, clickReply)

	r := newTestRunner(t, d, c, cfg)
	require.ErrorIs(t, r.Run(context.Background()), ErrMaxSteps)

	assert.Len(t, d.executed, 2)
	assert.Equal(t, 2, r.mem.LoopTriggered())
	assert.Contains(t, c.lastPrompt(Encoder.Name), "has already been executed 2 times")
	assert.Equal(t, prompt.Lengths{Observations: 4, States: 4, Strategies: 4, Actions: 4}, r.Trajectory().Lengths())
}

func TestRunnerLookahead(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.Lookahead = true

	d := newFakeDriver()
	c := newFakeLLM().
		script(Encoder.Name, encoderReply("in-progress"), encoderReply("goal-reached")).
		script(Policy.Name, policyReply).
		script(Effectuator.Name, clickReply).
		script(Dynamics.Name, "<next_state>Results for wireless headphones are listed.</next_state><progress>in-progress</progress>").
		script(ActionReward.Name, "<think>search helps</think><response>Towards-the-goal</response>")

	r := newTestRunner(t, d, c, cfg)
	require.NoError(t, r.Run(context.Background()))

	require.Len(t, c.calls[Dynamics.Name], 1)
	require.Len(t, c.calls[ActionReward.Name], 1)
	assert.Contains(t, c.lastPrompt(Dynamics.Name), "Search for wireless headphones.")
	assert.NotContains(t, c.lastPrompt(Dynamics.Name), "[12] searchbox")
	assert.Contains(t, r.reporter.Trace(),
		"STEP 1 | PREDICTED=Results for wireless headphones are listed. | REWARD="+RewardTowards)
}

func TestAskModeMismatch(t *testing.T) {
	a := NewAgent(newFakeDriver(), newFakeLLM(), testConfig(), zap.NewNop())

	traj := NewTrajectory("goal")
	traj.Observe(prompt.Observation{AXTree: "tree", URL: "https://example.com"})

	_, err := a.Ask(context.Background(), Policy, "goal", traj.History(), "")
	require.ErrorIs(t, err, ErrModeMismatch)
	assert.Contains(t, err.Error(), "policy needs")
}

func TestAskRejectsBadShape(t *testing.T) {
	a := NewAgent(newFakeDriver(), newFakeLLM(), testConfig(), zap.NewNop())

	h := prompt.History{States: []string{"a", "b"}}
	_, err := a.Ask(context.Background(), Encoder, "goal", h, "")
	require.ErrorIs(t, err, prompt.ErrHistoryShape)
}

func TestAgentCompile(t *testing.T) {
	a := NewAgent(newFakeDriver(), newFakeLLM(), testConfig(), nil)

	prog, err := a.Compile("click('13')\nscroll(0, 200)")
	require.NoError(t, err)
	assert.Equal(t, "click('13')\nscroll(0, 200)", prog.Code())

	_, err = a.Compile("teleport('mars')")
	require.Error(t, err)
}

func TestNormalizeLabel(t *testing.T) {
	cases := map[string]string{
		"goal-reached":       "goal-reached",
		"  Goal-Reached. ":   "goal-reached",
		"\"in-progress\"":    "in-progress",
		"not-sure\nbecause":  "not-sure",
		"`towards-the-goal`": "towards-the-goal",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeLabel(in), "input %q", in)
	}
}
