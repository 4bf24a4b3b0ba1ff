package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/prompt"
)

// executeStep observes the page, runs encoder -> policy -> effectuator and
// executes the resulting action. It reports true when the goal is reached.
func (r *Runner) executeStep(ctx context.Context, step int) (bool, error) {
	r.log.Info("step", zap.Int("step", step))

	snap, err := r.agent.browser.Snapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSnapshotFail, err)
	}
	r.traj.Observe(prompt.Observation{
		AXTree:          snap.Tree,
		HTML:            snap.HTML,
		URL:             snap.URL,
		LastActionError: r.lastErr,
	})
	r.lastErr = ""

	enc, err := r.agent.Ask(ctx, Encoder, r.goal, r.traj.History(), r.traj.Active())
	if err != nil {
		return false, err
	}
	progress := normalizeLabel(enc["progress"])
	r.traj.AddState(enc["state"])
	r.reporter.LogState(step, snap.URL, enc["state"], progress)
	if progress == ProgressGoalReached {
		return true, nil
	}

	pol, err := r.agent.Ask(ctx, Policy, r.goal, r.traj.History(), r.traj.Active())
	if err != nil {
		return false, err
	}
	r.traj.AddStrategy(pol["strategy"])
	r.reporter.LogStrategy(step, pol["strategy"])

	if r.agent.cfg.Agent.Lookahead {
		r.lookahead(ctx, step)
	}

	eff, err := r.agent.Ask(ctx, Effectuator, r.goal, r.traj.History(), r.traj.Active())
	if err != nil {
		return false, err
	}
	act := eff["action"]
	r.traj.AddAction(act)
	r.reporter.LogAction(step, act, eff["explanation"])

	if blocked, reason := r.mem.ShouldBlock(snap.URL, act); blocked {
		r.log.Warn("loop guard blocked action", zap.String("action", oneLine(act)))
		r.mem.MarkLoopTriggered()
		r.mem.AddSystemNote("LOOP GUARD: " + reason)
		r.lastErr = reason
		return false, nil
	}

	if err := r.execute(ctx, act); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		r.log.Warn("action failed", zap.String("action", oneLine(act)), zap.Error(err))
		r.lastErr = err.Error()
		r.mem.AddSystemNote(fmt.Sprintf("ACTION ERROR at step %d: %v", step, err))
	}
	r.mem.Add(step, snap.URL, act)
	return false, nil
}

func (r *Runner) execute(ctx context.Context, act string) error {
	prog, err := r.agent.Compile(act)
	if err != nil {
		return err
	}
	return r.agent.browser.Execute(ctx, prog, action.ExecOptions{OnMessage: r.onMessage})
}

func (r *Runner) onMessage(kind action.MessageKind, text string) {
	if kind == action.MessageToUser {
		r.reporter.Message(text)
	}
}

// lookahead asks the world model what the new strategy will lead to and
// whether it helps. The answers are reported, never acted on.
func (r *Runner) lookahead(ctx context.Context, step int) {
	h := r.traj.Imagined()

	dyn, err := r.agent.Ask(ctx, Dynamics, r.goal, h, r.traj.Active())
	if err != nil {
		r.log.Warn("dynamics failed", zap.Error(err))
		return
	}
	rew, err := r.agent.Ask(ctx, ActionReward, r.goal, h, r.traj.Active())
	if err != nil {
		r.log.Warn("action reward failed", zap.Error(err))
		return
	}
	r.reporter.LogLookahead(step, dyn["next_state"], normalizeLabel(rew["response"]))
}

// normalizeLabel reduces answers like `"Goal-Reached".` to goal-reached.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, " \t\"'`.")
}
