package agent

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInterrupted  = errors.New("execution interrupted")
	ErrMaxSteps     = errors.New("max steps reached")
	ErrSnapshotFail = errors.New("snapshot error")
	ErrLLMFail      = errors.New("llm error")
)

// Runner drives one goal through the encoder, policy and effectuator until
// the goal is reached or the step budget runs out.
type Runner struct {
	agent    *Agent
	goal     string
	maxSteps int
	traj     *Trajectory
	mem      *StepMemory
	reporter *Reporter
	runID    string
	log      *zap.Logger

	// error from the last executed action, shown with the next observation
	lastErr string
}

func NewRunner(a *Agent, goal string) *Runner {
	runID := uuid.NewString()
	log := a.log.With(zap.String("run_id", runID))
	return &Runner{
		agent:    a,
		goal:     goal,
		maxSteps: a.cfg.Agent.MaxSteps,
		traj:     NewTrajectory(goal),
		mem:      NewStepMemory(10, a.cfg.Agent.LoopThreshold),
		reporter: NewReporter(a.llm, goal, log),
		runID:    runID,
		log:      log,
	}
}

func (r *Runner) RunID() string {
	return r.runID
}

func (r *Runner) Trajectory() *Trajectory {
	return r.traj
}

// Run executes steps until the goal is reached. Cancelling ctx interrupts the
// run between steps.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	r.log.Info("run started", zap.String("goal", r.goal), zap.Int("max_steps", r.maxSteps))

	for step := 1; step <= r.maxSteps; step++ {
		if ctx.Err() != nil {
			r.reporter.Report(context.WithoutCancel(ctx), start, ExitInterrupted, r.mem, r.traj)
			return ErrInterrupted
		}

		finished, err := r.executeStep(ctx, step)
		if err != nil {
			reason := exitReasonFor(err)
			if ctx.Err() != nil {
				reason, err = ExitInterrupted, ErrInterrupted
			}
			r.reporter.StepError(step, err)
			r.reporter.Report(context.WithoutCancel(ctx), start, reason, r.mem, r.traj)
			return err
		}
		if finished {
			r.reporter.Report(ctx, start, ExitGoalReached, r.mem, r.traj)
			return nil
		}

		if err := sleep(ctx, time.Duration(r.agent.cfg.Agent.StepDelayMs)*time.Millisecond); err != nil {
			r.reporter.Report(context.WithoutCancel(ctx), start, ExitInterrupted, r.mem, r.traj)
			return ErrInterrupted
		}
	}

	r.reporter.Report(ctx, start, ExitMaxSteps, r.mem, r.traj)
	return ErrMaxSteps
}

func exitReasonFor(err error) ExitReason {
	switch {
	case errors.Is(err, ErrSnapshotFail):
		return ExitSnapshotFail
	case errors.Is(err, ErrLLMFail):
		return ExitLLMError
	}
	return ExitFailed
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
