package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/agent"
	"github.com/nbenliogludev/go-world-model-agent/internal/browser"
	"github.com/nbenliogludev/go-world-model-agent/internal/llm"
)

const defaultStartURL = "https://example.com"

var (
	startURL string
	goal     string
	maxSteps int
	wait     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agent on a goal",
	Long: `Opens the start page and runs encoder, policy and effectuator steps until
the goal is reached or max steps run out.

URL and goal are asked for on stdin when the flags are empty.`,
	RunE: runAgent,
}

func init() {
	runCmd.Flags().StringVarP(&startURL, "url", "u", "", "start page")
	runCmd.Flags().StringVarP(&goal, "goal", "g", "", "what the agent should do")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "override agent.max_steps")
	runCmd.Flags().BoolVar(&wait, "wait", false, "keep the browser open until Enter is pressed")
}

func runAgent(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reader := bufio.NewReader(os.Stdin)

	if startURL == "" {
		startURL = ask(reader, fmt.Sprintf("Start URL (empty = %s): ", defaultStartURL))
		if startURL == "" {
			startURL = defaultStartURL
		}
	}
	if goal == "" {
		goal = ask(reader, "Describe the task for the agent:\n> ")
		if goal == "" {
			return errors.New("empty goal, nothing to do")
		}
	}
	if maxSteps > 0 {
		cfg.Agent.MaxSteps = maxSteps
	}

	b, err := browser.New(cfg.Browser, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer b.Close()

	if err := b.Goto(ctx, startURL); err != nil {
		return fmt.Errorf("could not navigate to %s: %w", startURL, err)
	}

	client, err := llm.NewOpenAIClient(cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	a := agent.NewAgent(b, client, cfg, logger)
	runner := agent.NewRunner(a, agent.BuildGoalWithEnvironment(goal, startURL))
	runErr := runner.Run(ctx)
	if runErr != nil {
		logger.Error("agent finished with error", zap.String("run_id", runner.RunID()), zap.Error(runErr))
	} else {
		logger.Info("agent finished", zap.String("run_id", runner.RunID()))
	}

	if wait && ctx.Err() == nil {
		fmt.Println("\nPress Enter to close the browser...")
		_, _ = reader.ReadString('\n')
	}
	return runErr
}

func ask(r *bufio.Reader, question string) string {
	fmt.Print(question)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
