package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/browser"
	"github.com/nbenliogludev/go-world-model-agent/internal/config"
	"github.com/nbenliogludev/go-world-model-agent/internal/llm"
	"github.com/nbenliogludev/go-world-model-agent/internal/prompt"
)

var ErrModeMismatch = errors.New("history shape does not match the requested prompt")

// Agent owns the collaborators of a run: the browser, the model and the
// action catalogue the prompts describe.
type Agent struct {
	browser   browser.Driver
	llm       llm.Client
	actions   *action.Set
	space     *prompt.ActionSpace
	templates *prompt.Templates
	cfg       config.Config
	log       *zap.Logger
}

func NewAgent(b browser.Driver, c llm.Client, cfg config.Config, log *zap.Logger) *Agent {
	actions := action.NewDefaultSet()
	if log == nil {
		log = zap.NewNop()
	}

	return &Agent{
		browser:   b,
		llm:       c,
		actions:   actions,
		space:     prompt.NewActionSpace(actions),
		templates: prompt.NewTemplates(cfg.Prompt.Dir),
		cfg:       cfg,
		log:       log,
	}
}

func (a *Agent) promptOptions() prompt.Options {
	return prompt.Options{
		CoordType:     prompt.CoordType(a.cfg.Prompt.CoordType),
		EncoderWindow: a.cfg.Prompt.EncoderWindow,
		UseHTML:       a.cfg.Prompt.UseHTML,
		Templates:     a.templates,
		Actions:       a.space,
	}
}

// systemMessage frames every world-model call with the goal, and the action
// catalogue when the role emits actions.
func (a *Agent) systemMessage(role Role, goal string) string {
	var sb strings.Builder
	sb.WriteString(prompt.NewSystemPrompt().Prompt())
	sb.WriteString("\n\n")
	sb.WriteString(prompt.NewGoalInstructions(goal, prompt.Visible()).Prompt())
	if role.WithActions {
		sb.WriteString("\n")
		sb.WriteString(a.space.Prompt())
		sb.WriteString(prompt.NewPlatformNote(a.cfg.Prompt.Platform).Prompt())
	}
	return sb.String()
}

// Render builds the messages of a role's prompt from h, fitted to the token
// budget. The prompt is returned so its reply can be parsed.
func (a *Agent) Render(role Role, goal string, h prompt.History, active string) (*prompt.MainPrompt, []llm.Message, error) {
	mp, err := prompt.NewMainPrompt(h, active, a.promptOptions())
	if err != nil {
		return nil, nil, err
	}
	if mp.Mode() != role.Mode {
		return nil, nil, fmt.Errorf("%w: %s needs %s mode, got %s", ErrModeMismatch, role.Name, role.Mode, mp.Mode())
	}

	body, err := prompt.FitToBudget(
		func() (string, error) { return role.Build(mp) },
		mp,
		a.cfg.Prompt.MaxTokens,
		a.cfg.Prompt.MaxShrinkIterations,
	)
	if errors.Is(err, prompt.ErrOverBudget) {
		a.log.Warn("prompt still over budget", zap.String("role", role.Name), zap.Error(err))
	} else if err != nil {
		return nil, nil, err
	}

	a.log.Debug("prompt built",
		zap.String("role", role.Name),
		zap.Stringer("mode", mp.Mode()),
		zap.Int("approx_tokens", prompt.EstimateTokens(body)),
	)
	return mp, []llm.Message{
		{Role: llm.RoleSystem, Content: a.systemMessage(role, goal)},
		{Role: llm.RoleUser, Content: body},
	}, nil
}

// Ask renders the role's prompt, calls the model and parses the reply.
// Replies that fail to parse are sent back with the parse error up to
// agent.max_parse_retries times.
func (a *Agent) Ask(ctx context.Context, role Role, goal string, h prompt.History, active string) (llm.Answer, error) {
	mp, msgs, err := a.Render(role, goal, h, active)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		reply, err := a.llm.Complete(ctx, msgs)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLLMFail, role.Name, err)
		}

		ans, err := role.Parse(mp, reply)
		if err == nil {
			return ans, nil
		}
		if !llm.IsParseError(err) || attempt >= a.cfg.Agent.MaxParseRetries {
			return nil, fmt.Errorf("%s answer: %w", role.Name, err)
		}

		a.log.Warn("could not parse answer, asking again",
			zap.String("role", role.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		msgs = append(msgs,
			llm.Message{Role: llm.RoleAssistant, Content: reply},
			llm.Message{Role: llm.RoleUser, Content: retryMessage(err)},
		)
	}
}

func retryMessage(err error) string {
	return "Your previous answer could not be used:\n" + err.Error() +
		"\n\nAnswer again, following the format of the examples exactly."
}

// Compile turns an action string from the effectuator into a runnable program.
func (a *Agent) Compile(text string) (*action.Program, error) {
	return a.actions.Compile(text)
}
