package prompt

import (
	"fmt"

	"github.com/nbenliogludev/go-world-model-agent/internal/llm"
)

const DefaultEncoderWindow = 3

type Options struct {
	CoordType CoordType
	// history window used in encoding mode; 0 means DefaultEncoderWindow
	EncoderWindow int
	// include the page markup next to the accessibility tree
	UseHTML bool
	// nil means the built-in templates
	Templates *Templates
	// nil means the default action set
	Actions *ActionSpace
}

// MainPrompt assembles the world-model prompts for one step. It owns its
// truncating fragments, so build a new MainPrompt per step.
type MainPrompt struct {
	h       History
	active  string
	opts    Options
	mode    Mode
	history string
	axtree  *Truncater
	html    *Truncater
	errFrag *Fragment
	actions *ActionSpace
	tmpl    *Templates
}

func NewMainPrompt(h History, activeStrategy string, opts Options) (*MainPrompt, error) {
	if opts.EncoderWindow <= 0 {
		opts.EncoderWindow = DefaultEncoderWindow
	}
	if opts.CoordType == "" {
		opts.CoordType = CoordNone
	}

	p := &MainPrompt{
		h:       h,
		active:  activeStrategy,
		opts:    opts,
		mode:    Classify(h.Lengths()),
		actions: opts.Actions,
		tmpl:    opts.Templates,
	}
	if p.actions == nil {
		p.actions = NewActionSpace(nil)
	}
	if p.tmpl == nil {
		p.tmpl = NewTemplates("")
	}

	var err error
	p.history, err = renderHistory(h)
	if err != nil {
		return nil, err
	}
	if p.mode == ModeEncoding {
		if p.history, err = renderHistory(h.window(opts.EncoderWindow)); err != nil {
			return nil, err
		}
	}

	switch p.mode {
	case ModeEncoding, ModeStrategy, ModePolicy:
		obs := h.Observations[len(h.Observations)-1]
		p.axtree = NewAXTree(obs.AXTree, opts.CoordType, "## ", Visible())
		p.html = NewHTML(obs.HTML, "## ", VisibleWhen(opts.UseHTML))
		p.errFrag = NewError(obs.LastActionError, "## ", VisibleWhen(obs.LastActionError != ""))
	}
	return p, nil
}

func (p *MainPrompt) Mode() Mode {
	return p.mode
}

// History returns the rendered history block.
func (p *MainPrompt) History() string {
	return p.history
}

// Shrink drops lines from the page dumps of the current step.
func (p *MainPrompt) Shrink() {
	if p.html != nil {
		p.html.Shrink()
	}
	if p.axtree != nil {
		p.axtree.Shrink()
	}
}

// Current renders the current step for the prompt's mode. An unmatched
// history shape renders nothing.
func (p *MainPrompt) Current() string {
	switch p.mode {
	case ModeEncoding:
		return p.observation()
	case ModeStrategy:
		return p.observation() + currentState(p.lastState())
	case ModePolicy:
		return p.observation() + currentState(p.lastState()) + currentStrategy(p.active)
	case ModeDynamics:
		return stateOnly(p.lastState()) + currentStrategy(p.h.Strategies[len(p.h.Strategies)-1])
	case ModeRollout:
		return stateOnly(p.lastState())
	}
	return ""
}

func (p *MainPrompt) observation() string {
	return "\n# Observation of current step:\n" +
		p.html.Prompt() +
		"AXSTART" + p.axtree.Prompt() + "AXEND" +
		p.errFrag.Prompt() + "\n\n"
}

func (p *MainPrompt) lastState() string {
	return p.h.States[len(p.h.States)-1]
}

func currentState(s string) string {
	return "\n## Current State:\n" + s + "\n"
}

func currentStrategy(s string) string {
	return "\n## Current Strategy:\n" + s + "\n"
}

func stateOnly(s string) string {
	return "\n## Current State:\n" + s + "\n\n"
}

func (p *MainPrompt) withTemplates(v Variant, body string) (string, error) {
	abs, con, err := p.tmpl.Load(v)
	if err != nil {
		return "", err
	}
	return body + abs + con, nil
}

// EffectuatorPrompt asks for the next action.
func (p *MainPrompt) EffectuatorPrompt() (string, error) {
	return p.withTemplates(VariantEffectuator, p.history+p.Current())
}

// EncoderPrompt asks for the state inferred from the latest observation.
func (p *MainPrompt) EncoderPrompt() (string, error) {
	body := p.history + p.Current() + fmt.Sprintf("## Active Strategy:\n%s\n", p.active)
	return p.withTemplates(VariantEncoder, body)
}

// PolicyPrompt asks for the next strategy.
func (p *MainPrompt) PolicyPrompt() (string, error) {
	return p.withTemplates(VariantPolicy, p.history+p.Current())
}

// DynamicsPrompt asks for the state expected after applying the current strategy.
func (p *MainPrompt) DynamicsPrompt() (string, error) {
	return p.withTemplates(VariantDynamics, p.Current())
}

// ActionRewardPrompt asks whether the current strategy moves toward the goal.
func (p *MainPrompt) ActionRewardPrompt() (string, error) {
	return p.withTemplates(VariantActionReward, p.Current())
}

func (p *MainPrompt) ParseEffectuatorAnswer(reply string) (llm.Answer, error) {
	ans, err := llm.ParseTags(reply, llm.TagOptions{
		Keys:          []string{"action", "explanation"},
		MergeMultiple: true,
	})
	if err != nil {
		return nil, err
	}
	if err := p.actions.Validate(ans["action"]); err != nil {
		return nil, err
	}
	return ans, nil
}

func (p *MainPrompt) ParseEncoderAnswer(reply string) (llm.Answer, error) {
	return llm.ParseTags(reply, llm.TagOptions{
		Keys:          []string{"state", "progress"},
		OptionalKeys:  []string{"think"},
		MergeMultiple: true,
	})
}

func (p *MainPrompt) ParsePolicyAnswer(reply string) (llm.Answer, error) {
	return llm.ParseTags(reply, llm.TagOptions{Keys: []string{"strategy"}, MergeMultiple: true})
}

func (p *MainPrompt) ParseDynamicsAnswer(reply string) (llm.Answer, error) {
	return llm.ParseTags(reply, llm.TagOptions{
		Keys:          []string{"next_state", "progress"},
		MergeMultiple: true,
	})
}

func (p *MainPrompt) ParseActionRewardAnswer(reply string) (llm.Answer, error) {
	return llm.ParseTags(reply, llm.TagOptions{
		Keys:          []string{"response"},
		OptionalKeys:  []string{"think"},
		MergeMultiple: true,
	})
}
