package action

import (
	"fmt"
	"strings"
)

type Options struct {
	Subsets []Subset
	// allow more than one call per action string
	MultiAction bool
	// require the whole action string to be calls; otherwise calls are searched for in free text
	Strict bool
	// highlight targets before acting
	DemoMode bool
}

// Set is the collection of actions the agent may emit.
type Set struct {
	opts  Options
	specs []Spec
	index map[string]Spec
}

func New(opts Options) (*Set, error) {
	enabled := make(map[Subset]bool, len(opts.Subsets))
	for _, s := range opts.Subsets {
		switch s {
		case SubsetChat, SubsetInfeas, SubsetNav, SubsetBid:
			enabled[s] = true
		default:
			return nil, fmt.Errorf("unknown action subset %q", s)
		}
	}

	set := &Set{opts: opts, index: make(map[string]Spec)}
	set.add(noopSpec)
	for _, spec := range catalogue {
		if enabled[spec.Subset] {
			set.add(spec)
		}
	}
	return set, nil
}

// NewDefaultSet returns the action set the prompts are written for:
// chat, navigation and element-by-id actions, one action at a time,
// lenient parsing, demo mode on.
func NewDefaultSet() *Set {
	set, _ := New(Options{
		Subsets:  []Subset{SubsetChat, SubsetNav, SubsetBid},
		DemoMode: true,
	})
	return set
}

func (s *Set) add(spec Spec) {
	s.specs = append(s.specs, spec)
	s.index[spec.Name] = spec
}

func (s *Set) Options() Options {
	return s.opts
}

func (s *Set) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

func (s *Set) Names() []string {
	out := make([]string, len(s.specs))
	for i, spec := range s.specs {
		out[i] = spec.Name
	}
	return out
}

func (s *Set) hasSubset(sub Subset) bool {
	for _, spec := range s.specs {
		if spec.Subset == sub {
			return true
		}
	}
	return false
}

// Describe renders the action catalogue for a prompt.
func (s *Set) Describe(withLong, withExamples bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%d different types of actions are available.\n\n", len(s.specs))

	for _, spec := range s.specs {
		sb.WriteString(spec.Signature + "\n")
		if withLong {
			sb.WriteString("    Description: " + spec.Description + "\n")
		}
		if withExamples && len(spec.Examples) > 0 {
			sb.WriteString("    Examples:\n")
			for _, ex := range spec.Examples {
				sb.WriteString("        " + ex + "\n\n")
			}
		}
	}

	if s.opts.MultiAction {
		sb.WriteString("Multiple actions can be provided at once, but will be executed sequentially without any feedback from the page.\n" +
			"More than 2-3 actions usually leads to failure or unexpected behavior.")
	} else {
		sb.WriteString("Only a single action can be provided at once.")
	}

	if ex := s.ExampleAction(false); ex != "" {
		sb.WriteString(" Example:\n" + ex)
	}
	return sb.String()
}

// ExampleAction returns an answer template (abstract) or a realistic answer (concrete).
func (s *Set) ExampleAction(abstract bool) string {
	if abstract {
		if s.opts.MultiAction {
			return "One or several actions, separated by new lines."
		}
		return "One single action to be executed. You can only use one action at a time."
	}

	switch {
	case s.hasSubset(SubsetBid) && s.opts.MultiAction:
		return "# The following actions fill the search field and submit it\n" +
			"fill('a12', 'example with \"quotes\"')\n" +
			"click('a51')"
	case s.hasSubset(SubsetBid):
		return "# I need to click on the search button to look for the product\n" +
			"click('a51')"
	case s.hasSubset(SubsetChat):
		return "# I found the information requested by the user, I will send it to the chat.\n" +
			"send_msg_to_user('The price for a 15\" laptop is 1499 USD.')"
	case s.hasSubset(SubsetNav):
		return "# The product page is not what I expected, going back.\n" +
			"go_back()"
	default:
		return ""
	}
}

// Validate reports whether text compiles against the set. The compiled form is discarded.
func (s *Set) Validate(text string) error {
	_, err := s.Compile(text)
	return err
}
