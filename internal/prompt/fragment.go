package prompt

// Visibility decides whether a fragment renders. It is evaluated every time
// the fragment is rendered, so a predicate may change its answer between
// shrink iterations.
type Visibility struct {
	fn func() bool
}

func Visible() Visibility {
	return Visibility{fn: func() bool { return true }}
}

func Hidden() Visibility {
	return Visibility{fn: func() bool { return false }}
}

func VisibleIf(fn func() bool) Visibility {
	if fn == nil {
		return Hidden()
	}
	return Visibility{fn: fn}
}

func VisibleWhen(b bool) Visibility {
	if b {
		return Visible()
	}
	return Hidden()
}

// IsVisible reports the current value. The zero Visibility is visible.
func (v Visibility) IsVisible() bool {
	if v.fn == nil {
		return true
	}
	return v.fn()
}

// Fragment is a unit of prompt text with its own visibility.
type Fragment struct {
	vis      Visibility
	text     string
	abstract string
	concrete string
}

func NewFragment(text string, vis Visibility) *Fragment {
	return &Fragment{vis: vis, text: text}
}

// WithExamples sets the abstract and concrete answer examples.
func (f *Fragment) WithExamples(abstract, concrete string) *Fragment {
	f.abstract = abstract
	f.concrete = concrete
	return f
}

func (f *Fragment) IsVisible() bool {
	return f.vis.IsVisible()
}

func (f *Fragment) Prompt() string {
	return f.hide(f.text)
}

func (f *Fragment) AbstractExample() string {
	return f.hide(f.abstract)
}

func (f *Fragment) ConcreteExample() string {
	return f.hide(f.concrete)
}

func (f *Fragment) hide(s string) string {
	if f.IsVisible() {
		return s
	}
	return ""
}
