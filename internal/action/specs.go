package action

type Subset string

const (
	SubsetChat   Subset = "chat"
	SubsetInfeas Subset = "infeas"
	SubsetNav    Subset = "nav"
	SubsetBid    Subset = "bid"
)

type ParamKind int

const (
	KindString ParamKind = iota
	KindNumber
	// a single string or a list of strings
	KindStrings
)

type Param struct {
	Name     string
	Kind     ParamKind
	Required bool
	Default  any
	// allowed values for KindString, or for each element of KindStrings
	Enum []string
}

// Spec describes one callable action.
type Spec struct {
	Name        string
	Subset      Subset
	Signature   string
	Description string
	Examples    []string
	Params      []Param
}

var (
	mouseButtons   = []string{"left", "middle", "right"}
	keyModifiers   = []string{"Alt", "Control", "ControlOrMeta", "Meta", "Shift"}
	modifierSuffix = "modifiers: list[Literal['Alt', 'Control', 'ControlOrMeta', 'Meta', 'Shift']] = []"
)

var noopSpec = Spec{
	Name:        "noop",
	Signature:   "noop(wait_ms: float = 1000)",
	Description: "Do nothing, and optionally wait for the given time (in milliseconds).",
	Examples:    []string{"noop()", "noop(500)"},
	Params:      []Param{{Name: "wait_ms", Kind: KindNumber, Default: 1000.0}},
}

// catalogue order is the order actions are described in prompts.
var catalogue = []Spec{
	{
		Name:        "send_msg_to_user",
		Subset:      SubsetChat,
		Signature:   "send_msg_to_user(text: str)",
		Description: "Sends a message to the user.",
		Examples:    []string{"send_msg_to_user('Based on the results of my search, the city was built in 1751.')"},
		Params:      []Param{{Name: "text", Kind: KindString, Required: true}},
	},
	{
		Name:        "report_infeasible",
		Subset:      SubsetInfeas,
		Signature:   "report_infeasible(reason: str)",
		Description: "Notifies the user that their instructions are infeasible.",
		Examples:    []string{"report_infeasible('I cannot follow these instructions because there is no email field in this form.')"},
		Params:      []Param{{Name: "reason", Kind: KindString, Required: true}},
	},
	{
		Name:        "scroll",
		Subset:      SubsetBid,
		Signature:   "scroll(delta_x: float, delta_y: float)",
		Description: "Scroll horizontally and vertically. Amounts in pixels, positive for right or down scrolling, negative for left or up scrolling.",
		Examples:    []string{"scroll(0, 200)", "scroll(-50.2, -100.5)"},
		Params: []Param{
			{Name: "delta_x", Kind: KindNumber, Required: true},
			{Name: "delta_y", Kind: KindNumber, Required: true},
		},
	},
	{
		Name:        "fill",
		Subset:      SubsetBid,
		Signature:   "fill(bid: str, value: str)",
		Description: "Fill out a form field. It focuses the element and triggers an input event with the entered text. It works for <input>, <textarea> and [contenteditable] elements.",
		Examples:    []string{"fill('237', 'example value')", "fill('45', 'multi-line\\nexample')", "fill('a12', 'example with \"quotes\"')"},
		Params: []Param{
			{Name: "bid", Kind: KindString, Required: true},
			{Name: "value", Kind: KindString, Required: true},
		},
	},
	{
		Name:        "select_option",
		Subset:      SubsetBid,
		Signature:   "select_option(bid: str, options: str | list[str])",
		Description: "Select one or multiple options in a <select> element. You can specify option value or label to select. Multiple options can be selected.",
		Examples:    []string{"select_option('a48', 'blue')", "select_option('c48', ['red', 'green', 'blue'])"},
		Params: []Param{
			{Name: "bid", Kind: KindString, Required: true},
			{Name: "options", Kind: KindStrings, Required: true},
		},
	},
	{
		Name:        "click",
		Subset:      SubsetBid,
		Signature:   "click(bid: str, button: Literal['left', 'middle', 'right'] = 'left', " + modifierSuffix + ")",
		Description: "Click an element.",
		Examples:    []string{"click('a51')", "click('b22', button='right')", "click('48', button='middle', modifiers=['Shift'])"},
		Params: []Param{
			{Name: "bid", Kind: KindString, Required: true},
			{Name: "button", Kind: KindString, Default: "left", Enum: mouseButtons},
			{Name: "modifiers", Kind: KindStrings, Default: []string{}, Enum: keyModifiers},
		},
	},
	{
		Name:        "dblclick",
		Subset:      SubsetBid,
		Signature:   "dblclick(bid: str, button: Literal['left', 'middle', 'right'] = 'left', " + modifierSuffix + ")",
		Description: "Double click an element.",
		Examples:    []string{"dblclick('12')", "dblclick('ca42', button='right')", "dblclick('178', button='middle', modifiers=['Shift'])"},
		Params: []Param{
			{Name: "bid", Kind: KindString, Required: true},
			{Name: "button", Kind: KindString, Default: "left", Enum: mouseButtons},
			{Name: "modifiers", Kind: KindStrings, Default: []string{}, Enum: keyModifiers},
		},
	},
	{
		Name:        "hover",
		Subset:      SubsetBid,
		Signature:   "hover(bid: str)",
		Description: "Hover over an element.",
		Examples:    []string{"hover('b8')"},
		Params:      []Param{{Name: "bid", Kind: KindString, Required: true}},
	},
	{
		Name:        "press",
		Subset:      SubsetBid,
		Signature:   "press(bid: str, key_comb: str)",
		Description: "Focus the matching element and press a combination of keys. It accepts the logical key names that are emitted in the keyboardEvent.key property of the keyboard events: Backquote, Minus, Equal, Backslash, Backspace, Tab, Delete, Escape, ArrowDown, End, Enter, Home, Insert, PageDown, PageUp, ArrowRight, ArrowUp, F1 - F12, Digit0 - Digit9, KeyA - KeyZ, etc. You can alternatively specify a single character you'd like to produce such as \"a\" or \"#\". Following modification shortcuts are also supported: Shift, Control, Alt, Meta, ShiftLeft, ControlOrMeta.",
		Examples:    []string{"press('88', 'Backspace')", "press('a26', 'ControlOrMeta+a')", "press('a61', 'Meta+Shift+t')"},
		Params: []Param{
			{Name: "bid", Kind: KindString, Required: true},
			{Name: "key_comb", Kind: KindString, Required: true},
		},
	},
	{
		Name:        "focus",
		Subset:      SubsetBid,
		Signature:   "focus(bid: str)",
		Description: "Focus the matching element.",
		Examples:    []string{"focus('b455')"},
		Params:      []Param{{Name: "bid", Kind: KindString, Required: true}},
	},
	{
		Name:        "clear",
		Subset:      SubsetBid,
		Signature:   "clear(bid: str)",
		Description: "Clear the input field.",
		Examples:    []string{"clear('996')"},
		Params:      []Param{{Name: "bid", Kind: KindString, Required: true}},
	},
	{
		Name:        "drag_and_drop",
		Subset:      SubsetBid,
		Signature:   "drag_and_drop(from_bid: str, to_bid: str)",
		Description: "Perform a drag & drop. Hover the element that will be dragged. Press left mouse button. Move mouse to the element that will receive the drop. Release left mouse button.",
		Examples:    []string{"drag_and_drop('56', '498')"},
		Params: []Param{
			{Name: "from_bid", Kind: KindString, Required: true},
			{Name: "to_bid", Kind: KindString, Required: true},
		},
	},
	{
		Name:        "upload_file",
		Subset:      SubsetBid,
		Signature:   "upload_file(bid: str, file: str | list[str])",
		Description: "Click an element and wait for a \"filechooser\" event, then select one or multiple input files for upload. Relative file paths are resolved relative to the current working directory. An empty list clears the selected files.",
		Examples:    []string{"upload_file('572', '/home/user/my_receipt.pdf')", "upload_file('63', ['/home/bob/Documents/image.jpg', '/home/bob/Documents/file.zip'])"},
		Params: []Param{
			{Name: "bid", Kind: KindString, Required: true},
			{Name: "file", Kind: KindStrings, Required: true},
		},
	},
	{
		Name:        "go_back",
		Subset:      SubsetNav,
		Signature:   "go_back()",
		Description: "Navigate to the previous page in history.",
		Examples:    []string{"go_back()"},
	},
	{
		Name:        "go_forward",
		Subset:      SubsetNav,
		Signature:   "go_forward()",
		Description: "Navigate to the next page in history.",
		Examples:    []string{"go_forward()"},
	},
	{
		Name:        "goto",
		Subset:      SubsetNav,
		Signature:   "goto(url: str)",
		Description: "Navigate to a url.",
		Examples:    []string{"goto('http://www.example.com')"},
		Params:      []Param{{Name: "url", Kind: KindString, Required: true}},
	},
}
