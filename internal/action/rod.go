package action

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// RunRod executes the program on a rod page, stopping at the first failing call.
// The page should already carry the step's context or timeout.
func (p *Program) RunRod(page *rod.Page, opts ExecOptions) error {
	for _, c := range p.Calls {
		if p.DemoMode {
			if bid := highlightTarget(c); bid != "" {
				_, _ = page.Eval(highlightScript, opts.selector(bid))
				time.Sleep(500 * time.Millisecond)
			}
		}
		if err := runRodCall(page, c, opts); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return nil
}

func runRodCall(page *rod.Page, c Call, opts ExecOptions) error {
	el := func(param string) (*rod.Element, error) {
		return page.Element(opts.selector(c.String(param)))
	}

	switch c.Name {
	case "noop":
		time.Sleep(time.Duration(c.Float("wait_ms")) * time.Millisecond)
		return nil

	case "send_msg_to_user":
		opts.message(MessageToUser, c.String("text"))
		return nil

	case "report_infeasible":
		opts.message(MessageInfeasible, c.String("reason"))
		return nil

	case "scroll":
		return page.Mouse.Scroll(c.Float("delta_x"), c.Float("delta_y"), 1)

	case "fill":
		e, err := el("bid")
		if err != nil {
			return err
		}
		if err := e.SelectAllText(); err != nil {
			return err
		}
		return e.Input(c.String("value"))

	case "select_option":
		e, err := el("bid")
		if err != nil {
			return err
		}
		return e.Select(c.Strings("options"), true, rod.SelectorTypeText)

	case "click", "dblclick":
		e, err := el("bid")
		if err != nil {
			return err
		}
		count := 1
		if c.Name == "dblclick" {
			count = 2
		}
		mods := rodModifiers(c.Strings("modifiers"))
		return withKeysHeld(page, mods, func() error {
			return e.Click(rodButton(c.String("button")), count)
		})

	case "hover":
		e, err := el("bid")
		if err != nil {
			return err
		}
		return e.Hover()

	case "press":
		e, err := el("bid")
		if err != nil {
			return err
		}
		key, mods, err := rodKeyComb(c.String("key_comb"))
		if err != nil {
			return err
		}
		if err := e.Focus(); err != nil {
			return err
		}
		return withKeysHeld(page, mods, func() error {
			return page.Keyboard.Type(key)
		})

	case "focus":
		e, err := el("bid")
		if err != nil {
			return err
		}
		return e.Focus()

	case "clear":
		e, err := el("bid")
		if err != nil {
			return err
		}
		if err := e.SelectAllText(); err != nil {
			return err
		}
		return e.Input("")

	case "drag_and_drop":
		from, err := el("from_bid")
		if err != nil {
			return err
		}
		to, err := el("to_bid")
		if err != nil {
			return err
		}
		return rodDrag(page, from, to)

	case "upload_file":
		e, err := el("bid")
		if err != nil {
			return err
		}
		return e.SetFiles(c.Strings("file"))

	case "go_back":
		if err := page.NavigateBack(); err != nil {
			return err
		}
		return page.WaitLoad()

	case "go_forward":
		if err := page.NavigateForward(); err != nil {
			return err
		}
		return page.WaitLoad()

	case "goto":
		if err := page.Navigate(c.String("url")); err != nil {
			return err
		}
		return page.WaitLoad()
	}

	return errors.New("no rod implementation")
}

// withKeysHeld presses keys in order, runs fn and releases them in reverse.
func withKeysHeld(page *rod.Page, keys []input.Key, fn func() error) error {
	for i, k := range keys {
		if err := page.Keyboard.Press(k); err != nil {
			releaseKeys(page, keys[:i])
			return err
		}
	}
	err := fn()
	releaseKeys(page, keys)
	return err
}

func releaseKeys(page *rod.Page, keys []input.Key) {
	for i := len(keys) - 1; i >= 0; i-- {
		_ = page.Keyboard.Release(keys[i])
	}
}

func rodDrag(page *rod.Page, from, to *rod.Element) error {
	if err := from.ScrollIntoView(); err != nil {
		return err
	}
	start, err := pointInside(from)
	if err != nil {
		return err
	}
	end, err := pointInside(to)
	if err != nil {
		return err
	}
	if err := page.Mouse.MoveTo(start); err != nil {
		return err
	}
	if err := page.Mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if err := page.Mouse.MoveTo(end); err != nil {
		return err
	}
	return page.Mouse.Up(proto.InputMouseButtonLeft, 1)
}

func pointInside(e *rod.Element) (proto.Point, error) {
	shape, err := e.Shape()
	if err != nil {
		return proto.Point{}, err
	}
	p := shape.OnePointInside()
	if p == nil {
		return proto.Point{}, errors.New("element has no visible box")
	}
	return *p, nil
}

func rodButton(name string) proto.InputMouseButton {
	switch name {
	case "right":
		return proto.InputMouseButtonRight
	case "middle":
		return proto.InputMouseButtonMiddle
	}
	return proto.InputMouseButtonLeft
}

func rodModifier(name string) (input.Key, bool) {
	switch name {
	case "Alt":
		return input.AltLeft, true
	case "Control", "ControlOrMeta":
		return input.ControlLeft, true
	case "Meta":
		return input.MetaLeft, true
	case "Shift", "ShiftLeft":
		return input.ShiftLeft, true
	}
	return 0, false
}

func rodModifiers(names []string) []input.Key {
	var keys []input.Key
	for _, n := range names {
		if k, ok := rodModifier(n); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

var rodNamedKeys = map[string]input.Key{
	"Enter":      input.Enter,
	"Backspace":  input.Backspace,
	"Tab":        input.Tab,
	"Escape":     input.Escape,
	"Delete":     input.Delete,
	"Space":      input.Space,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
	"Home":       input.Home,
	"End":        input.End,
	"PageUp":     input.PageUp,
	"PageDown":   input.PageDown,
	"Insert":     input.Insert,
}

// rodKeyComb resolves a key combination into a rod key and the modifiers to hold.
// Only keys on a US keyboard are known to rod.
func rodKeyComb(comb string) (input.Key, []input.Key, error) {
	name, modNames := splitKeyComb(comb)
	mods := rodModifiers(modNames)

	if k, ok := rodNamedKeys[name]; ok {
		return k, mods, nil
	}
	switch {
	case strings.HasPrefix(name, "Key") && len(name) == 4:
		name = strings.ToLower(name[3:])
	case strings.HasPrefix(name, "Digit") && len(name) == 6:
		name = name[5:]
	}
	if r, size := utf8.DecodeRuneInString(name); size == len(name) && r >= ' ' && r <= '~' {
		return input.Key(r), mods, nil
	}
	return 0, nil, fmt.Errorf("unsupported key %q", name)
}
