package action

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Tasks lowers the program into chromedp actions.
func (p *Program) Tasks(opts ExecOptions) (chromedp.Tasks, error) {
	var tasks chromedp.Tasks
	for _, c := range p.Calls {
		if p.DemoMode {
			if bid := highlightTarget(c); bid != "" {
				tasks = append(tasks,
					chromedp.Evaluate(fmt.Sprintf("(%s)(%q)", highlightScript, opts.selector(bid)), nil),
					chromedp.Sleep(500*time.Millisecond),
				)
			}
		}
		t, err := cdpCall(c, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func highlightTarget(c Call) string {
	if bid := c.String("bid"); bid != "" {
		return bid
	}
	return c.String("from_bid")
}

func cdpCall(c Call, opts ExecOptions) (chromedp.Action, error) {
	sel := opts.selector(c.String("bid"))

	switch c.Name {
	case "noop":
		return chromedp.Sleep(time.Duration(c.Float("wait_ms")) * time.Millisecond), nil

	case "send_msg_to_user":
		text := c.String("text")
		return chromedp.ActionFunc(func(context.Context) error {
			opts.message(MessageToUser, text)
			return nil
		}), nil

	case "report_infeasible":
		reason := c.String("reason")
		return chromedp.ActionFunc(func(context.Context) error {
			opts.message(MessageInfeasible, reason)
			return nil
		}), nil

	case "scroll":
		return chromedp.Evaluate(
			fmt.Sprintf("window.scrollBy(%v, %v);", c.Float("delta_x"), c.Float("delta_y")), nil,
		), nil

	case "fill":
		return chromedp.Tasks{
			chromedp.Clear(sel, chromedp.ByQuery),
			chromedp.SendKeys(sel, c.String("value"), chromedp.ByQuery),
		}, nil

	case "select_option":
		options := c.Strings("options")
		if len(options) != 1 {
			return nil, errors.New("chromedp backend selects a single option only")
		}
		return chromedp.SetValue(sel, options[0], chromedp.ByQuery), nil

	case "click", "dblclick":
		count := int64(1)
		if c.Name == "dblclick" {
			count = 2
		}
		button := input.MouseButton(c.String("button"))
		mods := cdpModifiers(c.Strings("modifiers"))
		return pointerAt(sel, func(ctx context.Context, x, y float64) error {
			return mouseClick(ctx, x, y, button, mods, count)
		}), nil

	case "hover":
		return pointerAt(sel, func(ctx context.Context, x, y float64) error {
			return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
		}), nil

	case "press":
		key, mods := parseKeyComb(c.String("key_comb"))
		return chromedp.Tasks{
			chromedp.Focus(sel, chromedp.ByQuery),
			chromedp.KeyEvent(key, chromedp.KeyModifiers(mods...)),
		}, nil

	case "focus":
		return chromedp.Focus(sel, chromedp.ByQuery), nil

	case "clear":
		return chromedp.Clear(sel, chromedp.ByQuery), nil

	case "drag_and_drop":
		from := opts.selector(c.String("from_bid"))
		to := opts.selector(c.String("to_bid"))
		var fromBox, toBox *dom.BoxModel
		return chromedp.Tasks{
			chromedp.ScrollIntoView(from, chromedp.ByQuery),
			chromedp.Dimensions(from, &fromBox, chromedp.ByQuery),
			chromedp.Dimensions(to, &toBox, chromedp.ByQuery),
			chromedp.ActionFunc(func(ctx context.Context) error {
				fx, fy := center(fromBox)
				tx, ty := center(toBox)
				steps := []*input.DispatchMouseEventParams{
					input.DispatchMouseEvent(input.MouseMoved, fx, fy),
					input.DispatchMouseEvent(input.MousePressed, fx, fy).WithButton(input.Left).WithClickCount(1),
					input.DispatchMouseEvent(input.MouseMoved, tx, ty).WithButton(input.Left),
					input.DispatchMouseEvent(input.MouseReleased, tx, ty).WithButton(input.Left).WithClickCount(1),
				}
				for _, s := range steps {
					if err := s.Do(ctx); err != nil {
						return err
					}
				}
				return nil
			}),
		}, nil

	case "upload_file":
		return chromedp.SetUploadFiles(sel, c.Strings("file"), chromedp.ByQuery), nil

	case "go_back":
		return chromedp.NavigateBack(), nil

	case "go_forward":
		return chromedp.NavigateForward(), nil

	case "goto":
		return chromedp.Navigate(c.String("url")), nil
	}

	return nil, errors.New("no chromedp implementation")
}

// pointerAt scrolls the element into view and calls fn with the center of its content box.
func pointerAt(sel string, fn func(ctx context.Context, x, y float64) error) chromedp.Action {
	var box *dom.BoxModel
	return chromedp.Tasks{
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Dimensions(sel, &box, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			x, y := center(box)
			return fn(ctx, x, y)
		}),
	}
}

func mouseClick(ctx context.Context, x, y float64, button input.MouseButton, mods input.Modifier, count int64) error {
	if button == "" {
		button = input.Left
	}
	if err := input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx); err != nil {
		return err
	}
	for i := int64(1); i <= count; i++ {
		if err := input.DispatchMouseEvent(input.MousePressed, x, y).
			WithButton(button).WithModifiers(mods).WithClickCount(i).Do(ctx); err != nil {
			return err
		}
		if err := input.DispatchMouseEvent(input.MouseReleased, x, y).
			WithButton(button).WithModifiers(mods).WithClickCount(i).Do(ctx); err != nil {
			return err
		}
	}
	return nil
}

func center(box *dom.BoxModel) (float64, float64) {
	if box == nil || len(box.Content) < 8 {
		return 0, 0
	}
	q := box.Content
	return (q[0] + q[2] + q[4] + q[6]) / 4, (q[1] + q[3] + q[5] + q[7]) / 4
}

func cdpModifiers(names []string) input.Modifier {
	var m input.Modifier
	for _, n := range names {
		m |= modifierBit(n)
	}
	return m
}

func modifierBit(name string) input.Modifier {
	switch name {
	case "Alt":
		return input.ModifierAlt
	case "Control", "ControlOrMeta":
		return input.ModifierCtrl
	case "Meta":
		return input.ModifierMeta
	case "Shift", "ShiftLeft":
		return input.ModifierShift
	}
	return 0
}

var namedKeys = map[string]string{
	"Enter":      kb.Enter,
	"Backspace":  kb.Backspace,
	"Tab":        kb.Tab,
	"Escape":     kb.Escape,
	"Delete":     kb.Delete,
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"Home":       kb.Home,
	"End":        kb.End,
	"PageUp":     kb.PageUp,
	"PageDown":   kb.PageDown,
	"Insert":     kb.Insert,
}

// splitKeyComb splits "Control+Shift+t" into the key and its modifier names.
func splitKeyComb(comb string) (string, []string) {
	parts := strings.Split(comb, "+")
	key := parts[len(parts)-1]
	if key == "" && len(parts) > 1 {
		// "Control++" presses the plus key
		key = "+"
		parts = parts[:len(parts)-1]
	}
	return key, parts[:len(parts)-1]
}

// parseKeyComb resolves a key combination into the chromedp key to send and its modifiers.
func parseKeyComb(comb string) (string, []input.Modifier) {
	key, names := splitKeyComb(comb)

	var mods []input.Modifier
	for _, n := range names {
		if m := modifierBit(n); m != 0 {
			mods = append(mods, m)
		}
	}

	if k, ok := namedKeys[key]; ok {
		return k, mods
	}
	if strings.HasPrefix(key, "Key") && len(key) == 4 {
		return strings.ToLower(key[3:]), mods
	}
	if strings.HasPrefix(key, "Digit") && len(key) == 6 {
		return key[5:], mods
	}
	return key, mods
}
