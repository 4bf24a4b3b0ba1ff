package action

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

const highlightScript = `(sel) => {
	const el = document.querySelector(sel);
	if (el) {
		el.style.outline = "5px solid red";
		el.style.zIndex = "999999";
		el.scrollIntoView({behavior: "smooth", block: "center", inline: "center"});
	}
}`

// RunPlaywright executes the program on a playwright page, stopping at the first failing call.
func (p *Program) RunPlaywright(page playwright.Page, opts ExecOptions) error {
	for _, c := range p.Calls {
		if p.DemoMode {
			highlightPlaywright(page, c, opts)
		}
		if err := runPlaywrightCall(page, c, opts); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return nil
}

func highlightPlaywright(page playwright.Page, c Call, opts ExecOptions) {
	bid := c.String("bid")
	if bid == "" {
		bid = c.String("from_bid")
	}
	if bid == "" {
		return
	}
	_, _ = page.Evaluate(highlightScript, opts.selector(bid))
	time.Sleep(500 * time.Millisecond)
}

func runPlaywrightCall(page playwright.Page, c Call, opts ExecOptions) error {
	loc := func(param string) playwright.Locator {
		return page.Locator(opts.selector(c.String(param))).First()
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
		return page.Mouse().Wheel(c.Float("delta_x"), c.Float("delta_y"))

	case "fill":
		return loc("bid").Fill(c.String("value"))

	case "select_option":
		values := c.Strings("options")
		_, err := loc("bid").SelectOption(playwright.SelectOptionValues{Values: &values})
		return err

	case "click":
		return loc("bid").Click(playwright.LocatorClickOptions{
			Button:    mouseButton(c.String("button")),
			Modifiers: modifiers(c.Strings("modifiers")),
		})

	case "dblclick":
		return loc("bid").Dblclick(playwright.LocatorDblclickOptions{
			Button:    mouseButton(c.String("button")),
			Modifiers: modifiers(c.Strings("modifiers")),
		})

	case "hover":
		return loc("bid").Hover()

	case "press":
		return loc("bid").Press(c.String("key_comb"))

	case "focus":
		return loc("bid").Focus()

	case "clear":
		return loc("bid").Clear()

	case "drag_and_drop":
		return loc("from_bid").DragTo(loc("to_bid"))

	case "upload_file":
		return loc("bid").SetInputFiles(c.Strings("file"))

	case "go_back":
		_, err := page.GoBack()
		return err

	case "go_forward":
		_, err := page.GoForward()
		return err

	case "goto":
		_, err := page.Goto(c.String("url"))
		return err
	}

	return fmt.Errorf("no playwright implementation")
}

func mouseButton(name string) *playwright.MouseButton {
	if name == "" {
		return nil
	}
	b := playwright.MouseButton(name)
	return &b
}

func modifiers(names []string) []playwright.KeyboardModifier {
	if len(names) == 0 {
		return nil
	}
	out := make([]playwright.KeyboardModifier, len(names))
	for i, n := range names {
		out[i] = playwright.KeyboardModifier(n)
	}
	return out
}
