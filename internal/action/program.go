package action

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBidAttribute is the attribute the page snapshot stamps on interactive elements.
const DefaultBidAttribute = "data-ai-id"

// Program is a compiled action string, ready to run against a page.
type Program struct {
	Calls    []Call
	DemoMode bool
}

// Call is one bound action. Args holds every parameter, defaults included.
type Call struct {
	Name string
	Args map[string]any

	spec  Spec
	given []string
}

type MessageKind string

const (
	MessageToUser     MessageKind = "message"
	MessageInfeasible MessageKind = "infeasible"
)

type ExecOptions struct {
	// defaults to DefaultBidAttribute
	BidAttribute string
	// receives send_msg_to_user and report_infeasible payloads
	OnMessage func(kind MessageKind, text string)
}

func (o ExecOptions) selector(bid string) string {
	attr := o.BidAttribute
	if attr == "" {
		attr = DefaultBidAttribute
	}
	return fmt.Sprintf("[%s=%s]", attr, strconv.Quote(bid))
}

func (o ExecOptions) message(kind MessageKind, text string) {
	if o.OnMessage != nil {
		o.OnMessage(kind, text)
	}
}

func (c Call) String(name string) string {
	s, _ := c.Args[name].(string)
	return s
}

func (c Call) Float(name string) float64 {
	f, _ := c.Args[name].(float64)
	return f
}

func (c Call) Strings(name string) []string {
	ss, _ := c.Args[name].([]string)
	return ss
}

// Code renders the call with the arguments that were given explicitly.
func (c Call) Code() string {
	parts := make([]string, 0, len(c.given))
	positional := true
	for _, p := range c.spec.Params {
		if !contains(c.given, p.Name) {
			positional = false
			continue
		}
		v := repr(c.Args[p.Name])
		if p.Required && positional {
			parts = append(parts, v)
		} else {
			parts = append(parts, p.Name+"="+v)
		}
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Code renders the program as one call per line.
func (p *Program) Code() string {
	lines := make([]string, len(p.Calls))
	for i, c := range p.Calls {
		lines[i] = c.Code()
	}
	return strings.Join(lines, "\n")
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func repr(v any) string {
	switch x := v.(type) {
	case string:
		return quote(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		items := make([]string, len(x))
		for i, s := range x {
			items[i] = quote(s)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case nil:
		return "None"
	}
	return fmt.Sprint(v)
}

// quote prefers single quotes unless the text contains one and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = '"'
	}

	var sb strings.Builder
	sb.WriteByte(q)
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r == rune(q) {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}
