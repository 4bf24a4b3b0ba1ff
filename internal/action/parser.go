package action

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"go.starlark.net/syntax"
)

var (
	ErrEmptyAction = errors.New("Received an empty action.")
	ErrMultiAction = errors.New("Received a multi-action, only single-actions are allowed.")
)

var parseOptions = &syntax.FileOptions{}

// callStart finds the beginning of something that looks like name(...).
var callStart = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*\s*\(`)

// rawCall is a call as written, before it is bound to a Spec.
type rawCall struct {
	name   string
	args   []any
	kwargs []kwarg
}

type kwarg struct {
	name  string
	value any
}

// Compile turns an action string into a Program, checking every call against the set.
func (s *Set) Compile(text string) (*Program, error) {
	var (
		calls []rawCall
		err   error
	)
	if s.opts.Strict {
		calls, err = parseStrict(text)
	} else {
		calls = searchCalls(text)
	}
	if err != nil {
		return nil, err
	}

	if len(calls) == 0 {
		return nil, ErrEmptyAction
	}
	if !s.opts.MultiAction && len(calls) > 1 {
		return nil, ErrMultiAction
	}

	prog := &Program{DemoMode: s.opts.DemoMode}
	for _, rc := range calls {
		spec, ok := s.index[rc.name]
		if !ok {
			return nil, fmt.Errorf("Invalid action type '%s'.", rc.name)
		}
		call, err := bind(spec, rc)
		if err != nil {
			return nil, err
		}
		prog.Calls = append(prog.Calls, call)
	}
	return prog, nil
}

func parseStrict(text string) ([]rawCall, error) {
	f, err := parseOptions.Parse("action", text, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid action syntax: %w", err)
	}

	calls := make([]rawCall, 0, len(f.Stmts))
	for _, stmt := range f.Stmts {
		es, ok := stmt.(*syntax.ExprStmt)
		if !ok {
			return nil, fmt.Errorf("expected a function call, got %T", stmt)
		}
		ce, ok := es.X.(*syntax.CallExpr)
		if !ok {
			return nil, fmt.Errorf("expected a function call, got %T", es.X)
		}
		rc, err := convertCall(ce)
		if err != nil {
			return nil, err
		}
		calls = append(calls, rc)
	}
	return calls, nil
}

// searchCalls collects every well-formed call in free text, skipping prose.
func searchCalls(text string) []rawCall {
	var calls []rawCall
	pos := 0
	for pos < len(text) {
		loc := callStart.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		open := pos + loc[1] - 1

		end := matchParen(text, open)
		if end < 0 {
			pos = start + 1
			continue
		}

		expr, err := parseOptions.ParseExpr("action", text[start:end+1], 0)
		if err == nil {
			if ce, ok := expr.(*syntax.CallExpr); ok {
				if rc, err := convertCall(ce); err == nil {
					calls = append(calls, rc)
					pos = end + 1
					continue
				}
			}
		}
		pos = start + 1
	}
	return calls
}

// matchParen returns the index of the parenthesis closing the one at open,
// ignoring parentheses inside quoted strings, or -1.
func matchParen(text string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func convertCall(ce *syntax.CallExpr) (rawCall, error) {
	id, ok := ce.Fn.(*syntax.Ident)
	if !ok {
		return rawCall{}, errors.New("action name must be a plain identifier")
	}

	rc := rawCall{name: id.Name}
	for _, arg := range ce.Args {
		if be, ok := arg.(*syntax.BinaryExpr); ok && be.Op == syntax.EQ {
			key, ok := be.X.(*syntax.Ident)
			if !ok {
				return rawCall{}, errors.New("keyword argument name must be an identifier")
			}
			v, err := convertValue(be.Y)
			if err != nil {
				return rawCall{}, err
			}
			rc.kwargs = append(rc.kwargs, kwarg{name: key.Name, value: v})
			continue
		}
		if len(rc.kwargs) > 0 {
			return rawCall{}, errors.New("positional argument follows keyword argument")
		}
		v, err := convertValue(arg)
		if err != nil {
			return rawCall{}, err
		}
		rc.args = append(rc.args, v)
	}
	return rc, nil
}

// convertValue accepts literals only: strings, numbers, booleans, None and lists of those.
func convertValue(e syntax.Expr) (any, error) {
	switch v := e.(type) {
	case *syntax.Literal:
		switch x := v.Value.(type) {
		case string:
			return x, nil
		case int64:
			return float64(x), nil
		case *big.Int:
			f, _ := new(big.Float).SetInt(x).Float64()
			return f, nil
		case float64:
			return x, nil
		}
		return nil, fmt.Errorf("unsupported literal %s", v.Raw)
	case *syntax.UnaryExpr:
		if v.Op != syntax.MINUS && v.Op != syntax.PLUS {
			return nil, fmt.Errorf("unsupported operator %s", v.Op)
		}
		inner, err := convertValue(v.X)
		if err != nil {
			return nil, err
		}
		f, ok := inner.(float64)
		if !ok {
			return nil, errors.New("sign applied to a non-number")
		}
		if v.Op == syntax.MINUS {
			f = -f
		}
		return f, nil
	case *syntax.Ident:
		switch v.Name {
		case "True":
			return true, nil
		case "False":
			return false, nil
		case "None":
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected name %s", v.Name)
	case *syntax.ListExpr:
		return convertList(v.List)
	case *syntax.TupleExpr:
		return convertList(v.List)
	case *syntax.ParenExpr:
		return convertValue(v.X)
	}
	return nil, fmt.Errorf("unsupported argument %T", e)
}

func convertList(items []syntax.Expr) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		v, err := convertValue(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func bind(spec Spec, rc rawCall) (Call, error) {
	if len(rc.args) > len(spec.Params) {
		return Call{}, fmt.Errorf("%s() takes %d arguments but %d were given", spec.Name, len(spec.Params), len(rc.args))
	}

	values := make([]any, len(spec.Params))
	set := make([]bool, len(spec.Params))
	for i, v := range rc.args {
		values[i], set[i] = v, true
	}
	for _, kw := range rc.kwargs {
		i := paramIndex(spec, kw.name)
		if i < 0 {
			return Call{}, fmt.Errorf("%s() got an unexpected keyword argument '%s'", spec.Name, kw.name)
		}
		if set[i] {
			return Call{}, fmt.Errorf("%s() got multiple values for argument '%s'", spec.Name, kw.name)
		}
		values[i], set[i] = kw.value, true
	}

	call := Call{Name: spec.Name, spec: spec, Args: make(map[string]any, len(spec.Params))}
	for i, p := range spec.Params {
		if !set[i] {
			if p.Required {
				return Call{}, fmt.Errorf("%s() missing required argument '%s'", spec.Name, p.Name)
			}
			call.Args[p.Name] = p.Default
			continue
		}
		v, err := coerce(p, values[i])
		if err != nil {
			return Call{}, fmt.Errorf("%s() argument '%s': %w", spec.Name, p.Name, err)
		}
		call.Args[p.Name] = v
		call.given = append(call.given, p.Name)
	}
	return call, nil
}

func paramIndex(spec Spec, name string) int {
	for i, p := range spec.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func coerce(p Param, v any) (any, error) {
	switch p.Kind {
	case KindNumber:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("expected a number, got %s", describeValue(v))
		}
		return f, nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %s", describeValue(v))
		}
		if err := checkEnum(p, s); err != nil {
			return nil, err
		}
		return s, nil
	case KindStrings:
		if s, ok := v.(string); ok {
			if err := checkEnum(p, s); err != nil {
				return nil, err
			}
			return []string{s}, nil
		}
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a string or a list of strings, got %s", describeValue(v))
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of strings, found %s", describeValue(item))
			}
			if err := checkEnum(p, s); err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown parameter kind %d", p.Kind)
}

func checkEnum(p Param, s string) error {
	if len(p.Enum) == 0 {
		return nil
	}
	for _, allowed := range p.Enum {
		if s == allowed {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of %s", s, strings.Join(p.Enum, ", "))
}

func describeValue(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "a list"
	}
	return fmt.Sprintf("%T", v)
}
