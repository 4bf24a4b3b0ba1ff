package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// Answer maps a tag name to the text found between its opening and closing tags.
type Answer map[string]string

type TagOptions struct {
	Keys          []string
	OptionalKeys  []string
	MergeMultiple bool
}

// ExtractTags returns every occurrence of each key, trimmed, in order of appearance.
// Keys that never occur are absent from the result.
func ExtractTags(text string, keys []string) map[string][]string {
	out := make(map[string][]string)
	for _, key := range keys {
		re := regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(key) + `>(.*?)</` + regexp.QuoteMeta(key) + `>`)
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			out[key] = append(out[key], strings.TrimSpace(m[1]))
		}
	}
	return out
}

// ParseTags pulls the requested tags out of a model reply. Every problem found
// is reported in a single *ParseError, one line per problem.
func ParseTags(text string, opts TagOptions) (Answer, error) {
	optional := make(map[string]bool, len(opts.OptionalKeys))
	for _, k := range opts.OptionalKeys {
		optional[k] = true
	}

	all := make([]string, 0, len(opts.Keys)+len(opts.OptionalKeys))
	all = append(all, opts.Keys...)
	all = append(all, opts.OptionalKeys...)

	found := ExtractTags(text, all)
	ans := make(Answer, len(found))
	var problems []string

	for _, key := range all {
		vals, ok := found[key]
		if !ok {
			if !optional[key] {
				problems = append(problems, fmt.Sprintf("Missing the key <%s> in the answer.", key))
			}
			continue
		}
		ans[key] = vals[0]
		if len(vals) > 1 {
			if opts.MergeMultiple {
				ans[key] = strings.Join(vals, "\n")
			} else {
				problems = append(problems, fmt.Sprintf(
					"Found multiple instances of the key %s. You should have only one of them.", key,
				))
			}
		}
	}

	if len(problems) > 0 {
		return ans, &ParseError{Msg: strings.Join(problems, "\n")}
	}
	return ans, nil
}
