package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const DefaultShrinkSpeed = 0.3

// Shrinkable is implemented by prompt parts that can give up text when the
// assembled prompt is over budget. Shrink is called once per iteration, in order.
type Shrinkable interface {
	Shrink()
}

// Truncater is a fragment that starts dropping its trailing lines once it has
// been asked to shrink start times. A Truncater belongs to a single prompt
// build and must not be shared.
type Truncater struct {
	Fragment

	speed   float64
	start   int
	calls   int
	deleted int
}

func NewTruncater(text string, vis Visibility, start int) *Truncater {
	return &Truncater{
		Fragment: Fragment{vis: vis, text: text},
		speed:    DefaultShrinkSpeed,
		start:    start,
	}
}

// WithSpeed sets the fraction of lines removed per shrink call.
func (t *Truncater) WithSpeed(speed float64) *Truncater {
	t.speed = speed
	return t
}

// DeletedLines is the number of lines removed so far.
func (t *Truncater) DeletedLines() int {
	return t.deleted
}

func (t *Truncater) ShrinkCalls() int {
	return t.calls
}

func (t *Truncater) Shrink() {
	defer func() { t.calls++ }()

	if !t.IsVisible() || t.calls < t.start {
		return
	}
	lines := splitLines(t.text)
	if len(lines) == 0 {
		return
	}

	keep := int(float64(len(lines)) * (1 - t.speed))
	t.deleted += len(lines) - keep
	t.text = strings.Join(lines[:keep], "\n") +
		fmt.Sprintf("\n... Deleted %d lines to reduce prompt size.", t.deleted)
}

// splitLines breaks s at line boundaries without keeping them. A trailing
// boundary does not produce an empty last line. Lines are slices of s, so
// bytes that are not valid UTF-8 are kept as they are.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		next := i + size
		switch r {
		case '\r':
			lines = append(lines, s[start:i])
			if next < len(s) && s[next] == '\n' {
				next++
			}
			start = next
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			lines = append(lines, s[start:i])
			start = next
		}
		i = next
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
