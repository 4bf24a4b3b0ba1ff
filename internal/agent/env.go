package agent

import (
	"net/url"
	"strings"
)

// Environment is the site a run is confined to.
type Environment struct {
	Host     string
	StartURL string
	// path prefix of the start page, empty for the site root
	Section string
}

// ParseEnvironment reads the environment from the start URL. It reports false
// when the URL has no host.
func ParseEnvironment(startURL string) (Environment, bool) {
	u, err := url.Parse(startURL)
	if err != nil || u.Host == "" {
		return Environment{}, false
	}
	return Environment{
		Host:     strings.ToLower(u.Host),
		StartURL: startURL,
		Section:  strings.TrimRight(u.Path, "/"),
	}, true
}

// Frame prefixes goal with the site rules the agent must follow.
func (e Environment) Frame(goal string) string {
	var sb strings.Builder
	sb.WriteString("Site: " + e.Host + "\n")
	sb.WriteString("Start page: " + e.StartURL + "\n")
	if e.Section != "" {
		sb.WriteString("Section: " + e.Section + "\n")
		sb.WriteString("Stay on pages under " + e.Section + " unless the goal needs another part of the site.\n")
	}
	sb.WriteString("Stay on " + e.Host + ". Do not use external search engines.\n\n")
	sb.WriteString("Goal: " + goal)
	return sb.String()
}

// BuildGoalWithEnvironment frames rawGoal with the site of startURL, or
// returns it unchanged when startURL is not an absolute URL.
func BuildGoalWithEnvironment(rawGoal, startURL string) string {
	env, ok := ParseEnvironment(startURL)
	if !ok {
		return rawGoal
	}
	return env.Frame(rawGoal)
}
