package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nbenliogludev/go-world-model-agent/internal/agent"
	"github.com/nbenliogludev/go-world-model-agent/internal/prompt"
)

var (
	historyPath string
	roleName    string
	withSystem  bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the prompt a role would get for a saved history",
	Long: `Reads a history file (YAML or JSON) and prints the prompt of one role
without calling the model or opening a browser.

The history must have the shape the role expects, for example an encoder
prompt needs one more observation than states.`,
	Example: `  agent-cli render --history run.yaml --role policy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := agent.RoleByName(roleName)
		if !ok {
			return fmt.Errorf("unknown role %q, want one of %s", roleName, roleNames())
		}
		hf, err := readHistoryFile(historyPath)
		if err != nil {
			return err
		}
		return renderPrompt(cmd.OutOrStdout(), role, hf)
	},
}

func init() {
	renderCmd.Flags().StringVar(&historyPath, "history", "", "history file")
	renderCmd.Flags().StringVarP(&roleName, "role", "r", agent.Encoder.Name, "role: "+roleNames())
	renderCmd.Flags().BoolVar(&withSystem, "system", false, "also print the system message")
	_ = renderCmd.MarkFlagRequired("history")
}

// historyFile is the on-disk form of a run's history.
type historyFile struct {
	Goal         string            `yaml:"goal"`
	Active       string            `yaml:"active_strategy"`
	Observations []observationFile `yaml:"observations"`
	States       []string          `yaml:"states"`
	Strategies   []string          `yaml:"strategies"`
	Actions      []string          `yaml:"actions"`
}

type observationFile struct {
	AXTree          string `yaml:"axtree"`
	HTML            string `yaml:"html"`
	URL             string `yaml:"url"`
	LastActionError string `yaml:"last_action_error"`
}

func (f historyFile) history() prompt.History {
	h := prompt.History{
		States:     f.States,
		Strategies: f.Strategies,
		Actions:    f.Actions,
	}
	for _, o := range f.Observations {
		h.Observations = append(h.Observations, prompt.Observation{
			Goal:            f.Goal,
			AXTree:          o.AXTree,
			HTML:            o.HTML,
			URL:             o.URL,
			LastActionError: o.LastActionError,
		})
	}
	return h
}

func readHistoryFile(path string) (historyFile, error) {
	var hf historyFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return hf, err
	}
	// JSON documents are valid YAML
	if err := yaml.Unmarshal(raw, &hf); err != nil {
		return hf, fmt.Errorf("parse %s: %w", path, err)
	}
	return hf, nil
}

func renderPrompt(w io.Writer, role agent.Role, hf historyFile) error {
	a := agent.NewAgent(nil, nil, cfg, logger)
	h := hf.history()
	_, msgs, err := a.Render(role, hf.Goal, h, hf.Active)
	if err != nil {
		return fmt.Errorf("%s prompt (%s mode history): %w", role.Name, prompt.Classify(h.Lengths()), err)
	}

	if withSystem {
		fmt.Fprintf(w, "===== SYSTEM =====\n%s\n", msgs[0].Content)
		fmt.Fprintln(w, "===== USER =====")
	}
	fmt.Fprintln(w, msgs[1].Content)
	return nil
}

func roleNames() string {
	names := make([]string, len(agent.Roles))
	for i, r := range agent.Roles {
		names[i] = r.Name
	}
	return strings.Join(names, ", ")
}
