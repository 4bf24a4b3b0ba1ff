package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

//go:embed prompts/*.txt
var builtin embed.FS

var ErrTemplateMissing = errors.New("prompt template missing")

// Variant names a prompt kind. Its templates are <variant>-abs.txt and <variant>-con.txt.
type Variant string

const (
	VariantEffectuator  Variant = "effectuator"
	VariantEncoder      Variant = "encoder"
	VariantPolicy       Variant = "policy"
	VariantDynamics     Variant = "dynamics"
	VariantActionReward Variant = "action-reward"
)

// Templates reads the example blocks appended to each prompt. Files are read
// on every call.
type Templates struct {
	fsys fs.FS
}

// NewTemplates reads from dir, or from the built-in set when dir is empty.
func NewTemplates(dir string) *Templates {
	if dir == "" {
		sub, _ := fs.Sub(builtin, "prompts")
		return &Templates{fsys: sub}
	}
	return &Templates{fsys: os.DirFS(dir)}
}

func NewTemplatesFS(fsys fs.FS) *Templates {
	return &Templates{fsys: fsys}
}

// Load returns the abstract and concrete example text for v.
func (t *Templates) Load(v Variant) (string, string, error) {
	abs, err := t.read(string(v) + "-abs.txt")
	if err != nil {
		return "", "", err
	}
	con, err := t.read(string(v) + "-con.txt")
	if err != nil {
		return "", "", err
	}
	return abs, con, nil
}

func (t *Templates) read(name string) (string, error) {
	b, err := fs.ReadFile(t.fsys, name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateMissing, name, err)
	}
	return string(b), nil
}
