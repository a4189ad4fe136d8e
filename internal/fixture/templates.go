package fixture

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agis/taskgen/internal/recurrence"
)

//go:embed default_templates.yaml
var defaultTemplates []byte

// Template is one recurring task in a batch file. Either Recurrence or Spec
// must be set; Recurrence wins when both are.
type Template struct {
	Content    string           `yaml:"content"`
	Recurrence string           `yaml:"recurrence"`
	Project    string           `yaml:"project"`
	Spec       *recurrence.Spec `yaml:"spec"`

	// Line is the template's position in its source file, 1-based.
	Line int `yaml:"-"`
}

type templateFile struct {
	Templates []yaml.Node `yaml:"templates"`
}

// Label names the template in error messages.
func (t Template) Label() string {
	name := t.Content
	if name == "" {
		name = "(unnamed)"
	}
	if t.Line > 0 {
		return fmt.Sprintf("line %d %q", t.Line, name)
	}
	return fmt.Sprintf("%q", name)
}

// Pattern resolves the template to a pattern and the recurrence string
// recorded on its active task.
func (t Template) Pattern() (recurrence.Pattern, string, error) {
	if strings.TrimSpace(t.Content) == "" {
		return recurrence.Pattern{}, "", errors.New("content is required")
	}
	if rec := strings.TrimSpace(t.Recurrence); rec != "" {
		p, err := recurrence.Parse(rec)
		return p, rec, err
	}
	if t.Spec == nil {
		return recurrence.Pattern{}, "", fmt.Errorf("%w: recurrence or spec is required", recurrence.ErrInvalidPattern)
	}
	p, err := recurrence.FromSpec(*t.Spec)
	if err != nil {
		return recurrence.Pattern{}, "", err
	}
	return p, p.String(), nil
}

// LoadTemplates decodes a YAML batch file. A row that does not decode stops
// the load; semantic problems are left for the build to report per row.
func LoadTemplates(r io.Reader) ([]Template, error) {
	var f templateFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	out := make([]Template, 0, len(f.Templates))
	for _, node := range f.Templates {
		var t Template
		if err := node.Decode(&t); err != nil {
			return nil, fmt.Errorf("decode template at line %d: %w", node.Line, err)
		}
		t.Line = node.Line
		out = append(out, t)
	}
	return out, nil
}

// DefaultTemplates returns the built-in template set.
func DefaultTemplates() []Template {
	tpls, err := LoadTemplates(bytes.NewReader(defaultTemplates))
	if err != nil {
		panic(fmt.Sprintf("fixture: invalid default templates: %v", err))
	}
	return tpls
}
