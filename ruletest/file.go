package ruletest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is a test file. Variables given at the file level are shared by all
// cases; a case's own variables are merged over them.
//
//	vars:
//	  rate: 0.2
//	tests:
//	  - name: tax on a small order
//	    expression: "round(total * rate)"
//	    vars: {total: 10}
//	    expect: 2
//	  - name: missing total
//	    expression: "total * rate"
//	    error: "Variable is not defined"
type File struct {
	Vars            map[string]any `yaml:"vars"`
	AllowAssignment bool           `yaml:"allowAssignment"`
	AllowStatements bool           `yaml:"allowStatements"`
	Tests           []Case         `yaml:"tests"`
}

// Case is a single test. Exactly one of Expect and Error is checked: when
// Error is set, evaluation must fail with a message containing it.
type Case struct {
	Name       string         `yaml:"name"`
	Expression string         `yaml:"expression"`
	Vars       map[string]any `yaml:"vars"`
	Expect     any            `yaml:"expect"`
	Error      string         `yaml:"error"`
	Skip       string         `yaml:"skip"`
	Line       int            `yaml:"-"`
}

// UnmarshalYAML records the line of each case for failure messages.
func (c *Case) UnmarshalYAML(node *yaml.Node) error {
	type plain Case
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Line = node.Line
	return nil
}

// LoadFile reads and parses a test file.
func LoadFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i, c := range f.Tests {
		if c.Expression == "" {
			return nil, fmt.Errorf("line %d: test %q has no expression", c.Line, c.Name)
		}
		if c.Name == "" {
			f.Tests[i].Name = fmt.Sprintf("test_%d", i+1)
		}
	}
	return &f, nil
}
