package rules

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// FileRule is one entry of a rule extension file. Exactly one of Literal or Pattern must be set.
type FileRule struct {
	Literal     string `yaml:"literal,omitempty"`
	Pattern     string `yaml:"pattern,omitempty"`
	Category    string `yaml:"category,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// File is the YAML layout of a rule extension file.
type File struct {
	Rules        []FileRule `yaml:"rules"`
	Suppressions []string   `yaml:"suppressions"`
}

// Extend registers the file's rules and suppressions in declaration order.
func (f *File) Extend(rs *RuleSet) error {
	for i, r := range f.Rules {
		switch {
		case r.Literal != "" && r.Pattern != "":
			return WrapMisconfigured("rule #%d sets both literal and pattern", i+1)
		case r.Literal != "":
			if err := rs.RegisterLiteral(r.Literal); err != nil {
				return err
			}
		case r.Pattern != "":
			if err := rs.RegisterPattern(r.Pattern, r.Category, r.Description); err != nil {
				return fmt.Errorf("rule #%d: %w", i+1, err)
			}
		default:
			return WrapMisconfigured("rule #%d has neither literal nor pattern", i+1)
		}
	}
	for _, s := range f.Suppressions {
		rs.RegisterSuppression(s)
	}
	return nil
}

// LoadFile reads a rule extension file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to decode rules file %q: %v", ErrRuleEngineMisconfigured, path, err)
	}
	return &f, nil
}
