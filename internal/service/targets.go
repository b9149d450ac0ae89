package service

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/scan-io-git/hposcan/pkg/shared/files"
)

// Meta is caller-supplied display data for a target.
type Meta struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	Author  string `yaml:"author" json:"author"`
}

// Target is one tree supplied by the caller.
type Target struct {
	ID   string `yaml:"id" json:"id"`
	Root string `yaml:"root" json:"root"`
	Meta `yaml:",inline"`
}

type targetsFile struct {
	Targets []Target `yaml:"targets"`
}

// LoadTargets reads a YAML target list. A missing id defaults to the root path.
func LoadTargets(path string) ([]Target, error) {
	path, err := files.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	if err := files.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid targets file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file %q: %w", path, err)
	}

	var tf targetsFile
	if err := yaml.UnmarshalStrict(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to decode targets file %q: %w", path, err)
	}

	seen := make(map[string]bool, len(tf.Targets))
	for i := range tf.Targets {
		t := &tf.Targets[i]
		if t.Root == "" {
			return nil, fmt.Errorf("target #%d: root is required", i+1)
		}
		if t.Root, err = files.ExpandPath(t.Root); err != nil {
			return nil, fmt.Errorf("target #%d: %w", i+1, err)
		}
		if t.ID == "" {
			t.ID = t.Root
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("target #%d: duplicate id %q", i+1, t.ID)
		}
		seen[t.ID] = true
	}
	return tf.Targets, nil
}

// TargetsFromPaths builds targets keyed by their expanded paths.
func TargetsFromPaths(paths []string) ([]Target, error) {
	targets := make([]Target, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		root, err := files.ExpandPath(p)
		if err != nil {
			return nil, fmt.Errorf("failed to expand path %q: %w", p, err)
		}
		if seen[root] {
			continue
		}
		seen[root] = true
		targets = append(targets, Target{ID: root, Root: root})
	}
	return targets, nil
}
