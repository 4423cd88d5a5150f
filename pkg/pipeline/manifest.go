package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is the on-disk YAML definition of a pipeline. Agents are referenced
// by name; the caller resolves them to constructed instances and assembles
// the Pipeline.
type Spec struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Stages      []*StageSpec `yaml:"stages"`
}

// StageSpec is one stage entry in a pipeline definition.
type StageSpec struct {
	Name         string `yaml:"name"`
	Agent        string `yaml:"agent,omitempty"`
	Model        string `yaml:"model,omitempty"`
	Instructions string `yaml:"instructions,omitempty"`
	Template     string `yaml:"template,omitempty"`
	MaxRetries   int    `yaml:"max_retries,omitempty"`
}

// LoadSpec reads a pipeline definition from a YAML file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}

	return &spec, nil
}

// Validate checks the pipeline definition for errors.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return &ConfigurationError{Reason: "pipeline name is required"}
	}
	if len(s.Stages) == 0 {
		return &ConfigurationError{Reason: "pipeline must define at least one stage"}
	}

	seen := make(map[string]struct{})
	for i, stage := range s.Stages {
		if stage.Name == "" {
			return &ConfigurationError{Reason: fmt.Sprintf("stage %d has no name", i)}
		}
		if _, ok := seen[stage.Name]; ok {
			return &ConfigurationError{Reason: "duplicate stage name: " + stage.Name}
		}
		seen[stage.Name] = struct{}{}

		if i == 0 && stage.Template != "" {
			return &ConfigurationError{Reason: "first stage receives the topic verbatim and must not have a template"}
		}
		if stage.Template != "" {
			if _, err := NewTemplate(stage.Template); err != nil {
				return &ConfigurationError{Reason: fmt.Sprintf("stage %s template: %v", stage.Name, err)}
			}
		}
		if stage.MaxRetries < 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("stage %s has negative max_retries", stage.Name)}
		}
	}

	return nil
}
