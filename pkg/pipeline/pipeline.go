package pipeline

import (
	"fmt"

	"github.com/rovelight/scribe/pkg/agent"
)

// Stage pairs an agent with an optional input template. The template renders
// the previous stage's normalized text into this stage's input; the first
// stage receives the run topic verbatim and must not carry a template.
type Stage struct {
	Name     string
	Agent    agent.Agent
	Template *Template

	// MaxRetries bounds re-invocations of the agent on transient transport
	// errors. Zero means a single attempt.
	MaxRetries int
}

// ConfigurationError reports an invalid pipeline definition. It is raised at
// construction time and is fatal to pipeline creation.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "pipeline configuration: " + e.Reason
}

// Pipeline runs a fixed ordered list of agents, feeding each stage's
// normalized output through the next stage's template. The stage list is
// immutable after construction; a single Pipeline may serve concurrent runs
// as long as its agents are reentrant.
type Pipeline struct {
	name   string
	stages []*Stage
}

// New creates a pipeline from the given stages. An empty stage list, a nil
// or agent-less stage, or a template on the first stage is a configuration
// error.
func New(name string, stages ...*Stage) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, &ConfigurationError{Reason: "at least one stage is required"}
	}
	seen := make(map[string]struct{}, len(stages))
	for i, stage := range stages {
		if stage == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("stage %d is nil", i)}
		}
		if stage.Agent == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("stage %q has no agent", stage.Name)}
		}
		if stage.Name == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("stage %d has no name", i)}
		}
		if _, ok := seen[stage.Name]; ok {
			return nil, &ConfigurationError{Reason: "duplicate stage name: " + stage.Name}
		}
		seen[stage.Name] = struct{}{}
		if i == 0 && stage.Template != nil {
			return nil, &ConfigurationError{Reason: "first stage receives the topic verbatim and must not have a template"}
		}
	}
	return &Pipeline{name: name, stages: stages}, nil
}

// Name returns the pipeline identifier.
func (p *Pipeline) Name() string {
	return p.name
}

// Stages returns the configured stages in execution order.
func (p *Pipeline) Stages() []*Stage {
	return p.stages
}
