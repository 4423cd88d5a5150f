package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return path
}

func TestLoadSpec(t *testing.T) {
	path := writeSpec(t, `name: research-blog
description: research a topic, then write a blog post

stages:
  - name: research
    agent: azure
    instructions: "You are a thorough research assistant."
  - name: blog
    agent: openai
    model: gpt-4o
    template: "Write a blog post about: {{ .Text }}"
    max_retries: 2
`)

	spec, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("load spec: %v", err)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(spec.Stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(spec.Stages))
	}
	if spec.Stages[1].MaxRetries != 2 {
		t.Fatalf("expected max_retries to load, got %d", spec.Stages[1].MaxRetries)
	}
}

func TestSpecValidateRejectsEmptyStages(t *testing.T) {
	spec := &Spec{Name: "empty"}
	if err := spec.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSpecValidateRejectsFirstStageTemplate(t *testing.T) {
	spec := &Spec{
		Name: "bad",
		Stages: []*StageSpec{
			{Name: "first", Template: "{{ .Text }}"},
		},
	}
	if err := spec.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSpecValidateRejectsBadTemplate(t *testing.T) {
	spec := &Spec{
		Name: "bad",
		Stages: []*StageSpec{
			{Name: "first"},
			{Name: "second", Template: "{{ .Text"},
		},
	}
	if err := spec.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSpecValidateRejectsDuplicates(t *testing.T) {
	spec := &Spec{
		Name: "dup",
		Stages: []*StageSpec{
			{Name: "same"},
			{Name: "same"},
		},
	}
	if err := spec.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}
