package blogflow

import (
	"context"
	"strings"
	"testing"

	"github.com/rovelight/scribe/pkg/agent"
	"github.com/rovelight/scribe/pkg/pipeline"
)

func TestResearchToBlogFlow(t *testing.T) {
	researcher := agent.NewMockAgentWithResponses(
		map[string]string{"Edge Computing in IoT Applications": "Edge computing reduces latency."}, "")
	writer := agent.NewEchoAgent()

	p, err := New(researcher, writer)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result, err := p.Run(context.Background(), "Edge Computing in IoT Applications")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %s", result.Status)
	}
	if len(result.Replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(result.Replies))
	}

	research := result.Reply(p, StageResearch)
	if research.Text != "Edge computing reduces latency." {
		t.Fatalf("unexpected research text: %q", research.Text)
	}

	blog := result.Reply(p, StageBlog)
	if !strings.Contains(blog.Text, "Research Content:\nEdge computing reduces latency.") {
		t.Fatalf("blog prompt must embed research output, got %q", blog.Text)
	}
	if !strings.HasPrefix(blog.Text, "Transform the following research content") {
		t.Fatalf("unexpected blog prompt prefix: %q", blog.Text)
	}
}

func TestBlogTemplateDeterministic(t *testing.T) {
	tmpl := pipeline.MustTemplate(blogTemplate)
	first, err := tmpl.Render("fixed research")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	again, err := tmpl.Render("fixed research")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if first != again {
		t.Fatalf("template render must be deterministic")
	}
}
