package reply

import "testing"

type contentResult struct {
	content string
}

func (r *contentResult) Content() string { return r.content }

type textResult struct {
	text string
}

func (r *textResult) Text() string { return r.text }

type richResult struct {
	content string
	text    string
	meta    map[string]any
}

func (r *richResult) Content() string          { return r.content }
func (r *richResult) Text() string             { return r.text }
func (r *richResult) Metadata() map[string]any { return r.meta }

type stringerResult struct{}

func (stringerResult) String() string { return "stringer value" }

func TestNormalizeString(t *testing.T) {
	r := Normalize("plain text")
	if r.Text != "plain text" {
		t.Fatalf("unexpected text: %q", r.Text)
	}
	if len(r.Metadata) != 0 {
		t.Fatalf("expected empty metadata, got %v", r.Metadata)
	}
}

func TestNormalizeNil(t *testing.T) {
	r := Normalize(nil)
	if r.Text != NoContent {
		t.Fatalf("unexpected text: %q", r.Text)
	}
	if len(r.Metadata) != 0 {
		t.Fatalf("expected empty metadata, got %v", r.Metadata)
	}
}

func TestNormalizeContentOnly(t *testing.T) {
	r := Normalize(&contentResult{content: "X"})
	if r.Text != "X" {
		t.Fatalf("unexpected text: %q", r.Text)
	}
	if len(r.Metadata) != 0 {
		t.Fatalf("expected empty metadata, got %v", r.Metadata)
	}
}

func TestNormalizeContentBeatsText(t *testing.T) {
	r := Normalize(&richResult{content: "from content", text: "from text"})
	if r.Text != "from content" {
		t.Fatalf("content field must win, got %q", r.Text)
	}
}

func TestNormalizeTextOnly(t *testing.T) {
	r := Normalize(&textResult{text: "from text"})
	if r.Text != "from text" {
		t.Fatalf("unexpected text: %q", r.Text)
	}
}

func TestNormalizeMetadata(t *testing.T) {
	r := Normalize(&richResult{content: "c", meta: map[string]any{"model": "m-1"}})
	if r.Metadata["model"] != "m-1" {
		t.Fatalf("expected metadata to pass through, got %v", r.Metadata)
	}
}

func TestNormalizeStringerFallback(t *testing.T) {
	r := Normalize(stringerResult{})
	if r.Text != "stringer value" {
		t.Fatalf("unexpected text: %q", r.Text)
	}
}

func TestNormalizeConversionFallback(t *testing.T) {
	r := Normalize(42)
	if r.Text != "42" {
		t.Fatalf("unexpected text: %q", r.Text)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first := Normalize(&textResult{text: "stable"})
	second := Normalize(first.Text)
	if second.Text != first.Text {
		t.Fatalf("re-normalizing text changed it: %q vs %q", second.Text, first.Text)
	}
	if len(second.Metadata) != 0 {
		t.Fatalf("re-normalized string must have empty metadata, got %v", second.Metadata)
	}
}

func TestCoercePriority(t *testing.T) {
	if got := Coerce(&richResult{content: "c", text: "t"}); got != "c" {
		t.Fatalf("expected content first, got %q", got)
	}
	if got := Coerce(&textResult{text: "t"}); got != "t" {
		t.Fatalf("expected text fallback, got %q", got)
	}
	if got := Coerce("s"); got != "s" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestErrorReply(t *testing.T) {
	r := ErrorReply(errFake("boom"))
	if !r.IsError() {
		t.Fatalf("expected error reply")
	}
	if r.Text != "Error: boom" {
		t.Fatalf("unexpected text: %q", r.Text)
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }
