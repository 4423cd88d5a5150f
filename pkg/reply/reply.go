package reply

import (
	"fmt"
	"time"
)

// ErrorPrefix marks replies that carry a failure description instead of
// generated content.
const ErrorPrefix = "Error: "

// NoContent is the canonical text for a reply produced from a nil result.
const NoContent = "No content generated"

// Reply is the canonical output of an agent call. Text is never empty on a
// normalized reply: absent content is represented as NoContent and failures
// as an ErrorPrefix string.
type Reply struct {
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// New creates a reply with the given text and an empty metadata map.
func New(text string) *Reply {
	return &Reply{
		Text:      text,
		Metadata:  make(map[string]any),
		CreatedAt: time.Now().UTC(),
	}
}

// WithMetadata returns the reply after recording a metadata entry.
func (r *Reply) WithMetadata(key string, value any) *Reply {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
	return r
}

// IsError reports whether the reply carries a failure description.
func (r *Reply) IsError() bool {
	return len(r.Text) >= len(ErrorPrefix) && r.Text[:len(ErrorPrefix)] == ErrorPrefix
}

// ErrorReply builds a reply whose text describes a failed call.
func ErrorReply(err error) *Reply {
	if err == nil {
		return New(ErrorPrefix + "unknown failure")
	}
	return New(ErrorPrefix + err.Error())
}

// ContentCarrier is implemented by results that expose a content field.
// Content takes priority over Text during normalization.
type ContentCarrier interface {
	Content() string
}

// TextCarrier is implemented by results that expose a text field.
type TextCarrier interface {
	Text() string
}

// MetadataCarrier is implemented by results that expose response metadata.
type MetadataCarrier interface {
	Metadata() map[string]any
}

// Normalize converts a heterogeneous result value into a canonical Reply.
// Resolution order, first match wins: nil, plain string, already-normalized
// Reply, ContentCarrier, TextCarrier, fmt.Stringer, string conversion.
// Metadata is empty for strings and nil; objects contribute whatever a
// MetadataCarrier exposes.
func Normalize(raw any) *Reply {
	switch v := raw.(type) {
	case nil:
		return New(NoContent)
	case string:
		return New(v)
	case *Reply:
		if v == nil {
			return New(NoContent)
		}
		if v.Metadata == nil {
			v.Metadata = make(map[string]any)
		}
		return v
	}

	r := New(Coerce(raw))
	if m, ok := raw.(MetadataCarrier); ok {
		if meta := m.Metadata(); meta != nil {
			r.Metadata = meta
		}
	}
	return r
}

// Coerce extracts the textual payload from a result value using the
// normalization priority: content field, then text field, then string
// conversion. Plain strings pass through unchanged.
func Coerce(raw any) string {
	switch v := raw.(type) {
	case nil:
		return NoContent
	case string:
		return v
	}
	if c, ok := raw.(ContentCarrier); ok {
		return c.Content()
	}
	if t, ok := raw.(TextCarrier); ok {
		return t.Text()
	}
	if s, ok := raw.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", raw)
}
