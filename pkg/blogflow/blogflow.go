// Package blogflow assembles the built-in research-to-blog pipeline: a
// research stage that gathers structured findings on a topic, followed by a
// writing stage that turns those findings into a publication-ready post.
package blogflow

import (
	"github.com/rovelight/scribe/pkg/agent"
	"github.com/rovelight/scribe/pkg/pipeline"
)

// ResearchInstructions is the system prompt for the research stage.
const ResearchInstructions = `You are a thorough research assistant. Your role is to:
1. Research the given topic comprehensively
2. Gather factual information from reliable sources
3. Identify key concepts, trends, and insights
4. Organize findings in a clear, structured format
5. Provide citations and references where possible
6. Highlight practical applications and real-world examples

Present your research in a well-organized format that can be used
to create educational content.`

// WriterInstructions is the system prompt for the blog-writing stage.
const WriterInstructions = `You are an expert blog writer and content creator. Your role is to:
1. Transform research content into engaging blog posts
2. Create compelling headlines and introductions
3. Structure content with clear sections and headings
4. Use conversational yet professional tone
5. Include practical examples and actionable insights
6. Format content with proper markdown
7. Ensure content is accessible to target audience
8. Add relevant calls-to-action and conclusions

Create publication-ready blog posts that are both informative and engaging.`

// blogTemplate wraps the research stage's output into the writing stage's
// prompt.
const blogTemplate = `Transform the following research content into an engaging blog post:

Research Content:
{{ .Text }}

Requirements:
- Create a compelling headline and introduction
- Use clear section headers and structure
- Include practical examples and applications
- Make complex concepts accessible
- Ensure proper markdown formatting
- Conclude with key takeaways and next steps

Create a complete, publication-ready blog post.`

// Stage names of the built-in pipeline.
const (
	StageResearch = "research"
	StageBlog     = "blog"
)

// New builds the two-stage research-to-blog pipeline over the given agents.
// The agents are expected to carry ResearchInstructions and
// WriterInstructions respectively; pass them at agent construction.
func New(researcher, writer agent.Agent) (*pipeline.Pipeline, error) {
	return pipeline.New("research-blog",
		&pipeline.Stage{Name: StageResearch, Agent: researcher},
		&pipeline.Stage{Name: StageBlog, Agent: writer, Template: pipeline.MustTemplate(blogTemplate)},
	)
}
