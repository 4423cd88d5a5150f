package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rovelight/scribe/pkg/agent"
	"github.com/rovelight/scribe/pkg/blogflow"
	"github.com/rovelight/scribe/pkg/config"
	"github.com/rovelight/scribe/pkg/pipeline"
	"github.com/rovelight/scribe/pkg/transcript"
	"github.com/spf13/cobra"
)

var aliases *config.ModelAliases

func main() {
	initLogging()

	rootCmd := &cobra.Command{
		Use:   "scribe",
		Short: "Research a topic and write a blog post with chained AI agents",
		Long: `Scribe chains AI agents into sequential pipelines: a research agent
	gathers structured findings on a topic, and a writer agent turns them
	into a publication-ready blog post. Custom pipelines can be defined
	in YAML and run against any configured provider.`,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(agentsCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogging() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runCmd() *cobra.Command {
	var pipelineFile string
	var saveFlag bool
	var outFlag string

	cmd := &cobra.Command{
		Use:   "run [topic]",
		Short: "Run the research-to-blog pipeline on a topic",
		Long: `Runs the built-in research-to-blog pipeline, or a custom pipeline
	defined in YAML via --pipeline. Prints a preview of each intermediate
	stage to stderr and the final output to stdout.

	Use --save to persist a transcript of the run (run metadata, per-stage
	records and the final output) under the config directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var p *pipeline.Pipeline
			if pipelineFile != "" {
				spec, err := pipeline.LoadSpec(pipelineFile)
				if err != nil {
					return err
				}
				if err := spec.Validate(); err != nil {
					return err
				}
				p, err = assemblePipeline(cfg, spec)
				if err != nil {
					return err
				}
			} else {
				p, err = buildBlogPipeline(cfg)
				if err != nil {
					return err
				}
			}

			start := time.Now()
			result, err := p.Run(context.Background(), topic)
			if err != nil {
				return err
			}

			printResult(p, result)

			if saveFlag {
				outDir := outFlag
				if outDir == "" {
					outDir = cfg.ConfigDir
				}
				runDir, err := saveTranscript(outDir, p, result, topic, start)
				if err != nil {
					return fmt.Errorf("failed to save transcript: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Transcript: %s\n", runDir)
			}

			if result.Status != pipeline.StatusCompleted {
				return fmt.Errorf("pipeline %s failed", p.Name())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pipelineFile, "pipeline", "f", "", "pipeline definition YAML (defaults to the built-in research-blog pipeline)")
	cmd.Flags().BoolVar(&saveFlag, "save", false, "persist a transcript of the run")
	cmd.Flags().StringVar(&outFlag, "out", "", "transcript base directory (defaults to the config directory)")

	return cmd
}

func askCmd() *cobra.Command {
	var agentFlag string
	var modelFlag string
	var streamFlag bool

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a single prompt to one agent",
		Long: `Sends the prompt to a single agent and prints the reply.

	Use --agent to pick a provider (azure, openai, anthropic, google, mock);
	by default the first configured provider is used. Use --stream to print
	the reply incrementally as it is generated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			name := agentFlag
			if name == "" {
				name = defaultAgentName(cfg)
				if name == "" {
					return fmt.Errorf("no agent configured; set an API key or use --agent mock")
				}
			}

			a, err := buildAgent(cfg, name, modelFlag, "")
			if err != nil {
				return err
			}

			ctx := context.Background()
			if streamFlag {
				sa, ok := a.(agent.StreamingAgent)
				if !ok {
					return fmt.Errorf("agent %q does not support streaming", a.Name())
				}
				stream, err := sa.InvokeStream(ctx, prompt)
				if err != nil {
					return err
				}
				defer stream.Close()
				for {
					chunk, ok, err := stream.Next(ctx)
					if err != nil {
						return err
					}
					if !ok {
						break
					}
					fmt.Print(chunk)
				}
				fmt.Println()
				return nil
			}

			r, err := a.Invoke(ctx, prompt)
			if err != nil {
				return err
			}
			fmt.Println(r.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&agentFlag, "agent", "", "agent to use (azure, openai, anthropic, google, mock)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "override model (canonical name or alias)")
	cmd.Flags().BoolVar(&streamFlag, "stream", false, "print the reply incrementally")

	return cmd
}

func agentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List agents, their default models, and aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "AGENT\tDEFAULT MODEL\tSTATUS")
			for _, name := range []string{"anthropic", "azure", "google", "mock", "openai"} {
				status := "no key"
				if cfg.HasAgent(name) {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, defaultModelFor(cfg, name), status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			aliasMap := aliases.ListAliases()
			if len(aliasMap) == 0 {
				return nil
			}

			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ALIAS\tMODEL\tPROVIDER")
			var names []string
			for name := range aliasMap {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, alias := range names {
				model := aliasMap[alias]
				fmt.Fprintf(w, "%s\t%s\t%s\n", alias, model, aliases.GetProviderForModel(model))
			}
			return w.Flush()
		},
	}
}

func interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Run the research-to-blog pipeline in a loop",
		Long:  "Prompts for topics and runs the pipeline on each; type quit, exit or q to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			p, err := buildBlogPipeline(cfg)
			if err != nil {
				return err
			}

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(os.Stderr, "Topic> ")
				if !scanner.Scan() {
					break
				}
				topic := strings.TrimSpace(scanner.Text())
				switch topic {
				case "":
					continue
				case "quit", "exit", "q":
					return scanner.Err()
				}

				result, err := p.Run(context.Background(), topic)
				if err != nil {
					return err
				}
				printResult(p, result)
			}
			return scanner.Err()
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	aliases = config.LoadAliasesWithFallback()
	return cfg, nil
}

// buildAgent constructs a named agent from resolved config. Model may be a
// canonical name or an alias; empty means the provider default.
func buildAgent(cfg *config.Config, name, model, instructions string) (agent.Agent, error) {
	model = aliases.Resolve(model)

	switch name {
	case "azure":
		if err := cfg.ValidateAzure(); err != nil {
			return nil, err
		}
		deployment := cfg.Azure.Deployment
		if model != "" {
			deployment = model
		}
		return agent.NewAzureAgent(agent.AzureConfig{
			Endpoint:     cfg.Azure.Endpoint,
			Deployment:   deployment,
			APIVersion:   cfg.Azure.APIVersion,
			APIKey:       cfg.Azure.APIKey,
			Instructions: instructions,
		})
	case "openai":
		return agent.NewOpenAIAgent(agent.OpenAIConfig{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        model,
			Instructions: instructions,
		})
	case "anthropic":
		return agent.NewAnthropicAgent(agent.AnthropicConfig{
			APIKey:       cfg.AnthropicAPIKey,
			Model:        model,
			Instructions: instructions,
		})
	case "google":
		return agent.NewGoogleAgent(agent.GoogleConfig{
			APIKey:       cfg.GoogleAPIKey,
			Model:        model,
			Instructions: instructions,
		})
	case "mock":
		return agent.NewEchoAgent(), nil
	default:
		return nil, fmt.Errorf("unknown agent %q", name)
	}
}

// defaultAgentName returns the first configured provider, preferring Azure.
func defaultAgentName(cfg *config.Config) string {
	for _, name := range []string{"azure", "openai", "anthropic", "google"} {
		if cfg.HasAgent(name) {
			return name
		}
	}
	return ""
}

func defaultModelFor(cfg *config.Config, name string) string {
	switch name {
	case "azure":
		if cfg.Azure.Deployment != "" {
			return cfg.Azure.Deployment
		}
		return "-"
	case "openai":
		return "gpt-4o"
	case "anthropic":
		return "claude-sonnet-4-20250514"
	case "google":
		return "gemini-2.0-flash"
	case "mock":
		return "echo"
	}
	return "-"
}

// buildBlogPipeline assembles the built-in research-to-blog pipeline on the
// first configured provider.
func buildBlogPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	name := defaultAgentName(cfg)
	if name == "" {
		return nil, fmt.Errorf("no agent configured; set AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_CHAT_DEPLOYMENT_NAME or a provider API key")
	}

	researcher, err := buildAgent(cfg, name, "", blogflow.ResearchInstructions)
	if err != nil {
		return nil, fmt.Errorf("failed to create research agent: %w", err)
	}
	writer, err := buildAgent(cfg, name, "", blogflow.WriterInstructions)
	if err != nil {
		return nil, fmt.Errorf("failed to create writer agent: %w", err)
	}

	return blogflow.New(researcher, writer)
}

// assemblePipeline resolves a YAML pipeline definition into constructed
// agents and stages.
func assemblePipeline(cfg *config.Config, spec *pipeline.Spec) (*pipeline.Pipeline, error) {
	stages := make([]*pipeline.Stage, 0, len(spec.Stages))
	for _, ss := range spec.Stages {
		name := ss.Agent
		if name == "" {
			name = defaultAgentName(cfg)
			if name == "" {
				return nil, fmt.Errorf("stage %s: no agent configured", ss.Name)
			}
		}

		a, err := buildAgent(cfg, name, ss.Model, ss.Instructions)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", ss.Name, err)
		}

		stage := &pipeline.Stage{Name: ss.Name, Agent: a, MaxRetries: ss.MaxRetries}
		if ss.Template != "" {
			tmpl, err := pipeline.NewTemplate(ss.Template)
			if err != nil {
				return nil, fmt.Errorf("stage %s: %w", ss.Name, err)
			}
			stage.Template = tmpl
		}
		stages = append(stages, stage)
	}
	return pipeline.New(spec.Name, stages...)
}

// printResult previews intermediate stages on stderr and prints the final
// stage's text on stdout.
func printResult(p *pipeline.Pipeline, result *pipeline.Result) {
	stages := p.Stages()
	for i, r := range result.Replies {
		if i == len(stages)-1 && result.Status == pipeline.StatusCompleted {
			fmt.Println(r.Text)
			continue
		}
		fmt.Fprintf(os.Stderr, "[%s] %s\n", stages[i].Name, preview(r.Text, 300))
	}
}

func preview(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// saveTranscript persists the run and its stage records.
func saveTranscript(baseDir string, p *pipeline.Pipeline, result *pipeline.Result, topic string, start time.Time) (string, error) {
	writer, err := transcript.NewWriter(baseDir)
	if err != nil {
		return "", err
	}

	if err := writer.WriteRun(transcript.RunRecord{
		Timestamp: start.UTC(),
		Topic:     topic,
		Pipeline:  p.Name(),
		Status:    string(result.Status),
	}); err != nil {
		return "", err
	}

	stages := p.Stages()
	input := topic
	for i, r := range result.Replies {
		stage := stages[i]
		if i > 0 && stage.Template != nil {
			if rendered, err := stage.Template.Render(input); err == nil {
				input = rendered
			}
		}

		record := transcript.StageRecord{
			Name:     stage.Name,
			Agent:    stage.Agent.Name(),
			Input:    input,
			Output:   r.Text,
			Metadata: r.Metadata,
		}
		if model, ok := r.Metadata["model"].(string); ok {
			record.Model = model
		}
		if err := writer.WriteStage(record); err != nil {
			return "", err
		}
		if err := writer.SaveOutput(stage.Name, r.Text); err != nil {
			return "", err
		}
		input = r.Text
	}

	return writer.RunDir(), nil
}
