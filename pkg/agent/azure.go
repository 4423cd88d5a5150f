package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/rovelight/scribe/pkg/reply"
)

const defaultAzureAPIVersion = "2024-02-01"

// AzureConfig holds the settings an Azure OpenAI agent is constructed with.
// Deployment is the Azure deployment name and doubles as the model
// identifier. When APIKey is empty the agent falls back to Azure CLI
// credentials; Credential overrides both for tests.
type AzureConfig struct {
	Endpoint     string
	Deployment   string
	APIVersion   string
	APIKey       string
	Instructions string
	MaxTokens    int64
	Credential   azcore.TokenCredential
}

// AzureAgent implements the Agent interface for Azure OpenAI deployments.
// It is the default research agent.
type AzureAgent struct {
	inner *OpenAIAgent
}

// NewAzureAgent creates a new Azure OpenAI agent. Auth precedence: API key
// if configured, else Azure CLI credential.
func NewAzureAgent(cfg AzureConfig) (*AzureAgent, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if cfg.Deployment == "" {
		return nil, fmt.Errorf("azure deployment name is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAzureAPIVersion
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	opts := []option.RequestOption{azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion)}
	switch {
	case cfg.Credential != nil:
		opts = append(opts, azure.WithTokenCredential(cfg.Credential))
	case cfg.APIKey != "":
		opts = append(opts, azure.WithAPIKey(cfg.APIKey))
	default:
		slog.Debug("no azure API key configured, using Azure CLI credential")
		cred, err := azidentity.NewAzureCLICredential(nil)
		if err != nil {
			return nil, fmt.Errorf("azure CLI credential: %w", err)
		}
		opts = append(opts, azure.WithTokenCredential(cred))
	}

	return &AzureAgent{
		inner: &OpenAIAgent{
			client:       openai.NewClient(opts...),
			model:        cfg.Deployment,
			instructions: cfg.Instructions,
			maxTokens:    cfg.MaxTokens,
		},
	}, nil
}

// Name returns the agent identifier.
func (a *AzureAgent) Name() string {
	return "azure"
}

// Invoke sends a prompt to the Azure deployment and returns the reply.
func (a *AzureAgent) Invoke(ctx context.Context, input string) (*reply.Reply, error) {
	r, err := a.inner.Invoke(ctx, input)
	if err != nil {
		return nil, err
	}
	return r.WithMetadata("agent", a.Name()), nil
}

// InvokeStream sends a prompt and yields the response as text deltas.
func (a *AzureAgent) InvokeStream(ctx context.Context, input string) (*Stream, error) {
	return a.inner.InvokeStream(ctx, input)
}
