package config

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/relwatch/pkg/domain/types"
	"github.com/m-mizutani/relwatch/pkg/infra/secret"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// LLM holds the severity classifier's model configuration
type LLM struct {
	Provider string
	Interval time.Duration

	OpenAIAPIKey string `masq:"secret"`
	OpenAIModel  string

	GeminiProjectID string
	GeminiLocation  string
	GeminiModel     string
}

// Flags returns CLI flags for LLM configuration
func (c *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider (openai, gemini)",
			Value:       ProviderOpenAI,
			Destination: &c.Provider,
			Sources:     cli.EnvVars("RELWATCH_LLM_PROVIDER"),
		},
		&cli.DurationFlag{
			Name:        "llm-interval",
			Usage:       "Minimum interval between LLM calls (0 disables pacing)",
			Destination: &c.Interval,
			Sources:     cli.EnvVars("RELWATCH_LLM_INTERVAL"),
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key (or gcpsm:// secret reference)",
			Destination: &c.OpenAIAPIKey,
			Sources:     cli.EnvVars("RELWATCH_OPENAI_API_KEY", "OPENAI_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Usage:       "OpenAI model to use",
			Value:       "gpt-4o-mini",
			Destination: &c.OpenAIModel,
			Sources:     cli.EnvVars("RELWATCH_OPENAI_MODEL"),
		},
		&cli.StringFlag{
			Name:        "gemini-project-id",
			Usage:       "Google Cloud Project ID for Gemini",
			Destination: &c.GeminiProjectID,
			Sources:     cli.EnvVars("RELWATCH_GEMINI_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Vertex AI location/region",
			Value:       "us-central1",
			Destination: &c.GeminiLocation,
			Sources:     cli.EnvVars("RELWATCH_GEMINI_LOCATION"),
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model to use",
			Value:       "gemini-2.5-flash",
			Destination: &c.GeminiModel,
			Sources:     cli.EnvVars("RELWATCH_GEMINI_MODEL"),
		},
	}
}

// Validate checks that the selected provider has its required settings
func (c *LLM) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return goerr.New("OpenAI API key is required", goerr.T(types.ErrTagInvalidConfig))
		}
	case ProviderGemini:
		if c.GeminiProjectID == "" {
			return goerr.New("Gemini project ID is required", goerr.T(types.ErrTagInvalidConfig))
		}
	default:
		return goerr.New("unsupported LLM provider",
			goerr.V("provider", c.Provider),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	return nil
}

// NewClient creates the LLM client for the selected provider
func (c *LLM) NewClient(ctx context.Context) (gollem.LLMClient, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Provider {
	case ProviderGemini:
		client, err := gemini.New(ctx, c.GeminiProjectID, c.GeminiLocation,
			gemini.WithModel(c.GeminiModel),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client",
				goerr.V("project_id", c.GeminiProjectID),
				goerr.V("location", c.GeminiLocation),
			)
		}
		return client, nil

	default:
		if err := secret.ResolveAll(ctx, &c.OpenAIAPIKey); err != nil {
			return nil, err
		}
		client, err := openai.New(ctx, c.OpenAIAPIKey,
			openai.WithModel(c.OpenAIModel),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client", goerr.V("model", c.OpenAIModel))
		}
		return client, nil
	}
}
