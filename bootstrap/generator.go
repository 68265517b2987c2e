package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"pantrypilot"
	"pantrypilot/generator"
	"pantrypilot/generator/bedrock"
	"pantrypilot/generator/mock"
	"pantrypilot/generator/ollama"
)

const (
	GeneratorMock    = "mock"
	GeneratorOllama  = "ollama"
	GeneratorBedrock = "bedrock"
)

type Generator struct {
	*generator.Resilient
	Backend string
}

// NewGenerator picks the backend and guards it with a breaker and a limiter.
func NewGenerator(ctx context.Context, cfg pantrypilot.Config, httpClient pantrypilot.HTTPClient, awsCfg func() (aws.Config, error)) (Generator, error) {
	var (
		next generator.Generator
		err  error
	)

	backend := cfg.Generator.Backend
	switch backend {
	case GeneratorMock, "":
		backend = GeneratorMock
		next = mock.NewGenerator()
	case GeneratorOllama:
		next, err = ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: cfg.Generator.BaseOllamaEndpoint,
			ModelID:      cfg.Model.ModelID,
			HTTPClient:   httpClient,
		})
	case GeneratorBedrock:
		var c aws.Config
		c, err = awsCfg()
		if err == nil {
			next = bedrock.NewClient(bedrockruntime.NewFromConfig(c), bedrock.Options{
				ModelID:     cfg.Model.ModelID,
				MaxTokens:   cfg.Model.MaxTokens,
				Temperature: cfg.Model.Temperature,
				TopP:        cfg.Model.TopP,
			})
		}
	default:
		err = fmt.Errorf("unknown generator backend %q", backend)
	}
	if err != nil {
		return Generator{}, fmt.Errorf("create %s generator: %w", backend, err)
	}

	return Generator{
		Resilient: generator.NewResilient(next, generator.ResilientOptions{
			Name:          backend,
			RatePerSecond: cfg.Generator.RatePerSecond,
			Burst:         cfg.Generator.Burst,
			FailureRatio:  cfg.Generator.BreakerFailureRatio,
			MinRequests:   cfg.Generator.BreakerMinRequests,
			OpenTimeout:   cfg.Generator.BreakerOpenTimeout,
		}),
		Backend: backend,
	}, nil
}
