package main

import (
	"context"
	"fmt"
	"log"

	"github.com/nana-intelligence/agent-juliette/internal/config"
	"github.com/nana-intelligence/agent-juliette/internal/email"
	"github.com/nana-intelligence/agent-juliette/internal/llm"
	"github.com/nana-intelligence/agent-juliette/internal/mailer"
	"github.com/nana-intelligence/agent-juliette/internal/pipeline"
	"github.com/nana-intelligence/agent-juliette/internal/quote"
	"github.com/nana-intelligence/agent-juliette/internal/rendering"
	"github.com/nana-intelligence/agent-juliette/internal/research"
	"github.com/nana-intelligence/agent-juliette/internal/retrieval"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

// agent bundles everything a command needs to run the pipeline.
type agent struct {
	llm          llm.Client
	retriever    *retrieval.Retriever
	orchestrator *pipeline.Orchestrator
}

func (a *agent) Close() {
	if a.retriever != nil {
		if err := a.retriever.Close(); err != nil {
			log.Printf("failed to close retriever: %v", err)
		}
	}
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			log.Printf("failed to close llm client: %v", err)
		}
	}
}

// buildAgent wires the pipeline from configuration. Staging degrades to a
// disabled stager when Gmail credentials are not configured, so the quote
// document is still produced.
func buildAgent(ctx context.Context, cfg *config.Config) (*agent, error) {
	client, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	retriever, err := retrieval.New(retrieval.Config{
		Host:       cfg.QdrantHost,
		Port:       cfg.QdrantPort,
		APIKey:     cfg.QdrantAPIKey,
		UseTLS:     cfg.QdrantUseTLS,
		Collection: cfg.QdrantCollection,
	}, client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	renderer, err := rendering.NewRenderer(cfg.OutputDir)
	if err != nil {
		_ = retriever.Close()
		_ = client.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	var pipelineRenderer pipeline.Renderer = renderer
	if cfg.EnablePDF {
		pipelineRenderer = &pdfRenderer{inner: renderer}
	}

	var stager pipeline.Stager = disabledStager{}
	if cfg.StagingEnabled() {
		stager, err = buildStager(ctx, cfg)
		if err != nil {
			// The agent still produces quote documents without a mailbox.
			log.Printf("gmail staging unavailable: %v", err)
			stager = disabledStager{}
		}
	}

	researcher := research.NewResearcher(client)
	researcher.EnableBrowser = cfg.EnableBrowser

	return &agent{
		llm:       client,
		retriever: retriever,
		orchestrator: &pipeline.Orchestrator{
			Retriever:  retriever,
			Drafter:    quote.NewGenerator(client),
			Renderer:   pipelineRenderer,
			Composer:   email.NewWriter(client),
			Stager:     stager,
			Researcher: researcher,
			Verbose:    cfg.Verbose,
		},
	}, nil
}

func buildStager(ctx context.Context, cfg *config.Config) (*mailer.Stager, error) {
	oauthCfg, err := mailer.ConfigFromCredentialsFile(cfg.GmailCredentialsPath)
	if err != nil {
		return nil, err
	}
	ts, err := mailer.NewTokenSource(ctx, oauthCfg, cfg.GmailTokenPath)
	if err != nil {
		return nil, err
	}
	return mailer.NewStager(ctx, ts, cfg.GmailSender)
}

// disabledStager stands in when no mailbox is configured. Runs complete with
// a staging degradation instead of failing.
type disabledStager struct{}

func (disabledStager) StageDraft(context.Context, string, string, string, string) (string, error) {
	return "", &mailer.StagingError{Message: "gmail staging is not configured"}
}

// pdfRenderer renders the HTML document, then a PDF alongside it. The PDF is
// best-effort; the HTML artifact is what the pipeline reports.
type pdfRenderer struct {
	inner *rendering.Renderer
}

func (p *pdfRenderer) Render(draft *types.QuoteDraft) (*types.QuoteArtifact, error) {
	artifact, err := p.inner.Render(draft)
	if err != nil {
		return nil, err
	}

	pdfPath, err := rendering.RenderPDF(context.Background(), artifact.Path)
	if err != nil {
		log.Printf("pdf rendering failed for %s: %v", artifact.Path, err)
		return artifact, nil
	}
	log.Printf("rendered pdf %s", pdfPath)
	return artifact, nil
}
