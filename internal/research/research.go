// Package research builds a short company profile from the lead's website,
// used to personalize the cover email. Everything here is best-effort: the
// pipeline proceeds without a profile when research fails.
package research

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/nana-intelligence/agent-juliette/internal/fetch"
	"github.com/nana-intelligence/agent-juliette/internal/llm"
	"github.com/nana-intelligence/agent-juliette/internal/prompts"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

// maxContentChars bounds how much page text goes to the summarizer.
const maxContentChars = 8000

// browserTimeout bounds the SPA rendering fallback.
const browserTimeout = 30 * time.Second

// Researcher fetches and summarizes a lead's company website.
type Researcher struct {
	llm  llm.Client
	tier llm.ModelTier

	// EnableBrowser turns on the headless browser fallback for pages that
	// render client-side. Off by default; requires Chrome on the host.
	EnableBrowser bool
}

// NewResearcher creates a Researcher summarizing with the lite model tier.
func NewResearcher(client llm.Client) *Researcher {
	return &Researcher{llm: client, tier: llm.TierLite}
}

// Research returns a French-language company profile for the lead, or an
// empty string when the lead has no website or research fails.
func (r *Researcher) Research(ctx context.Context, lead *types.Lead) string {
	if lead.Website == "" {
		return ""
	}

	content, err := r.fetchContent(ctx, lead.Website)
	if err != nil {
		log.Printf("company research skipped for %s: %v", lead.Website, err)
		return ""
	}
	content = truncateAtRune(content, maxContentChars)

	summary, err := r.summarize(ctx, lead, content)
	if err != nil {
		log.Printf("company research summary failed for %s: %v", lead.Website, err)
		return ""
	}
	return summary
}

func (r *Researcher) fetchContent(ctx context.Context, website string) (string, error) {
	pageURL, err := fetch.NormalizeWebsite(website)
	if err != nil {
		return "", err
	}

	result, err := fetch.URL(ctx, pageURL, nil)
	if err != nil {
		return "", err
	}

	text, err := fetch.ExtractMainText(result.HTML, fetch.CompanyPageSelectors())
	if err != nil {
		return "", err
	}

	if fetch.ShouldUseBrowser(text) && r.EnableBrowser {
		html, err := fetch.WithBrowser(ctx, pageURL, browserTimeout)
		if err == nil {
			if rendered, err := fetch.ExtractMainText(html, fetch.CompanyPageSelectors()); err == nil && len(rendered) > len(text) {
				text = rendered
			}
		}
	}

	if text == "" {
		return "", fmt.Errorf("no readable content at %s", pageURL)
	}
	return text, nil
}

// truncateAtRune cuts s to at most max bytes without splitting a UTF-8
// sequence; French pages are full of multi-byte accented characters.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (r *Researcher) summarize(ctx context.Context, lead *types.Lead, content string) (string, error) {
	template, err := prompts.Get("research.json", "summarize")
	if err != nil {
		return "", err
	}

	prompt := prompts.Format(template, map[string]string{
		"Company": lead.Company,
		"Website": lead.Website,
		"Content": content,
	})

	return r.llm.GenerateContent(ctx, prompt, r.tier)
}
