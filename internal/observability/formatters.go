// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/nana-intelligence/agent-juliette/internal/pipeline"
	"github.com/nana-intelligence/agent-juliette/internal/rendering"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintLead outputs a human-readable summary of the parsed lead.
func (p *Printer) PrintLead(lead *types.Lead) {
	if lead == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", lead.FullName()))
	sb.WriteString(fmt.Sprintf("Email:     %s\n", lead.Email))
	if lead.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:   %s\n", lead.Company))
	}
	if lead.Website != "" {
		sb.WriteString(fmt.Sprintf("Website:   %s\n", lead.Website))
	}
	sb.WriteString(fmt.Sprintf("Service:   %s\n", lead.Specialty.DisplayName()))
	if lead.BudgetHint != "" {
		sb.WriteString(fmt.Sprintf("Budget:    %s\n", lead.BudgetHint))
	}

	need := lead.NeedDescription
	if len(need) > 50 {
		need = need[:47] + "..."
	}
	sb.WriteString(fmt.Sprintf("Need:      %s", need))

	p.printBox("INBOUND LEAD", sb.String())
}

// PrintContext outputs the knowledge base snippets retrieved for a lead.
func (p *Printer) PrintContext(snippets []types.ContextSnippet) {
	if len(snippets) == 0 {
		p.printBox("RETRIEVED CONTEXT", "No snippets above the score threshold.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Retrieved %d snippets:\n\n", len(snippets)))

	count := min(len(snippets), maxItemsToShow)
	for i := 0; i < count; i++ {
		snippet := snippets[i]
		text := strings.ReplaceAll(snippet.Text, "\n", " ")
		if len(text) > 45 {
			text = text[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  [%.2f] %s\n", i+1, snippet.Score, text))
		if snippet.Source != "" {
			sb.WriteString(fmt.Sprintf("    from %s\n", snippet.Source))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(snippets) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more snippets", len(snippets)-maxItemsToShow))
	}

	p.printBox("RETRIEVED CONTEXT", sb.String())
}

// PrintQuote outputs the drafted quote with line items and totals.
func (p *Printer) PrintQuote(quote *types.QuoteDraft) {
	if quote == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reference: %s\n", quote.Reference))

	title := quote.Title
	if len(title) > 45 {
		title = title[:42] + "..."
	}
	sb.WriteString(fmt.Sprintf("Title:     %s\n\n", title))

	count := min(len(quote.Items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := quote.Items[i]
		description := item.Description
		if len(description) > 38 {
			description = description[:35] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", description))
		sb.WriteString(fmt.Sprintf("  %d x %s\n", item.Quantity, rendering.FormatEuro(item.UnitPrice)))
	}
	if len(quote.Items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(quote.Items)-maxItemsToShow))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total HT:  %s\n", rendering.FormatEuro(quote.Subtotal())))
	sb.WriteString(fmt.Sprintf("TVA 20%%:   %s\n", rendering.FormatEuro(quote.Tax())))
	sb.WriteString(fmt.Sprintf("Total TTC: %s", rendering.FormatEuro(quote.TotalWithTax())))

	p.printBox("DRAFTED QUOTE", sb.String())
}

// PrintResult outputs the final pipeline run result.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResult(result *pipeline.Result) {
	if result == nil {
		return
	}

	if !result.Success {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Failed at: %s\n", result.FailureStage))
		sb.WriteString(fmt.Sprintf("Reason:    %s\n", result.FailureReason))
		if result.Err != nil {
			message := result.Err.Error()
			if len(message) > 50 {
				message = message[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("Error:     %s", message))
		}
		p.printBox("⚠ RUN FAILED", strings.TrimSuffix(sb.String(), "\n"))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Reference: %s\n", result.Reference))
	if result.ArtifactPath != "" {
		sb.WriteString(fmt.Sprintf("Document:  %s\n", result.ArtifactPath))
	}
	if result.DraftID != "" {
		sb.WriteString(fmt.Sprintf("Draft:     %s\n", result.DraftID))
	}
	sb.WriteString(fmt.Sprintf("Total TTC: %s\n", rendering.FormatEuro(result.TotalTTC)))
	sb.WriteString(fmt.Sprintf("Elapsed:   %dms", result.ElapsedMS))

	if len(result.Degradations) > 0 {
		sb.WriteString("\n\nDegradations:\n")
		for _, degradation := range result.Degradations {
			if len(degradation) > 50 {
				degradation = degradation[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("⚠ %s\n", degradation))
		}
	}

	p.printBox("✅ QUOTE READY", strings.TrimSuffix(sb.String(), "\n"))
}
