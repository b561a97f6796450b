package rendering

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nana-intelligence/agent-juliette/internal/types"
)

func testDraft() *types.QuoteDraft {
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &types.QuoteDraft{
		Reference:     "DEV-20260401-AB12CD34",
		CreatedAt:     created,
		ValidUntil:    created.AddDate(0, 0, types.ValidityDays),
		ClientName:    "Claire Moreau",
		ClientEmail:   "claire@moreau-conseil.fr",
		ClientCompany: "Moreau Conseil",
		Title:         "Campagne de prospection externalisée",
		Introduction:  "Suite à votre demande, voici notre proposition.",
		Items: []types.LineItem{
			{Description: "Setup infrastructure email", Details: "Domaines, warmup", Quantity: 1, UnitPrice: 900},
			{Description: "Gestion campagne mensuelle", Quantity: 2, UnitPrice: 750},
		},
		Conditions: "Paiement à réception de facture.",
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(t.TempDir())
	require.NoError(t, err)
	return r
}

func TestRenderHTML_ContainsQuoteData(t *testing.T) {
	r := newTestRenderer(t)

	html, err := r.RenderHTML(testDraft())
	require.NoError(t, err)

	assert.Contains(t, html, "DEV-20260401-AB12CD34")
	assert.Contains(t, html, "Claire Moreau")
	assert.Contains(t, html, "Campagne de prospection externalisée")
	assert.Contains(t, html, "01/04/2026")
	assert.Contains(t, html, "01/05/2026")
	// 900 + 1500 = 2400 HT, 480 TVA, 2880 TTC.
	assert.Contains(t, html, "2 400,00 €")
	assert.Contains(t, html, "480,00 €")
	assert.Contains(t, html, "2 880,00 €")
}

func TestRenderHTML_Deterministic(t *testing.T) {
	r := newTestRenderer(t)

	first, err := r.RenderHTML(testDraft())
	require.NoError(t, err)
	second, err := r.RenderHTML(testDraft())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderHTML_EscapesClientInput(t *testing.T) {
	r := newTestRenderer(t)
	draft := testDraft()
	draft.ClientName = `<script>alert("x")</script>`

	html, err := r.RenderHTML(draft)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert")
}

func TestRenderHTML_RejectsEmptyItems(t *testing.T) {
	r := newTestRenderer(t)
	draft := testDraft()
	draft.Items = nil

	_, err := r.RenderHTML(draft)
	require.Error(t, err)
	var re *RenderError
	assert.ErrorAs(t, err, &re)
}

func TestRenderHTML_RejectsOversizedDescription(t *testing.T) {
	r := newTestRenderer(t)
	draft := testDraft()
	draft.Items[0].Description = strings.Repeat("a", maxDescriptionLen+1)

	_, err := r.RenderHTML(draft)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestRender_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir)
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2026, 4, 1, 9, 5, 0, 0, time.UTC) }

	artifact, err := r.Render(testDraft())
	require.NoError(t, err)

	assert.Equal(t, "DEV-20260401-AB12CD34", artifact.Reference)
	assert.Equal(t, filepath.Join(dir, "DEV-20260401-AB12CD34.html"), artifact.Path)
	assert.Equal(t, time.Date(2026, 4, 1, 9, 5, 0, 0, time.UTC), artifact.RenderedAt)

	content, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Moreau Conseil")
}

func TestFormatEuro(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0,00 €"},
		{42.5, "42,50 €"},
		{1500, "1 500,00 €"},
		{1234567.89, "1 234 567,89 €"},
		{-250, "-250,00 €"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatEuro(tc.in), "input %v", tc.in)
	}
}
