package research

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/nana-intelligence/agent-juliette/internal/llm"
	"github.com/nana-intelligence/agent-juliette/internal/types"
)

type stubLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.lastPrompt = prompt
	return s.response, s.err
}

func (s *stubLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.lastPrompt = prompt
	return s.response, s.err
}

func (s *stubLLM) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (s *stubLLM) GetModel(_ llm.ModelTier) string { return "stub-model" }
func (s *stubLLM) Close() error                    { return nil }

func TestResearch_NoWebsite(t *testing.T) {
	r := NewResearcher(&stubLLM{response: "should not be called"})

	summary := r.Research(context.Background(), &types.Lead{Company: "Moreau Conseil"})
	assert.Equal(t, "", summary)
}

func TestResearch_SummarizesWebsiteContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><main>Moreau Conseil accompagne les PME industrielles dans leur transformation digitale.</main></body></html>"))
	}))
	defer server.Close()

	stub := &stubLLM{response: "Cabinet de conseil pour PME industrielles."}
	r := NewResearcher(stub)

	lead := &types.Lead{Company: "Moreau Conseil", Website: server.URL}
	summary := r.Research(context.Background(), lead)

	assert.Equal(t, "Cabinet de conseil pour PME industrielles.", summary)
	assert.Contains(t, stub.lastPrompt, "PME industrielles")
	assert.Contains(t, stub.lastPrompt, "Moreau Conseil")
}

func TestResearch_FetchFailureReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := NewResearcher(&stubLLM{response: "irrelevant"})
	summary := r.Research(context.Background(), &types.Lead{Website: server.URL})
	assert.Equal(t, "", summary)
}

func TestResearch_LLMFailureReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><main>Du contenu exploitable pour le résumé.</main></body></html>"))
	}))
	defer server.Close()

	r := NewResearcher(&stubLLM{err: errors.New("quota exceeded")})
	summary := r.Research(context.Background(), &types.Lead{Website: server.URL})
	assert.Equal(t, "", summary)
}

func TestResearch_TruncatesLongContent(t *testing.T) {
	long := strings.Repeat("contenu ", 3000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><main>" + long + "</main></body></html>"))
	}))
	defer server.Close()

	stub := &stubLLM{response: "résumé"}
	r := NewResearcher(stub)
	r.Research(context.Background(), &types.Lead{Website: server.URL})

	assert.Less(t, len(stub.lastPrompt), maxContentChars+2000)
}

func TestTruncateAtRune_KeepsUTF8Intact(t *testing.T) {
	accented := strings.Repeat("é", 50) // 2 bytes per rune

	for _, max := range []int{0, 1, 7, 50, 99, 100, 200} {
		got := truncateAtRune(accented, max)
		assert.LessOrEqual(t, len(got), max)
		assert.True(t, utf8.ValidString(got), "max %d produced invalid UTF-8", max)
	}

	assert.Equal(t, "été", truncateAtRune("été", 10))
}
