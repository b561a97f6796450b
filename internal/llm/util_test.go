package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n{\"titre\": \"Devis\"}\n```"
	assert.Equal(t, `{"titre": "Devis"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_GenericFence(t *testing.T) {
	input := "```\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_FenceWithLanguageID(t *testing.T) {
	input := "```javascript\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_NoFence(t *testing.T) {
	input := `{"a": 1}`
	assert.Equal(t, input, CleanJSONBlock(input))
}

func TestCleanJSONBlock_Whitespace(t *testing.T) {
	input := "  \n{\"a\": 1}\n  "
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(input))
}

func TestExtractJSONObject_Surrounded(t *testing.T) {
	input := "Here is the quote you asked for:\n{\"titre\": \"Devis SEO\", \"lignes_devis\": [{\"description\": \"Audit\"}]}\nLet me know!"
	assert.Equal(t, `{"titre": "Devis SEO", "lignes_devis": [{"description": "Audit"}]}`, ExtractJSONObject(input))
}

func TestExtractJSONObject_BracesInsideStrings(t *testing.T) {
	input := `prefix {"note": "uses {curly} braces"} suffix`
	assert.Equal(t, `{"note": "uses {curly} braces"}`, ExtractJSONObject(input))
}

func TestExtractJSONObject_EscapedQuote(t *testing.T) {
	input := `{"note": "she said \"hi\" twice"}`
	assert.Equal(t, input, ExtractJSONObject(input))
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	assert.Empty(t, ExtractJSONObject("no json here"))
}

func TestExtractJSONObject_Unbalanced(t *testing.T) {
	assert.Empty(t, ExtractJSONObject(`{"a": {"b": 1}`))
}
