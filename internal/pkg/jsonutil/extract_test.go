package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObjectFencedBlock(t *testing.T) {
	raw := "Thinking...\n```json\n{\"a\": 1}\n```\ntrailing"
	got, ok := ExtractObject(raw)
	require.True(t, ok)
	assert.Equal(t, `{"a": 1}`, got)
}

func TestExtractObjectBareWithProse(t *testing.T) {
	got, ok := ExtractObject(`The answer is {"a": {"b": 2}} as requested.`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 2}}`, got)
}

func TestExtractObjectBracesInsideStrings(t *testing.T) {
	got, ok := ExtractObject(`{"note": "uses { and } freely", "n": 1}`)
	require.True(t, ok)
	assert.Equal(t, `{"note": "uses { and } freely", "n": 1}`, got)
}

func TestExtractObjectEscapedQuotes(t *testing.T) {
	got, ok := ExtractObject(`{"note": "a \"quoted\" brace }", "n": 1}`)
	require.True(t, ok)
	assert.Equal(t, `{"note": "a \"quoted\" brace }", "n": 1}`, got)
}

func TestExtractObjectUnbalanced(t *testing.T) {
	_, ok := ExtractObject(`{"a": 1`)
	assert.False(t, ok)
}

func TestExtractObjectNone(t *testing.T) {
	_, ok := ExtractObject("no json here")
	assert.False(t, ok)

	_, ok = ExtractObject("")
	assert.False(t, ok)
}
