package prompt

import (
	"testing"

	"github.com/luminagear/lumina-support/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStoreContext(t *testing.T) {
	ctx := BuildStoreContext(DefaultStoreProfile)

	assert.Contains(t, ctx, "STORE INFORMATION:")
	assert.Contains(t, ctx, "Store Name: Lumina Gear")
	assert.Contains(t, ctx, "Return Policy: 30-day")
	assert.Contains(t, ctx, "Current Promotions: Use code 'NEWLUMINA'")
}

func TestAssembleOrdering(t *testing.T) {
	history := []models.Message{
		{Sender: models.SenderUser, Text: "hi"},
		{Sender: models.SenderAssistant, Text: "hello, how can I help?"},
	}

	segments := Assemble("STORE", history, "what are your hours?")

	require.Len(t, segments, 4)
	assert.Equal(t, "STORE", segments[0])
	assert.Equal(t, "user: hi", segments[1])
	assert.Equal(t, "assistant: hello, how can I help?", segments[2])
	assert.Equal(t, "user: what are your hours?", segments[3])
}

func TestAssembleDropsEmptySegments(t *testing.T) {
	segments := Assemble("", nil, "question")
	require.Len(t, segments, 1)
	assert.Equal(t, "user: question", segments[0])

	segments = Assemble("STORE", nil, "")
	require.Len(t, segments, 1)
	assert.Equal(t, "STORE", segments[0])
}

func TestAssembleNoSideEffects(t *testing.T) {
	history := []models.Message{{Sender: models.SenderUser, Text: "a"}}
	first := Assemble("STORE", history, "b")
	second := Assemble("STORE", history, "b")
	assert.Equal(t, first, second)
}

func TestEstimateTokensGrowsWithInput(t *testing.T) {
	small := EstimateTokens([]string{"hello"})
	large := EstimateTokens([]string{"hello there, this is a much longer segment", "and another one"})
	assert.Greater(t, large, small)
}
