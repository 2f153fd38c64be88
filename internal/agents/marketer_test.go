package agents

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/adapters/ai"
	"hermes/internal/domain/campaign"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
)

func testMarketerConfig() MarketerConfig {
	return MarketerConfig{Model: "test-model", Temperature: 0.2, MaxTokens: 400}
}

func sampleRecommendations() []*campaign.Recommendation {
	return []*campaign.Recommendation{
		{
			Agent:      "sentiment",
			Candidates: []string{"Battery-first messaging"},
			Confidence: 0.8,
			Rationale:  "Customers love battery life",
		},
		{
			Agent:      "purchase",
			Candidates: []string{"Bundle with accessories"},
			Confidence: 0.7,
			Rationale:  "Accessories are frequently co-purchased",
		},
	}
}

func TestMarketerSynthesize(t *testing.T) {
	chat := &stubChat{responses: []string{`{
		"campaign_name": "Power Through",
		"product": "Wireless earbuds",
		"region": "LATAM",
		"segment": "Commuters",
		"concept": "Lean on the battery praise",
		"channels": ["Email", "Push"],
		"content_brief": "Short videos of all-day listening"
	}`}}

	marketer := NewMarketer(testMarketerConfig(), chat)
	proposal, err := marketer.Synthesize(context.Background(), "grow LATAM", sampleRecommendations())
	require.NoError(t, err)

	assert.Equal(t, "Power Through", proposal.CampaignName)
	assert.Equal(t, []string{"Email", "Push"}, proposal.Channels)
	assert.Equal(t, "Commuters", proposal.Segment)

	// The specialists' output must be in the prompt
	require.Len(t, chat.calls, 1)
	assert.Contains(t, chat.calls[0].Messages[0].Content, "Battery-first messaging")
	assert.Contains(t, chat.calls[0].Messages[0].Content, "Bundle with accessories")
}

func TestMarketerRequiresRecommendations(t *testing.T) {
	marketer := NewMarketer(testMarketerConfig(), &stubChat{})

	_, err := marketer.Synthesize(context.Background(), "anything", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoRecommendations))
}

func TestMarketerNormalizesChannelObjects(t *testing.T) {
	chat := &stubChat{responses: []string{`{
		"campaign_name": "X",
		"product": "Y",
		"region": "Z",
		"segment": "S",
		"concept": "C",
		"channels": [{"name": "Email"}, {"channel": "SMS"}, "Push", {"unrelated": 1}],
		"content_brief": "B"
	}`}}

	marketer := NewMarketer(testMarketerConfig(), chat)
	proposal, err := marketer.Synthesize(context.Background(), "p", sampleRecommendations())
	require.NoError(t, err)

	assert.Equal(t, []string{"Email", "SMS", "Push"}, proposal.Channels)
}

func TestMarketerFillsMissingFields(t *testing.T) {
	chat := &stubChat{responses: []string{`{"concept": "only a concept"}`}}

	marketer := NewMarketer(testMarketerConfig(), chat)
	proposal, err := marketer.Synthesize(context.Background(), "p", sampleRecommendations())
	require.NoError(t, err)

	assert.Equal(t, "New Campaign", proposal.CampaignName)
	assert.Equal(t, "only a concept", proposal.Concept)
	assert.NotEmpty(t, proposal.Channels)
	assert.NotEmpty(t, proposal.Product)
	assert.NotEmpty(t, proposal.ContentBrief)
}

func TestMarketerMalformedResponse(t *testing.T) {
	// Both the original response and the repair round are unparseable
	chat := &stubChat{responses: []string{"not json at all", "still not json"}}

	marketer := NewMarketer(testMarketerConfig(), chat)
	_, err := marketer.Synthesize(context.Background(), "p", sampleRecommendations())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedResponse))
}

func TestMarketerRecordsTokenUsage(t *testing.T) {
	chat := &stubChat{
		responses: []string{`{"campaign_name":"X","concept":"C","channels":["Email"]}`},
		usage:     ai.Usage{PromptTokens: 200, CompletionTokens: 80, TotalTokens: 280},
	}

	cfg := testMarketerConfig()
	cfg.Model = "marketer-token-model"
	marketer := NewMarketer(cfg, chat)

	_, err := marketer.Synthesize(context.Background(), "p", sampleRecommendations())
	require.NoError(t, err)

	input := metrics.AgentTokens.WithLabelValues("marketer", "marketer-token-model", "input")
	output := metrics.AgentTokens.WithLabelValues("marketer", "marketer-token-model", "output")
	assert.Equal(t, 200.0, testutil.ToFloat64(input))
	assert.Equal(t, 80.0, testutil.ToFloat64(output))
}

func TestMarketerModelErrorSurfaces(t *testing.T) {
	marketer := NewMarketer(testMarketerConfig(), &stubChat{err: errors.ErrModelUnavailable})

	_, err := marketer.Synthesize(context.Background(), "p", sampleRecommendations())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
}
