package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []AgentName
	}{
		{
			name:   "sentiment keywords only",
			prompt: "What do customer reviews say about our shoes?",
			want:   []AgentName{AgentSentiment},
		},
		{
			name:   "purchase keywords only",
			prompt: "Which products have the most repeat orders?",
			want:   []AgentName{AgentPurchase},
		},
		{
			name:   "campaign performance keywords only",
			prompt: "Which channels had the highest CTR last quarter?",
			want:   []AgentName{AgentCampaign},
		},
		{
			name:   "sentiment and purchase",
			prompt: "Compare customer feedback with their spending habits",
			want:   []AgentName{AgentSentiment, AgentPurchase},
		},
		{
			name:   "no domain keywords selects everyone",
			prompt: "Help me grow the business in Brazil",
			want:   AllAgents(),
		},
		{
			name:   "broad keyword selects everyone",
			prompt: "What is the best approach for Q3?",
			want:   AllAgents(),
		},
		{
			name:   "overall strategy selects everyone",
			prompt: "Give me an overall marketing plan",
			want:   AllAgents(),
		},
		{
			name:   "campaign ideas from sentiments routes to sentiment only",
			prompt: "Give me top 5 campaign ideas based on customer sentiments",
			want:   []AgentName{AgentSentiment},
		},
		{
			name:   "past campaigns phrase routes to campaign history",
			prompt: "What worked in our past campaigns?",
			want:   []AgentName{AgentCampaign},
		},
		{
			name:   "keyword matching ignores case and punctuation",
			prompt: "REVIEWS, ratings... what do they tell us?",
			want:   []AgentName{AgentSentiment},
		},
		{
			name:   "empty prompt selects everyone",
			prompt: "",
			want:   AllAgents(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.prompt))
		})
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	prompt := "Compare reviews, orders and click rates across regions"

	first := Route(prompt)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Route(prompt))
	}
}

func TestRoutePreservesCanonicalOrder(t *testing.T) {
	// Mention the domains in reverse order; the route must not follow it
	route := Route("clicks, purchases and complaints")
	assert.Equal(t, AllAgents(), route)
}
