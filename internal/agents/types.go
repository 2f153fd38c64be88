package agents

import (
	"context"

	"hermes/internal/domain/campaign"
)

// AgentName identifies one of the specialist agents
type AgentName string

const (
	AgentSentiment AgentName = "sentiment"
	AgentPurchase  AgentName = "purchase"
	AgentCampaign  AgentName = "campaign"
)

// String returns string representation
func (a AgentName) String() string {
	return string(a)
}

// AllAgents lists the specialists in their canonical execution order
func AllAgents() []AgentName {
	return []AgentName{AgentSentiment, AgentPurchase, AgentCampaign}
}

// Specialist is a single-domain retrieval-plus-summarization unit.
// Each specialist owns exactly one vector store namespace.
type Specialist interface {
	Name() AgentName
	Run(ctx context.Context, prompt string) (*campaign.Recommendation, error)
}
