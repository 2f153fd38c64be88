package agents

import (
	"hermes/internal/adapters/ai"
	"hermes/internal/adapters/config"
	"hermes/internal/adapters/embeddings"
	"hermes/internal/domain/record"
)

// NewDefaultPipeline builds the three specialists and the marketer from
// configuration and wires them into a pipeline
func NewDefaultPipeline(
	cfg *config.Config,
	repo record.Repository,
	embedder embeddings.Provider,
	chat ai.ChatProvider,
) (*Pipeline, error) {
	base := SpecialistConfig{
		TopK:              cfg.Agents.TopK,
		EvidenceCharLimit: cfg.Agents.EvidenceCharLimit,
		Temperature:       cfg.Agents.Temperature,
		MaxTokens:         cfg.Agents.MaxTokens,
	}

	sentiment := base
	sentiment.Name = AgentSentiment
	sentiment.Namespace = record.NamespaceSentiment
	sentiment.Model = cfg.Agents.SentimentModel
	sentiment.Persona = "Customer Sentiment Analyst AI"
	sentiment.EvidenceNote = "real customer reviews, most similar first"
	sentiment.Basis = "these reviews"
	sentiment.Deliverable = "campaign ideas that address what customers praise or complain about"

	purchase := base
	purchase.Name = AgentPurchase
	purchase.Namespace = record.NamespacePurchase
	purchase.Model = cfg.Agents.PurchaseModel
	purchase.Persona = "Customer Purchase Behavior Analyst AI"
	purchase.EvidenceNote = "real purchase records, most similar first"
	purchase.Basis = "these purchase records"
	purchase.Deliverable = "campaign ideas targeting the observed buying patterns"

	history := base
	history.Name = AgentCampaign
	history.Namespace = record.NamespaceCampaign
	history.Model = cfg.Agents.CampaignModel
	history.Persona = "Marketing Campaign Performance Analyst AI"
	history.EvidenceNote = "past campaign outcomes, most similar first"
	history.Basis = "these past campaigns"
	history.Deliverable = "campaign ideas that repeat what worked and avoid what did not"

	marketer := NewMarketer(MarketerConfig{
		Model:       cfg.Agents.MarketerModel,
		Temperature: cfg.Agents.Temperature,
		MaxTokens:   cfg.Agents.MaxTokens,
	}, chat)

	return NewPipeline([]Specialist{
		NewSpecialist(sentiment, repo, embedder, chat),
		NewSpecialist(purchase, repo, embedder, chat),
		NewSpecialist(history, repo, embedder, chat),
	}, marketer)
}
