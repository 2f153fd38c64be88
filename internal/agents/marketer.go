package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hermes/internal/adapters/ai"
	"hermes/internal/domain/campaign"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

const maxInsightRationaleChars = 200

// MarketerConfig drives the synthesis agent
type MarketerConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// MarketerAgent folds specialist recommendations into one campaign proposal
type MarketerAgent struct {
	cfg  MarketerConfig
	chat ai.ChatProvider
	log  *logger.Logger
}

// NewMarketer creates the synthesis agent
func NewMarketer(cfg MarketerConfig, chat ai.ChatProvider) *MarketerAgent {
	return &MarketerAgent{
		cfg:  cfg,
		chat: chat,
		log:  logger.Get().With("agent", "marketer"),
	}
}

// agentInsight is the compact form of a recommendation sent to the model.
// Rationales are truncated so the prompt stays small regardless of how
// verbose the specialists were.
type agentInsight struct {
	Agent      string   `json:"agent"`
	Candidates []string `json:"candidates"`
	Confidence float64  `json:"confidence"`
	Rationale  string   `json:"rationale"`
	Degraded   bool     `json:"degraded,omitempty"`
}

// proposalReply tolerates channels arriving as strings or as objects with a
// name-like key, which small models produce despite the schema in the prompt
type proposalReply struct {
	CampaignName string        `json:"campaign_name"`
	Product      string        `json:"product"`
	Region       string        `json:"region"`
	Segment      string        `json:"segment"`
	Concept      string        `json:"concept"`
	Channels     []interface{} `json:"channels"`
	ContentBrief string        `json:"content_brief"`
}

// Synthesize turns the specialists' recommendations into a single proposal.
// At least one recommendation is required; an unparseable model response
// after repair surfaces as ErrMalformedResponse.
func (m *MarketerAgent) Synthesize(ctx context.Context, prompt string, recs []*campaign.Recommendation) (*campaign.Proposal, error) {
	if len(recs) == 0 {
		return nil, errors.ErrNoRecommendations
	}

	start := time.Now()

	insights, err := m.compactInsights(recs)
	if err != nil {
		return nil, err
	}

	promptText, err := renderMarketerPrompt(marketerPromptData{
		Prompt:   prompt,
		Insights: insights,
	})
	if err != nil {
		return nil, err
	}

	var reply proposalReply
	req := ai.ChatRequest{
		Model:       m.cfg.Model,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: promptText}},
		Temperature: m.cfg.Temperature,
		MaxTokens:   m.cfg.MaxTokens,
	}
	resp, err := ai.ChatJSON(ctx, m.chat, req, &reply)
	if err != nil {
		metrics.ObserveAgentCall("marketer", m.cfg.Model, "error", time.Since(start))
		return nil, err
	}

	proposal := &campaign.Proposal{
		CampaignName: reply.CampaignName,
		Product:      reply.Product,
		Region:       reply.Region,
		Segment:      reply.Segment,
		Concept:      reply.Concept,
		Channels:     normalizeChannels(reply.Channels),
		ContentBrief: reply.ContentBrief,
	}
	proposal.Normalize()

	metrics.ObserveAgentCall("marketer", m.cfg.Model, "success", time.Since(start))
	metrics.ObserveAgentTokens("marketer", m.cfg.Model,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	m.log.Infow("proposal synthesized",
		"campaign_name", proposal.CampaignName,
		"channels", proposal.Channels,
		"duration", time.Since(start))

	return proposal, nil
}

func (m *MarketerAgent) compactInsights(recs []*campaign.Recommendation) (string, error) {
	insights := make([]agentInsight, 0, len(recs))
	for _, rec := range recs {
		candidates := rec.Candidates
		if len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		rationale := truncateRunes(rec.Rationale, maxInsightRationaleChars)
		insights = append(insights, agentInsight{
			Agent:      rec.Agent,
			Candidates: candidates,
			Confidence: rec.Confidence,
			Rationale:  rationale,
			Degraded:   rec.Degraded,
		})
	}

	data, err := json.Marshal(insights)
	if err != nil {
		return "", errors.Wrap(err, "marshal insights")
	}
	return string(data), nil
}

// normalizeChannels flattens the channel list into plain strings. Objects
// are reduced to their name-like value when one exists.
func normalizeChannels(raw []interface{}) []string {
	channels := make([]string, 0, len(raw))
	for _, ch := range raw {
		switch v := ch.(type) {
		case string:
			channels = append(channels, v)
		case map[string]interface{}:
			for _, key := range []string{"name", "channel", "type"} {
				if s, ok := v[key].(string); ok {
					channels = append(channels, s)
					break
				}
			}
		default:
			s := strings.TrimSpace(fmt.Sprintf("%v", v))
			if s != "" {
				channels = append(channels, s)
			}
		}
	}
	return channels
}
