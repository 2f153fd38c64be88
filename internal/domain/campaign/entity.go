package campaign

import (
	"strings"

	"github.com/google/uuid"
)

// EvidenceRef points at a stored record that grounded a recommendation
type EvidenceRef struct {
	RecordID   uuid.UUID `json:"record_id"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
}

// Recommendation is one specialist agent's structured output for a single turn.
// Consumed immediately by the marketer agent or the UI; never persisted.
type Recommendation struct {
	Agent      string        `json:"agent"`
	Candidates []string      `json:"candidates"`
	Confidence float64       `json:"confidence"`
	Rationale  string        `json:"rationale"`
	Evidence   []EvidenceRef `json:"evidence"`

	// Degraded marks a recommendation produced without retrieval evidence
	Degraded bool `json:"degraded,omitempty"`
}

// LowConfidenceThreshold marks recommendations produced without evidence.
// Degraded stubs always score below it.
const LowConfidenceThreshold = 0.3

// DegradedConfidence is assigned when retrieval yields nothing
const DegradedConfidence = 0.2

// Proposal is the terminal artifact of the pipeline: one synthesized
// campaign idea produced by the marketer agent.
type Proposal struct {
	CampaignName string   `json:"campaign_name"`
	Product      string   `json:"product"`
	Region       string   `json:"region"`
	Segment      string   `json:"segment"`
	Concept      string   `json:"concept"`
	Channels     []string `json:"channels"`
	ContentBrief string   `json:"content_brief"`
}

// Normalize hardens a freshly parsed proposal: channels become a non-empty
// list of plain strings and absent text fields get placeholder values, so a
// parsed proposal always carries all seven fields.
func (p *Proposal) Normalize() {
	channels := make([]string, 0, len(p.Channels))
	for _, ch := range p.Channels {
		ch = strings.TrimSpace(ch)
		if ch != "" {
			channels = append(channels, ch)
		}
	}
	if len(channels) == 0 {
		channels = []string{"Email"}
	}
	p.Channels = channels

	for _, field := range []*string{
		&p.CampaignName, &p.Product, &p.Region,
		&p.Segment, &p.Concept, &p.ContentBrief,
	} {
		if strings.TrimSpace(*field) == "" {
			*field = "—"
		}
	}
	if p.CampaignName == "—" {
		p.CampaignName = "New Campaign"
	}
}
