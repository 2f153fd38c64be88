package campaign

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalNormalize(t *testing.T) {
	t.Run("blank channels are dropped and defaulted", func(t *testing.T) {
		p := &Proposal{Channels: []string{"  ", "", "Email ", "Push"}}
		p.Normalize()
		assert.Equal(t, []string{"Email", "Push"}, p.Channels)
	})

	t.Run("no channels fall back to email", func(t *testing.T) {
		p := &Proposal{}
		p.Normalize()
		assert.Equal(t, []string{"Email"}, p.Channels)
	})

	t.Run("blank fields get placeholders", func(t *testing.T) {
		p := &Proposal{Concept: "only this"}
		p.Normalize()

		assert.Equal(t, "New Campaign", p.CampaignName)
		assert.Equal(t, "only this", p.Concept)
		assert.NotEmpty(t, p.Product)
		assert.NotEmpty(t, p.Region)
		assert.NotEmpty(t, p.Segment)
		assert.NotEmpty(t, p.ContentBrief)
	})

	t.Run("filled proposal is untouched", func(t *testing.T) {
		p := &Proposal{
			CampaignName: "Power Through",
			Product:      "Earbuds",
			Region:       "LATAM",
			Segment:      "Commuters",
			Concept:      "All-day battery",
			Channels:     []string{"Email"},
			ContentBrief: "Short videos",
		}
		before := *p
		p.Normalize()
		assert.Equal(t, before, *p)
	})
}

func TestProposalJSONShape(t *testing.T) {
	p := &Proposal{CampaignName: "X"}
	p.Normalize()

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	want := []string{
		"campaign_name", "product", "region", "segment",
		"concept", "channels", "content_brief",
	}
	assert.Len(t, fields, len(want))
	for _, key := range want {
		assert.Contains(t, fields, key)
	}
}

func TestProposalJSONRoundTrip(t *testing.T) {
	p := Proposal{
		CampaignName: "Power Through",
		Product:      "Earbuds",
		Region:       "LATAM",
		Segment:      "Commuters",
		Concept:      "All-day battery",
		Channels:     []string{"Email", "Push"},
		ContentBrief: "Short videos of all-day listening",
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var back Proposal
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestDegradedConfidenceBelowThreshold(t *testing.T) {
	assert.Less(t, DegradedConfidence, LowConfidenceThreshold)
}
