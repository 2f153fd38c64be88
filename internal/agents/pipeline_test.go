package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/campaign"
	"hermes/internal/domain/record"
	"hermes/pkg/errors"
)

// fakeSpecialist returns a canned recommendation or error and records
// whether it ran
type fakeSpecialist struct {
	name AgentName
	rec  *campaign.Recommendation
	err  error

	ran bool
}

func (f *fakeSpecialist) Name() AgentName { return f.name }

func (f *fakeSpecialist) Run(_ context.Context, _ string) (*campaign.Recommendation, error) {
	f.ran = true
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func okSpecialist(name AgentName) *fakeSpecialist {
	return &fakeSpecialist{
		name: name,
		rec: &campaign.Recommendation{
			Agent:      string(name),
			Candidates: []string{"idea from " + string(name)},
			Confidence: 0.8,
		},
	}
}

const validProposalJSON = `{
	"campaign_name": "Synth",
	"product": "P",
	"region": "R",
	"segment": "S",
	"concept": "C",
	"channels": ["Email"],
	"content_brief": "B"
}`

func testPipeline(t *testing.T, specialists []Specialist, chat *stubChat) *Pipeline {
	t.Helper()
	p, err := NewPipeline(specialists, NewMarketer(testMarketerConfig(), chat))
	require.NoError(t, err)
	return p
}

func TestPipelineRunRoutesAndSynthesizes(t *testing.T) {
	sentiment := okSpecialist(AgentSentiment)
	purchase := okSpecialist(AgentPurchase)
	history := okSpecialist(AgentCampaign)

	p := testPipeline(t,
		[]Specialist{sentiment, purchase, history},
		&stubChat{responses: []string{validProposalJSON}},
	)

	result, err := p.Run(context.Background(), "Give me top 5 campaign ideas based on customer sentiments")
	require.NoError(t, err)

	assert.Equal(t, []AgentName{AgentSentiment}, result.Route)
	assert.True(t, sentiment.ran)
	assert.False(t, purchase.ran)
	assert.False(t, history.ran)

	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "sentiment", result.Recommendations[0].Agent)

	require.NotNil(t, result.Proposal)
	assert.Equal(t, "Synth", result.Proposal.CampaignName)
	assert.NotEqual(t, "", result.RunID.String())
	assert.Empty(t, result.AgentErrors)
}

func TestPipelineRunBroadPromptRunsEveryone(t *testing.T) {
	sentiment := okSpecialist(AgentSentiment)
	purchase := okSpecialist(AgentPurchase)
	history := okSpecialist(AgentCampaign)

	p := testPipeline(t,
		[]Specialist{sentiment, purchase, history},
		&stubChat{responses: []string{validProposalJSON}},
	)

	result, err := p.Run(context.Background(), "What is the best overall strategy?")
	require.NoError(t, err)

	assert.True(t, sentiment.ran)
	assert.True(t, purchase.ran)
	assert.True(t, history.ran)
	assert.Len(t, result.Recommendations, 3)
}

func TestPipelineRunContinuesPastFailedSpecialist(t *testing.T) {
	sentiment := okSpecialist(AgentSentiment)
	purchase := &fakeSpecialist{name: AgentPurchase, err: errors.ErrModelUnavailable}
	history := okSpecialist(AgentCampaign)

	p := testPipeline(t,
		[]Specialist{sentiment, purchase, history},
		&stubChat{responses: []string{validProposalJSON}},
	)

	result, err := p.Run(context.Background(), "best strategy")
	require.NoError(t, err)

	assert.Len(t, result.Recommendations, 2)
	require.Contains(t, result.AgentErrors, "purchase")
	assert.True(t, history.ran, "later specialists still run after a failure")
	require.NotNil(t, result.Proposal)
}

func TestPipelineRunAllSpecialistsFailed(t *testing.T) {
	p := testPipeline(t,
		[]Specialist{
			&fakeSpecialist{name: AgentSentiment, err: errors.ErrModelUnavailable},
			&fakeSpecialist{name: AgentPurchase, err: errors.ErrModelUnavailable},
			&fakeSpecialist{name: AgentCampaign, err: errors.ErrModelUnavailable},
		},
		&stubChat{},
	)

	_, err := p.Run(context.Background(), "best strategy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoRecommendations))
}

func TestPipelineRunMarketerFailure(t *testing.T) {
	p := testPipeline(t,
		[]Specialist{okSpecialist(AgentSentiment), okSpecialist(AgentPurchase), okSpecialist(AgentCampaign)},
		&stubChat{err: errors.ErrModelUnavailable},
	)

	_, err := p.Run(context.Background(), "best strategy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
}

func TestPipelineEndToEnd(t *testing.T) {
	repo := &stubRepo{
		results: map[record.Namespace][]*record.SearchResult{
			record.NamespaceSentiment: {
				searchResult("Feedback FB-1 (source: Twitter)\nText: customers love the mileage", 0.9),
				searchResult("Feedback FB-2 (source: Survey)\nText: service centers are crowded", 0.82),
			},
		},
	}
	chat := &stubChat{responses: []string{
		`{"candidates":["Mileage hero campaign"],"scores":[0.85],"rationale":"Mileage is the loudest praise."}`,
		`{
			"campaign_name": "Mileage Masters",
			"product": "Swift",
			"region": "India",
			"segment": "Urban commuters",
			"concept": "Owners tell their mileage stories",
			"channels": ["Email", "Social"],
			"content_brief": "User-generated mileage testimonials with a referral hook"
		}`,
	}}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}

	pipeline, err := NewPipeline([]Specialist{
		NewSpecialist(testSpecialistConfig(AgentSentiment, record.NamespaceSentiment), repo, embedder, chat),
		NewSpecialist(testSpecialistConfig(AgentPurchase, record.NamespacePurchase), repo, embedder, chat),
		NewSpecialist(testSpecialistConfig(AgentCampaign, record.NamespaceCampaign), repo, embedder, chat),
	}, NewMarketer(testMarketerConfig(), chat))
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), "Give me top 5 campaign ideas based on customer sentiments")
	require.NoError(t, err)

	assert.Equal(t, []AgentName{AgentSentiment}, result.Route)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, []string{"Mileage hero campaign"}, result.Recommendations[0].Candidates)
	assert.False(t, result.Recommendations[0].Degraded)

	require.NotNil(t, result.Proposal)
	assert.Equal(t, "Mileage Masters", result.Proposal.CampaignName)
	assert.NotEmpty(t, result.Proposal.ContentBrief)
	assert.Equal(t, []string{"Email", "Social"}, result.Proposal.Channels)

	// One specialist call plus one marketer call, no repairs
	assert.Len(t, chat.calls, 2)
}

func TestNewPipelineValidation(t *testing.T) {
	marketer := NewMarketer(testMarketerConfig(), &stubChat{})

	t.Run("missing specialist", func(t *testing.T) {
		_, err := NewPipeline([]Specialist{okSpecialist(AgentSentiment)}, marketer)
		require.Error(t, err)
	})

	t.Run("duplicate specialist", func(t *testing.T) {
		_, err := NewPipeline([]Specialist{
			okSpecialist(AgentSentiment),
			okSpecialist(AgentSentiment),
			okSpecialist(AgentPurchase),
			okSpecialist(AgentCampaign),
		}, marketer)
		require.Error(t, err)
	})
}
