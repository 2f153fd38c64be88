package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"hermes/internal/adapters/ai"
	"hermes/internal/adapters/embeddings"
	"hermes/internal/domain/campaign"
	"hermes/internal/domain/record"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

const (
	maxCandidates     = 3
	maxRationaleChars = 400
	maxEvidenceRefs   = 2
)

// SpecialistConfig describes one specialist: which namespace it retrieves
// from, which model it talks to and how it presents itself in the prompt.
type SpecialistConfig struct {
	Name      AgentName
	Namespace record.Namespace
	Model     string

	// Persona is the role line of the prompt ("Customer Sentiment Analyst AI")
	Persona string
	// EvidenceNote labels the evidence block ("real customer reviews")
	EvidenceNote string
	// Basis restricts the model's grounding ("these reviews")
	Basis string
	// Deliverable names what the agent proposes ("campaign ideas that address customer pain points")
	Deliverable string

	TopK              int
	EvidenceCharLimit int
	Temperature       float64
	MaxTokens         int
}

// SpecialistAgent retrieves evidence from its namespace and asks its model
// for candidate campaign ideas grounded in that evidence.
type SpecialistAgent struct {
	cfg      SpecialistConfig
	repo     record.Repository
	embedder embeddings.Provider
	chat     ai.ChatProvider
	log      *logger.Logger
}

// NewSpecialist creates a specialist agent bound to one namespace
func NewSpecialist(
	cfg SpecialistConfig,
	repo record.Repository,
	embedder embeddings.Provider,
	chat ai.ChatProvider,
) *SpecialistAgent {
	return &SpecialistAgent{
		cfg:      cfg,
		repo:     repo,
		embedder: embedder,
		chat:     chat,
		log:      logger.Get().With("agent", string(cfg.Name)),
	}
}

// Name returns the agent identity used in routing and reporting
func (a *SpecialistAgent) Name() AgentName {
	return a.cfg.Name
}

// specialistReply mirrors the JSON contract the prompt asks the model for.
// Candidates is loosely typed because small local models occasionally emit
// numbers or nested objects in the list.
type specialistReply struct {
	Candidates []interface{} `json:"candidates"`
	Scores     []float64     `json:"scores"`
	Rationale  string        `json:"rationale"`
}

// Run retrieves evidence for the prompt and produces one recommendation.
// Retrieval failures and empty namespaces degrade to a low-confidence stub
// instead of failing; only a model failure is returned as an error.
func (a *SpecialistAgent) Run(ctx context.Context, prompt string) (*campaign.Recommendation, error) {
	start := time.Now()

	results, err := a.retrieve(ctx, prompt)
	if err != nil {
		if errors.Is(err, errors.ErrNoEvidence) {
			a.log.Warnw("no evidence found, producing degraded recommendation",
				"namespace", a.cfg.Namespace)
		} else {
			a.log.Warnw("retrieval failed, producing degraded recommendation",
				"namespace", a.cfg.Namespace, "error", err)
		}
		metrics.ObserveAgentCall(string(a.cfg.Name), a.cfg.Model, "degraded", time.Since(start))
		return a.degradedRecommendation(), nil
	}

	promptText, err := renderSpecialistPrompt(specialistPromptData{
		Persona:      a.cfg.Persona,
		Prompt:       prompt,
		EvidenceNote: a.cfg.EvidenceNote,
		Evidence:     a.packEvidence(results),
		Basis:        a.cfg.Basis,
		Deliverable:  a.cfg.Deliverable,
	})
	if err != nil {
		return nil, err
	}

	var reply specialistReply
	req := ai.ChatRequest{
		Model:       a.cfg.Model,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: promptText}},
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	}
	resp, err := ai.ChatJSON(ctx, a.chat, req, &reply)
	if err != nil {
		metrics.ObserveAgentCall(string(a.cfg.Name), a.cfg.Model, "error", time.Since(start))
		return nil, err
	}

	rec := a.buildRecommendation(reply, results)
	metrics.ObserveAgentCall(string(a.cfg.Name), a.cfg.Model, "success", time.Since(start))
	metrics.ObserveAgentTokens(string(a.cfg.Name), a.cfg.Model,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	a.log.Infow("specialist completed",
		"candidates", len(rec.Candidates),
		"confidence", rec.Confidence,
		"evidence", len(results),
		"duration", time.Since(start))

	return rec, nil
}

// retrieve returns the top-k evidence for the prompt. An empty namespace
// maps to ErrNoEvidence so callers can tell "nothing stored" apart from a
// store failure.
func (a *SpecialistAgent) retrieve(ctx context.Context, prompt string) ([]*record.SearchResult, error) {
	vec, err := a.embedder.GenerateEmbedding(ctx, prompt)
	if err != nil {
		metrics.RetrievalQueries.WithLabelValues(string(a.cfg.Namespace), "error").Inc()
		return nil, err
	}

	results, err := a.repo.SearchSimilar(ctx, a.cfg.Namespace, pgvector.NewVector(vec), a.cfg.TopK)
	if err != nil {
		metrics.RetrievalQueries.WithLabelValues(string(a.cfg.Namespace), "error").Inc()
		return nil, err
	}

	if len(results) == 0 {
		metrics.RetrievalQueries.WithLabelValues(string(a.cfg.Namespace), "empty").Inc()
		return nil, errors.Wrapf(errors.ErrNoEvidence, "namespace %s", a.cfg.Namespace)
	}
	metrics.RetrievalQueries.WithLabelValues(string(a.cfg.Namespace), "success").Inc()

	return results, nil
}

// packEvidence formats retrieved records as bullet lines, truncating each to
// fit the overall evidence character budget
func (a *SpecialistAgent) packEvidence(results []*record.SearchResult) string {
	budget := a.cfg.EvidenceCharLimit
	if budget <= 0 {
		budget = 1000
	}
	perItem := budget / len(results)

	var sb strings.Builder
	for _, r := range results {
		content := truncateRunes(r.Content, perItem)
		sb.WriteString("- ")
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// degradedRecommendation is returned when there is nothing to ground the
// model on. Its confidence sits below campaign.LowConfidenceThreshold so
// downstream consumers can tell it apart from evidence-backed output.
func (a *SpecialistAgent) degradedRecommendation() *campaign.Recommendation {
	return &campaign.Recommendation{
		Agent:      string(a.cfg.Name),
		Candidates: []string{},
		Confidence: campaign.DegradedConfidence,
		Rationale:  fmt.Sprintf("No %s evidence was available for this question.", a.cfg.Namespace),
		Evidence:   []campaign.EvidenceRef{},
		Degraded:   true,
	}
}

func (a *SpecialistAgent) buildRecommendation(reply specialistReply, results []*record.SearchResult) *campaign.Recommendation {
	candidates := make([]string, 0, maxCandidates)
	for _, c := range reply.Candidates {
		if len(candidates) == maxCandidates {
			break
		}
		s, ok := c.(string)
		if !ok {
			s = fmt.Sprintf("%v", c)
		}
		s = strings.TrimSpace(s)
		if s != "" {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		candidates = []string{"No concrete idea produced"}
	}

	confidence := 0.5
	if len(reply.Scores) > 0 {
		confidence = reply.Scores[0]
		for _, s := range reply.Scores[1:] {
			if s > confidence {
				confidence = s
			}
		}
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	rationale := truncateRunes(strings.TrimSpace(reply.Rationale), maxRationaleChars)

	refs := make([]campaign.EvidenceRef, 0, maxEvidenceRefs)
	for _, r := range results {
		if len(refs) == maxEvidenceRefs {
			break
		}
		refs = append(refs, campaign.EvidenceRef{
			RecordID:   r.ID,
			Content:    r.Content,
			Similarity: r.Similarity,
		})
	}

	return &campaign.Recommendation{
		Agent:      string(a.cfg.Name),
		Candidates: candidates,
		Confidence: confidence,
		Rationale:  rationale,
		Evidence:   refs,
	}
}

// truncateRunes cuts s to at most n runes without splitting a multibyte
// character at the boundary
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
