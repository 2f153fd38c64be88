package agents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hermes/internal/domain/campaign"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Result is the full outcome of one pipeline run: which specialists ran,
// what they produced, which of them failed and the synthesized proposal.
type Result struct {
	RunID  uuid.UUID `json:"run_id"`
	Prompt string    `json:"prompt"`

	Route           []AgentName                `json:"route"`
	Recommendations []*campaign.Recommendation `json:"recommendations"`

	// AgentErrors maps a failed specialist to its error text.
	// Partial failure does not abort the run.
	AgentErrors map[string]string `json:"agent_errors,omitempty"`

	Proposal *campaign.Proposal `json:"proposal"`

	ElapsedMs int64 `json:"elapsed_ms"`
}

// Pipeline routes a prompt to specialists and synthesizes their output.
// Specialists run sequentially; a shared local model server handles one
// generation at a time anyway, and sequential runs keep memory pressure flat.
type Pipeline struct {
	specialists map[AgentName]Specialist
	marketer    *MarketerAgent
	log         *logger.Logger
}

// NewPipeline wires the specialists and the marketer into one runnable unit.
// Every routable agent name must have a specialist.
func NewPipeline(specialists []Specialist, marketer *MarketerAgent) (*Pipeline, error) {
	byName := make(map[AgentName]Specialist, len(specialists))
	for _, s := range specialists {
		if _, dup := byName[s.Name()]; dup {
			return nil, errors.Newf("duplicate specialist %q", s.Name())
		}
		byName[s.Name()] = s
	}
	for _, name := range AllAgents() {
		if _, ok := byName[name]; !ok {
			return nil, errors.Newf("missing specialist %q", name)
		}
	}

	return &Pipeline{
		specialists: byName,
		marketer:    marketer,
		log:         logger.Get().With("component", "pipeline"),
	}, nil
}

// Run executes the full prompt-to-proposal flow. A specialist failure is
// recorded and the run continues; the run fails only when every routed
// specialist failed or the marketer itself fails.
func (p *Pipeline) Run(ctx context.Context, prompt string) (*Result, error) {
	start := time.Now()

	result := &Result{
		RunID:  uuid.New(),
		Prompt: prompt,
		Route:  Route(prompt),
	}

	log := p.log.With("run_id", result.RunID.String())
	log.Infow("pipeline started", "route", result.Route)

	for _, name := range result.Route {
		rec, err := p.specialists[name].Run(ctx, prompt)
		if err != nil {
			log.Errorw("specialist failed", "agent", name, "error", err)
			if result.AgentErrors == nil {
				result.AgentErrors = make(map[string]string)
			}
			result.AgentErrors[string(name)] = err.Error()
			continue
		}
		result.Recommendations = append(result.Recommendations, rec)
	}

	if len(result.Recommendations) == 0 {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrapf(errors.ErrNoRecommendations,
			"all %d routed specialists failed", len(result.Route))
	}

	proposal, err := p.marketer.Synthesize(ctx, prompt, result.Recommendations)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "marketer synthesis")
	}
	result.Proposal = proposal

	elapsed := time.Since(start)
	result.ElapsedMs = elapsed.Milliseconds()

	metrics.PipelineRuns.WithLabelValues("success").Inc()
	metrics.PipelineDuration.Observe(elapsed.Seconds())

	log.Infow("pipeline completed",
		"recommendations", len(result.Recommendations),
		"failed_agents", len(result.AgentErrors),
		"elapsed", elapsed)

	return result, nil
}
