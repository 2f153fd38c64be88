package agents

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"hermes/internal/adapters/ai"
	"hermes/internal/domain/record"
)

// stubEmbedder returns a fixed vector or a canned error
type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func (s *stubEmbedder) GenerateBatchEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return len(s.vector) }
func (s *stubEmbedder) Name() string    { return "stub-embedder" }

// stubRepo serves canned search results per namespace
type stubRepo struct {
	results map[record.Namespace][]*record.SearchResult
	err     error
}

func (s *stubRepo) StoreBatch(_ context.Context, _ []*record.Record) error {
	return s.err
}

func (s *stubRepo) SearchSimilar(_ context.Context, ns record.Namespace, _ pgvector.Vector, limit int) ([]*record.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	results := s.results[ns]
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *stubRepo) Count(_ context.Context, ns record.Namespace) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.results[ns])), nil
}

// stubChat replays canned responses in order and records the requests it saw
type stubChat struct {
	responses []string
	usage     ai.Usage
	err       error

	calls []ai.ChatRequest
}

func (s *stubChat) Name() string { return "stub-chat" }

func (s *stubChat) Chat(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}

	content := "{}"
	if len(s.responses) > 0 {
		content = s.responses[0]
		if len(s.responses) > 1 {
			s.responses = s.responses[1:]
		}
	}
	return &ai.ChatResponse{Model: req.Model, Content: content, Usage: s.usage}, nil
}

func searchResult(content string, similarity float64) *record.SearchResult {
	return &record.SearchResult{
		Record: record.Record{
			ID:      uuid.New(),
			Content: content,
		},
		Similarity: similarity,
	}
}

func testSpecialistConfig(name AgentName, ns record.Namespace) SpecialistConfig {
	return SpecialistConfig{
		Name:              name,
		Namespace:         ns,
		Model:             "test-model",
		Persona:           "Test Analyst AI",
		EvidenceNote:      "test evidence",
		Basis:             "these rows",
		Deliverable:       "campaign ideas",
		TopK:              4,
		EvidenceCharLimit: 1000,
		Temperature:       0.2,
		MaxTokens:         400,
	}
}
