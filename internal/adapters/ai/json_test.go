package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/pkg/errors"
)

type scriptedProvider struct {
	responses []string
	err       error
	calls     []ChatRequest
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Chat(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	content := "{}"
	if len(s.calls) <= len(s.responses) {
		content = s.responses[len(s.calls)-1]
	}
	return &ChatResponse{
		Content: content,
		Usage:   Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

type reply struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want reply
	}{
		{
			name: "clean JSON",
			raw:  `{"name":"a","score":3}`,
			want: reply{Name: "a", Score: 3},
		},
		{
			name: "markdown fences",
			raw:  "```json\n{\"name\":\"a\",\"score\":3}\n```",
			want: reply{Name: "a", Score: 3},
		},
		{
			name: "surrounding prose",
			raw:  `Sure, here is the JSON you asked for: {"name":"a","score":3} Hope that helps!`,
			want: reply{Name: "a", Score: 3},
		},
		{
			name: "truncated object",
			raw:  `{"name":"a","score":3`,
			want: reply{Name: "a", Score: 3},
		},
		{
			name: "truncated nested object",
			raw:  `{"name":"a","score":3,"extra":{"x":1`,
			want: reply{Name: "a", Score: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got reply
			require.NoError(t, DecodeJSON(tt.raw, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSONUnrecoverable(t *testing.T) {
	var got reply
	err := DecodeJSON("the model refused to answer", &got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedResponse))
}

func TestChatJSONFirstResponseParses(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{"name":"a","score":1}`}}

	var got reply
	resp, err := ChatJSON(context.Background(), provider, ChatRequest{Model: "m"}, &got)
	require.NoError(t, err)
	assert.Equal(t, reply{Name: "a", Score: 1}, got)
	assert.Len(t, provider.calls, 1)
	assert.True(t, provider.calls[0].JSONMode)

	require.NotNil(t, resp)
	assert.Equal(t, 10, resp.Usage.PromptTokens)
	assert.Equal(t, 5, resp.Usage.CompletionTokens)
}

func TestChatJSONRepairRound(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"completely broken output",
		`{"name":"fixed","score":2}`,
	}}

	var got reply
	resp, err := ChatJSON(context.Background(), provider, ChatRequest{Model: "m", MaxTokens: 100}, &got)
	require.NoError(t, err)
	assert.Equal(t, reply{Name: "fixed", Score: 2}, got)
	require.NotNil(t, resp, "the repair response is the one that parsed")

	require.Len(t, provider.calls, 2)
	repair := provider.calls[1]
	assert.Contains(t, repair.Messages[0].Content, "completely broken output")
	assert.GreaterOrEqual(t, repair.MaxTokens, 800)
}

func TestChatJSONRepairFails(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"broken", "still broken"}}

	var got reply
	resp, err := ChatJSON(context.Background(), provider, ChatRequest{Model: "m"}, &got)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, errors.ErrMalformedResponse))
	assert.Len(t, provider.calls, 2, "exactly one repair attempt")
}

func TestChatJSONProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.ErrModelUnavailable}

	var got reply
	_, err := ChatJSON(context.Background(), provider, ChatRequest{Model: "m"}, &got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
}
