package ai

import (
	"context"
	"encoding/json"
	"strings"

	"hermes/pkg/errors"
)

const repairPrompt = `The previous response was supposed to be valid JSON but it is invalid or truncated.
Return only the corrected, valid JSON object (no explanation, no markdown).
Here is the raw output that needs fixing:

%RAW%

Return just the valid JSON object. If fields are truncated, complete them reasonably.`

// DecodeJSON parses a model response into v, tolerating the usual failure
// modes of JSON-mode output: surrounding prose, markdown fences, truncation.
// Returns ErrMalformedResponse when nothing parseable can be recovered.
func DecodeJSON(raw string, v interface{}) error {
	candidates := []string{raw, closeBraces(raw)}
	if extracted, ok := largestBraceGroup(raw); ok {
		candidates = append(candidates, extracted, closeBraces(extracted))
	}

	for _, c := range candidates {
		if json.Unmarshal([]byte(c), v) == nil {
			return nil
		}
	}

	snippet := raw
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return errors.Wrapf(errors.ErrMalformedResponse, "raw: %q", snippet)
}

// ChatJSON runs a JSON-mode chat call and decodes the answer into v,
// returning the response that parsed so callers can account for token usage.
// If the first response does not parse, the model is asked once to repair
// its own output; the repair call is part of the same logical request, not
// a retry of the pipeline.
func ChatJSON(ctx context.Context, provider ChatProvider, req ChatRequest, v interface{}) (*ChatResponse, error) {
	req.JSONMode = true

	resp, err := provider.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	if DecodeJSON(resp.Content, v) == nil {
		return resp, nil
	}

	repairReq := ChatRequest{
		Model: req.Model,
		Messages: []Message{
			{Role: RoleUser, Content: strings.Replace(repairPrompt, "%RAW%", resp.Content, 1)},
		},
		Temperature: req.Temperature,
		MaxTokens:   max(req.MaxTokens*2, 800),
		JSONMode:    true,
	}

	repairResp, err := provider.Chat(ctx, repairReq)
	if err != nil {
		// The original response is the authoritative failure here
		return nil, DecodeJSON(resp.Content, v)
	}

	if DecodeJSON(repairResp.Content, v) == nil {
		return repairResp, nil
	}
	return nil, DecodeJSON(resp.Content, v)
}

// largestBraceGroup returns the substring between the first '{' and the last
// '}', a heuristic that strips prose and markdown fences around JSON.
func largestBraceGroup(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// closeBraces appends missing closing braces to truncated JSON
func closeBraces(s string) string {
	opens := strings.Count(s, "{")
	closes := strings.Count(s, "}")
	if opens > closes {
		return s + strings.Repeat("}", opens-closes)
	}
	return s
}
