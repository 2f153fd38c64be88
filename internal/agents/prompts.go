package agents

import (
	"strings"
	"text/template"

	"hermes/pkg/errors"
)

// specialistPromptTemplate is shared by all three specialists; the persona
// and task lines are what differ between them.
const specialistPromptTemplate = `You are a {{.Persona}}.

User question:
"{{.Prompt}}"

Evidence ({{.EvidenceNote}}):
{{.Evidence}}

Task:
- Based ONLY on {{.Basis}}, propose 1-3 {{.Deliverable}}.
- For each idea, assign a confidence score between 0.0 and 1.0 (float).
- Keep reasoning concise.
- Return STRICT JSON with these keys exactly:
  {
    "candidates": ["<string>", "..."],
    "scores": [<float>, ...],
    "rationale": "<string>"
  }
`

// marketerPromptTemplate drives the synthesis call
const marketerPromptTemplate = `You are a Creative Marketing Strategist AI.

User question:
"{{.Prompt}}"

Insights from specialist agents (JSON, compact):
{{.Insights}}

Task:
- Generate ONE NEW campaign idea (new concept, not a past campaign).
- Output STRICT JSON with EXACT keys:
  {
    "campaign_name": "<string>",
    "product": "<string>",
    "region": "<string>",
    "segment": "<string>",
    "concept": "<string>",
    "channels": ["Email","Push","SMS"],
    "content_brief": "<string>"
  }
Keep it concise and actionable.
`

var (
	specialistTmpl = template.Must(template.New("specialist").Parse(specialistPromptTemplate))
	marketerTmpl   = template.Must(template.New("marketer").Parse(marketerPromptTemplate))
)

type specialistPromptData struct {
	Persona      string
	Prompt       string
	EvidenceNote string
	Evidence     string
	Basis        string
	Deliverable  string
}

type marketerPromptData struct {
	Prompt   string
	Insights string
}

func renderSpecialistPrompt(data specialistPromptData) (string, error) {
	if data.Evidence == "" {
		data.Evidence = "- (no evidence found)"
	}

	var sb strings.Builder
	if err := specialistTmpl.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, "render specialist prompt")
	}
	return sb.String(), nil
}

func renderMarketerPrompt(data marketerPromptData) (string, error) {
	var sb strings.Builder
	if err := marketerTmpl.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, "render marketer prompt")
	}
	return sb.String(), nil
}
