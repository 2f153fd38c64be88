package agents

import (
	"strings"
	"unicode"
)

// routingVocabulary maps each specialist to the terms that mark a prompt as
// belonging to its domain. Single words match whole tokens; entries with a
// space match as phrases. Note the campaign vocabulary is performance
// oriented on purpose: the bare word "campaign" appears in almost every
// prompt this system receives and would make the router over-inclusive.
var routingVocabulary = map[AgentName][]string{
	AgentSentiment: {
		"sentiment", "sentiments", "review", "reviews", "feedback",
		"complaint", "complaints", "rating", "ratings", "opinion", "opinions",
	},
	AgentPurchase: {
		"purchase", "purchases", "purchasing", "buy", "buying", "buyer", "buyers",
		"order", "orders", "transaction", "transactions", "payment", "payments",
		"sales", "spend", "spending",
	},
	AgentCampaign: {
		"ctr", "click", "clicks", "conversion", "conversions",
		"impression", "impressions", "channel", "channels",
		"past campaign", "past campaigns", "campaign performance",
		"campaign history", "historical campaign", "historical campaigns",
	},
}

// broadKeywords widen the route to every specialist, mirroring prompts that
// ask for an overall strategy rather than one domain
var broadKeywords = []string{"overall", "best", "strategy"}

// Route inspects a free-text prompt and returns the specialists to invoke,
// in canonical order. A prompt matching no domain vocabulary selects all
// three so the marketer always has some evidence to synthesize.
// Pure function: same prompt, same route.
func Route(prompt string) []AgentName {
	tokens := tokenize(prompt)
	lowered := strings.ToLower(prompt)

	for _, kw := range broadKeywords {
		if tokens[kw] {
			return AllAgents()
		}
	}

	var route []AgentName
	for _, name := range AllAgents() {
		if matchesVocabulary(name, tokens, lowered) {
			route = append(route, name)
		}
	}

	if len(route) == 0 {
		return AllAgents()
	}
	return route
}

func matchesVocabulary(name AgentName, tokens map[string]bool, lowered string) bool {
	for _, term := range routingVocabulary[name] {
		if strings.Contains(term, " ") {
			if strings.Contains(lowered, term) {
				return true
			}
			continue
		}
		if tokens[term] {
			return true
		}
	}
	return false
}

// tokenize splits a prompt into a set of lowercase word tokens
func tokenize(prompt string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		tokens[f] = true
	}
	return tokens
}
