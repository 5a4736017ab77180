package domain

import (
	"strings"
	"unicode"
)

// Intent is the closed set of query intents used to route assistant prompts.
type Intent string

// Query intents, in tie-break order.
const (
	IntentGeneral              Intent = "general"
	IntentOrganizationOverview Intent = "organization_overview"
	IntentMaturityCriteria     Intent = "maturity_criteria"
	IntentPolicyLookup         Intent = "policy_lookup"
)

// intentKeyword is a term and its weight. Multi-word terms match as phrases.
type intentKeyword struct {
	term   string
	weight int
}

// intentRule binds an intent to its keyword set.
type intentRule struct {
	intent   Intent
	keywords []intentKeyword
}

// intentRules is ordered; earlier rules win ties.
var intentRules = []intentRule{
	{
		intent: IntentOrganizationOverview,
		keywords: []intentKeyword{
			{"organization profile", 3},
			{"organisation profile", 3},
			{"org profile", 3},
			{"about us", 2},
			{"company", 1},
			{"organization", 1},
			{"organisation", 1},
			{"mission", 1},
			{"overview", 1},
			{"who are", 1},
		},
	},
	{
		intent: IntentMaturityCriteria,
		keywords: []intentKeyword{
			{"maturity level", 3},
			{"maturity", 2},
			{"criteria", 2},
			{"criterion", 2},
			{"mps", 2},
			{"evidence", 1},
			{"assessment", 1},
			{"domain", 1},
		},
	},
	{
		intent: IntentPolicyLookup,
		keywords: []intentKeyword{
			{"policy", 2},
			{"procedure", 2},
			{"standard", 1},
			{"guideline", 1},
			{"compliance", 1},
		},
	},
}

// ClassifyIntent scores query against each intent's keyword set and returns
// the highest-scoring intent. Ties go to the earlier rule; no match yields
// IntentGeneral.
func ClassifyIntent(query string) Intent {
	text := " " + normaliseQuery(query) + " "
	best := IntentGeneral
	bestScore := 0
	for _, rule := range intentRules {
		score := 0
		for _, kw := range rule.keywords {
			if strings.Contains(text, " "+kw.term+" ") {
				score += kw.weight
			}
		}
		if score > bestScore {
			best, bestScore = rule.intent, score
		}
	}
	return best
}

// normaliseQuery lower-cases, replaces punctuation with spaces and collapses whitespace.
func normaliseQuery(q string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, q)
	return strings.Join(strings.Fields(mapped), " ")
}
