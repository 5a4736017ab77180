package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		query string
		want  Intent
	}{
		{"", IntentGeneral},
		{"what time is it", IntentGeneral},
		{"Show me our org profile", IntentOrganizationOverview},
		{"Tell me about the company mission", IntentOrganizationOverview},
		{"What are the maturity level criteria for leadership?", IntentMaturityCriteria},
		{"which evidence satisfies MPS 4.2", IntentMaturityCriteria},
		{"where is the travel policy?", IntentPolicyLookup},
		{"incident procedure", IntentPolicyLookup},
		// "organization" alone scores 1 for overview; "policy" scores 2.
		{"organization policy", IntentPolicyLookup},
		// equal scores fall back to declaration order.
		{"company standard", IntentOrganizationOverview},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.query))
		})
	}
}

func TestClassifyIntent_WholeWordsOnly(t *testing.T) {
	// "policyholder" must not match "policy".
	assert.Equal(t, IntentGeneral, ClassifyIntent("policyholder"))
}
