package domain

import "strings"

// TechTrends are the built-in technology terms seeded into every harvest.
var TechTrends = []string{
	"ai-agents", "automation", "serverless", "nocode", "defi",
	"metaverse", "nft", "crypto", "blockchain", "web3",
	"saas", "productivity", "remote-work", "sustainability",
}

// BusinessTrends are the built-in business terms seeded into every harvest.
var BusinessTrends = []string{
	"digital-nomad", "side-hustle", "passive-income", "ecommerce",
	"dropshipping", "affiliate", "influencer", "coaching",
}

// CommercialValue buckets a keyword by expected resale band.
type CommercialValue string

const (
	ValueHigh   CommercialValue = "high"
	ValueMedium CommercialValue = "medium"
	ValueLow    CommercialValue = "low"
)

// Range returns the dollar band for the bucket.
func (v CommercialValue) Range() string {
	switch v {
	case ValueHigh:
		return "$1000+"
	case ValueMedium:
		return "$500-1000"
	default:
		return "$100-500"
	}
}

// Keyword is a scored trending term, the raw material for domain candidates.
// SourceStatic marks keywords seeded from the built-in trend lists.
const SourceStatic = "static"

type Keyword struct {
	Term            string          `json:"keyword"`
	Score           int             `json:"score"`
	CommercialValue CommercialValue `json:"commercial_value"`

	// Source records which trend source contributed the term. It stays
	// out of the report artifacts; provenance is for logs and stats.
	Source string `json:"-"`
}

// NewKeyword scores a term and buckets its commercial value.
func NewKeyword(term string) Keyword {
	return Keyword{
		Term:            term,
		Score:           ScoreTrend(term),
		CommercialValue: EstimateCommercialValue(term),
	}
}

// ScoreTrend rates the domain-flipping potential of a term on a 0-100 scale.
// Matching is by substring, so "blockchain" picks up the "ai" bonus.
func ScoreTrend(term string) int {
	score := 50

	if containsAny(term, "ai", "automation", "saas", "app") {
		score += 30
	}
	if containsAny(term, "income", "money", "profit", "business") {
		score += 25
	}
	// Short terms make better domains.
	if len(term) <= 8 {
		score += 20
	}

	if score > 100 {
		score = 100
	}
	return score
}

// EstimateCommercialValue buckets a term by the market segments it touches.
func EstimateCommercialValue(term string) CommercialValue {
	switch {
	case containsAny(term, "ai", "crypto", "saas", "app"):
		return ValueHigh
	case containsAny(term, "tool", "pro", "business"):
		return ValueMedium
	default:
		return ValueLow
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
