package domain

import "strings"

// RegistrationCostUSD is the assumed cost of registering any candidate domain.
const RegistrationCostUSD = 15

// RegistrationCostLabel is the human-facing band shown in reports.
const RegistrationCostLabel = "$12-15"

// MarketingStrategies is the fixed playbook attached to every appraised domain.
var MarketingStrategies = []string{
	"List on domain marketplaces (Sedo, Flippa)",
	"Direct outreach to relevant businesses",
	"Social media promotion",
	"Domain auction participation",
}

// Appraisal is the valuation of a single domain candidate.
type Appraisal struct {
	Domain              string   `json:"domain"`
	EstimatedValue      int      `json:"estimated_value"`
	RegistrationCost    string   `json:"registration_cost"`
	ProfitPotential     float64  `json:"profit_potential"`
	TimeToSell          string   `json:"time_to_sell"`
	MarketingStrategies []string `json:"marketing_strategy"`
}

// Appraise values a domain candidate and derives its profit outlook.
func Appraise(domain string) Appraisal {
	return Appraisal{
		Domain:              domain,
		EstimatedValue:      EstimateDomainValue(domain),
		RegistrationCost:    RegistrationCostLabel,
		ProfitPotential:     ProfitPotential(domain),
		TimeToSell:          EstimateSellTime(domain),
		MarketingStrategies: MarketingStrategies,
	}
}

// EstimateDomainValue scores a domain from its TLD, name length and embedded keywords.
func EstimateDomainValue(domain string) int {
	value := 100

	switch {
	case strings.HasSuffix(domain, ".com"):
		value += 200
	case strings.HasSuffix(domain, ".ai"):
		value += 150
	case strings.HasSuffix(domain, ".io"):
		value += 100
	}

	name := domainName(domain)
	switch {
	case len(name) <= 6:
		value += 300
	case len(name) <= 10:
		value += 100
	}

	for _, kw := range []string{"ai", "app", "tool", "pro", "get", "use"} {
		if strings.Contains(name, kw) {
			value += 200
		}
	}

	return value
}

// ProfitPotential estimates resale profit assuming a 10-50x multiple on the
// registration cost, scaled by the appraised value.
func ProfitPotential(domain string) float64 {
	value := EstimateDomainValue(domain)

	multiplier := float64(value) / 100
	if multiplier > 50 {
		multiplier = 50
	}

	profit := float64(RegistrationCostUSD)*multiplier - RegistrationCostUSD
	if profit < 0 {
		return 0
	}
	return profit
}

// EstimateSellTime predicts how long the domain will sit before selling.
func EstimateSellTime(domain string) string {
	value := EstimateDomainValue(domain)

	switch {
	case value > 500:
		return "1-3 months"
	case value > 200:
		return "3-6 months"
	default:
		return "6-12 months"
	}
}

// domainName returns the label before the first dot.
func domainName(domain string) string {
	if i := strings.Index(domain, "."); i >= 0 {
		return domain[:i]
	}
	return domain
}
