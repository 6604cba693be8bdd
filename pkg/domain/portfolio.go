package domain

// PortfolioSize caps how many appraisals make it into the strategy.
const PortfolioSize = 20

// ManagementPlan describes how the acquired portfolio is operated.
type ManagementPlan struct {
	AcquisitionBudget  string `json:"acquisition_budget"`
	RenewalStrategy    string `json:"renewal_strategy"`
	SellingTimeline    string `json:"selling_timeline"`
	ProfitReinvestment string `json:"profit_reinvestment"`
}

// ScalingPlan describes the growth roadmap for the operation.
type ScalingPlan struct {
	Month1To3  string `json:"month_1_3"`
	Month4To6  string `json:"month_4_6"`
	Month7To12 string `json:"month_7_12"`
	Year2      string `json:"year_2"`
}

// DefaultManagementPlan returns the standing portfolio management playbook.
func DefaultManagementPlan() ManagementPlan {
	return ManagementPlan{
		AcquisitionBudget:  "$300/month",
		RenewalStrategy:    "Renew high-value domains only",
		SellingTimeline:    "6-12 months average hold time",
		ProfitReinvestment: "50% reinvested in new domains",
	}
}

// DefaultScalingPlan returns the standing growth roadmap.
func DefaultScalingPlan() ScalingPlan {
	return ScalingPlan{
		Month1To3:  "Acquire and test initial portfolio",
		Month4To6:  "Scale successful domain types",
		Month7To12: "Focus on premium domain acquisitions",
		Year2:      "Expand to expired domain auctions",
	}
}

// Portfolio is the full flipping strategy assembled from one analysis pass.
// It carries no timestamps: identical inputs must serialize to identical
// bytes so the publisher's diff gate can recognize an unchanged report.
type Portfolio struct {
	Keywords        []Keyword      `json:"keywords,omitempty"`
	Domains         []Appraisal    `json:"portfolio"`
	TotalInvestment int            `json:"total_investment"`
	ProjectedProfit float64        `json:"projected_profit"`
	ROIPercent      float64        `json:"roi_percentage"`
	Management      ManagementPlan `json:"portfolio_management"`
	Scaling         ScalingPlan    `json:"scaling_plan"`
}

// BuildPortfolio selects the top appraisals and derives the investment figures.
// Appraisals are expected to arrive sorted by profit potential, best first.
func BuildPortfolio(keywords []Keyword, appraisals []Appraisal) Portfolio {
	picked := appraisals
	if len(picked) > PortfolioSize {
		picked = picked[:PortfolioSize]
	}

	investment := len(picked) * RegistrationCostUSD

	var profit float64
	for _, a := range picked {
		profit += a.ProfitPotential
	}

	var roi float64
	if investment > 0 {
		roi = profit / float64(investment) * 100
	}

	return Portfolio{
		Keywords:        keywords,
		Domains:         picked,
		TotalInvestment: investment,
		ProjectedProfit: profit,
		ROIPercent:      roi,
		Management:      DefaultManagementPlan(),
		Scaling:         DefaultScalingPlan(),
	}
}
