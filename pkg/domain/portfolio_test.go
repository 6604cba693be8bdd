package domain

import "testing"

func TestBuildPortfolio(t *testing.T) {
	appraisals := make([]Appraisal, 25)
	for i := range appraisals {
		appraisals[i] = Appraisal{Domain: "example.com", ProfitPotential: 100}
	}

	p := BuildPortfolio(nil, appraisals)

	if len(p.Domains) != PortfolioSize {
		t.Fatalf("expected %d domains, got %d", PortfolioSize, len(p.Domains))
	}
	if p.TotalInvestment != PortfolioSize*RegistrationCostUSD {
		t.Errorf("TotalInvestment = %d, want %d", p.TotalInvestment, PortfolioSize*RegistrationCostUSD)
	}
	if p.ProjectedProfit != 2000 {
		t.Errorf("ProjectedProfit = %v, want 2000", p.ProjectedProfit)
	}
	// 2000 profit on 300 invested.
	wantROI := 2000.0 / 300.0 * 100
	if p.ROIPercent != wantROI {
		t.Errorf("ROIPercent = %v, want %v", p.ROIPercent, wantROI)
	}
	if p.Management != DefaultManagementPlan() {
		t.Errorf("unexpected management plan: %+v", p.Management)
	}
	if p.Scaling != DefaultScalingPlan() {
		t.Errorf("unexpected scaling plan: %+v", p.Scaling)
	}
}

func TestBuildPortfolioEmpty(t *testing.T) {
	p := BuildPortfolio(nil, nil)

	if len(p.Domains) != 0 {
		t.Fatalf("expected empty portfolio, got %d domains", len(p.Domains))
	}
	if p.TotalInvestment != 0 {
		t.Errorf("TotalInvestment = %d, want 0", p.TotalInvestment)
	}
	// No division by zero: an empty portfolio reports zero ROI.
	if p.ROIPercent != 0 {
		t.Errorf("ROIPercent = %v, want 0", p.ROIPercent)
	}
}

func TestBuildPortfolioKeepsOrder(t *testing.T) {
	appraisals := []Appraisal{
		{Domain: "first.com", ProfitPotential: 300},
		{Domain: "second.com", ProfitPotential: 200},
		{Domain: "third.com", ProfitPotential: 100},
	}

	p := BuildPortfolio(nil, appraisals)

	if p.Domains[0].Domain != "first.com" || p.Domains[2].Domain != "third.com" {
		t.Errorf("portfolio reordered the appraisals: %+v", p.Domains)
	}
}
