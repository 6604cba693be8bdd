package domain

import (
	"reflect"
	"testing"
)

func TestEstimateDomainValue(t *testing.T) {
	tests := []struct {
		domain string
		want   int
	}{
		// 100 base + 200 .com + 300 short name
		{"saas.com", 600},
		// 100 base + 200 .com + 300 short + 200 "ai" + 200 "get"
		{"getai.com", 1000},
		// 100 base + 100 .io + 100 mid-length + 200 "ai" substring
		{"blockchain.io", 500},
		// 100 base + 150 .ai + 0 length (14 chars) + 200 "ai" in name
		{"sustainability.ai", 450},
		// 100 base + no TLD bonus + 300 short
		{"defi", 400},
		// 100 base + 200 .com + 100 mid-length + 200 "app" + 200 "tool"
		{"apptool.com", 800},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			if got := EstimateDomainValue(tt.domain); got != tt.want {
				t.Errorf("EstimateDomainValue(%q) = %d, want %d", tt.domain, got, tt.want)
			}
		})
	}
}

func TestProfitPotential(t *testing.T) {
	// saas.com is worth 600, so the multiplier is 6.0: 15*6 - 15 = 75.
	if got := ProfitPotential("saas.com"); got != 75 {
		t.Errorf("ProfitPotential(saas.com) = %v, want 75", got)
	}

	// getai.com is worth 1000: 15*10 - 15 = 135.
	if got := ProfitPotential("getai.com"); got != 135 {
		t.Errorf("ProfitPotential(getai.com) = %v, want 135", got)
	}

	// Profit never goes negative.
	if got := ProfitPotential("x"); got < 0 {
		t.Errorf("ProfitPotential(x) = %v, want >= 0", got)
	}
}

func TestEstimateSellTime(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{"saas.com", "1-3 months"},         // value 600
		{"blockchain.io", "3-6 months"},    // value 500
		{"nft", "3-6 months"},              // value 400, short name bonus only
		{"dropshipping.net", "6-12 months"}, // value 100, no bonus at all
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			if got := EstimateSellTime(tt.domain); got != tt.want {
				t.Errorf("EstimateSellTime(%q) = %q, want %q", tt.domain, got, tt.want)
			}
		})
	}
}

func TestAppraise(t *testing.T) {
	a := Appraise("getai.com")

	if a.Domain != "getai.com" {
		t.Errorf("Domain = %q", a.Domain)
	}
	if a.EstimatedValue != 1000 {
		t.Errorf("EstimatedValue = %d, want 1000", a.EstimatedValue)
	}
	if a.RegistrationCost != RegistrationCostLabel {
		t.Errorf("RegistrationCost = %q", a.RegistrationCost)
	}
	if a.ProfitPotential != 135 {
		t.Errorf("ProfitPotential = %v, want 135", a.ProfitPotential)
	}
	if a.TimeToSell != "1-3 months" {
		t.Errorf("TimeToSell = %q", a.TimeToSell)
	}
	if !reflect.DeepEqual(a.MarketingStrategies, MarketingStrategies) {
		t.Errorf("MarketingStrategies = %v", a.MarketingStrategies)
	}
}
