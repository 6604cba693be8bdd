package scout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/flipper/pkg/domain"
)

const (
	jsonReport = "portfolio.json"

	// MarkdownReport is the rendered report name, read back by the MCP
	// portfolio resource and the report command.
	MarkdownReport = "PORTFOLIO.md"
)

// writeReports persists the portfolio as JSON and markdown under dir and
// returns the file names written. Both artifacts are byte-deterministic for
// a given portfolio, which is what lets an unchanged market produce an
// unchanged work tree.
func writeReports(dir string, p domain.Portfolio) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure report directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal portfolio: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(dir, jsonReport), data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", jsonReport, err)
	}

	md := renderMarkdown(p)
	if err := os.WriteFile(filepath.Join(dir, MarkdownReport), []byte(md), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", MarkdownReport, err)
	}

	return []string{jsonReport, MarkdownReport}, nil
}

func renderMarkdown(p domain.Portfolio) string {
	var b strings.Builder

	b.WriteString("# Domain Flipping Portfolio\n\n")

	b.WriteString("## Strategy\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n| --- | --- |\n")
	fmt.Fprintf(&b, "| Domains | %d |\n", len(p.Domains))
	fmt.Fprintf(&b, "| Total investment | $%d |\n", p.TotalInvestment)
	fmt.Fprintf(&b, "| Projected profit | $%.0f |\n", p.ProjectedProfit)
	fmt.Fprintf(&b, "| Projected ROI | %.0f%% |\n\n", p.ROIPercent)

	if len(p.Domains) > 0 {
		b.WriteString("## Acquisitions\n\n")
		b.WriteString("| Domain | Est. value | Cost | Profit | Time to sell |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, a := range p.Domains {
			fmt.Fprintf(&b, "| %s | $%d | %s | $%.0f | %s |\n",
				a.Domain, a.EstimatedValue, a.RegistrationCost, a.ProfitPotential, a.TimeToSell)
		}
		b.WriteString("\n")
	}

	if len(p.Keywords) > 0 {
		b.WriteString("## Trending keywords\n\n")
		b.WriteString("| Keyword | Score | Commercial value |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, kw := range p.Keywords {
			fmt.Fprintf(&b, "| %s | %d | %s (%s) |\n",
				kw.Term, kw.Score, kw.CommercialValue, kw.CommercialValue.Range())
		}
		b.WriteString("\n")
	}

	b.WriteString("## Management plan\n\n")
	fmt.Fprintf(&b, "- Acquisition budget: %s\n", p.Management.AcquisitionBudget)
	fmt.Fprintf(&b, "- Renewal strategy: %s\n", p.Management.RenewalStrategy)
	fmt.Fprintf(&b, "- Selling timeline: %s\n", p.Management.SellingTimeline)
	fmt.Fprintf(&b, "- Profit reinvestment: %s\n\n", p.Management.ProfitReinvestment)

	b.WriteString("## Scaling plan\n\n")
	fmt.Fprintf(&b, "- Months 1-3: %s\n", p.Scaling.Month1To3)
	fmt.Fprintf(&b, "- Months 4-6: %s\n", p.Scaling.Month4To6)
	fmt.Fprintf(&b, "- Months 7-12: %s\n", p.Scaling.Month7To12)
	fmt.Fprintf(&b, "- Year 2: %s\n\n", p.Scaling.Year2)

	b.WriteString("## Marketing playbook\n\n")
	for _, strategy := range domain.MarketingStrategies {
		fmt.Fprintf(&b, "- %s\n", strategy)
	}

	return b.String()
}
