package scout

import (
	"sort"

	"github.com/aretw0/flipper/pkg/domain"
)

const (
	// appraisalLimit caps how many candidates get valued per pass.
	appraisalLimit = 50

	// minProfitUSD is the bar a candidate must clear to be kept.
	// The valuation formula tops out around $255 of profit, so the bar
	// selects the upper band rather than a literal resale guarantee.
	minProfitUSD = 50
)

// evaluate appraises the leading candidates and keeps the ones clearing the
// profit bar, most profitable first.
func evaluate(candidates []domain.Candidate) []domain.Appraisal {
	if len(candidates) > appraisalLimit {
		candidates = candidates[:appraisalLimit]
	}

	kept := make([]domain.Appraisal, 0, len(candidates))
	for _, c := range candidates {
		a := domain.Appraise(c.Domain)
		if a.ProfitPotential > minProfitUSD {
			kept = append(kept, a)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ProfitPotential > kept[j].ProfitPotential
	})

	return kept
}
