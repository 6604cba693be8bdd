package scout

import "github.com/aretw0/flipper/pkg/domain"

const (
	// singleLimit is how many top keywords get direct TLD and affix variations.
	singleLimit = 10
	// comboBase and comboSpan bound the pairwise combination window.
	comboBase = 5
	comboSpan = 8
)

// generateIdeas expands scored keywords into domain name candidates.
// The strongest keywords get the full variation set; the top few are also
// paired with their runners-up as combination names.
func generateIdeas(keywords []domain.Keyword) []domain.Candidate {
	singles := min(len(keywords), singleLimit)
	ideas := make([]domain.Candidate, 0, singles*8)

	for _, kw := range keywords[:singles] {
		k := kw.Term
		for _, name := range []string{
			k + ".com",
			k + ".ai",
			k + ".io",
			"get" + k + ".com",
			"use" + k + ".com",
			k + "app.com",
			k + "tool.com",
			k + "pro.com",
		} {
			ideas = append(ideas, domain.NewCandidate(name, k))
		}
	}

	base := min(len(keywords), comboBase)
	span := min(len(keywords), comboSpan)
	for i := 0; i < base; i++ {
		for j := i + 1; j < span; j++ {
			k1, k2 := keywords[i].Term, keywords[j].Term
			ideas = append(ideas,
				domain.NewCandidate(k1+k2+".com", k1, k2),
				domain.NewCandidate(k1+"-"+k2+".com", k1, k2),
			)
		}
	}

	return ideas
}
