package scout

import (
	"context"
	"sort"

	"github.com/aretw0/flipper/pkg/domain"
)

// topKeywords caps how many scored terms feed the candidate generator.
const topKeywords = 20

type sourcedTerm struct {
	term   string
	source string
}

// harvest merges every trend source with the built-in lists, dedupes and
// scores the terms, and returns the best ones.
//
// Sources are best-effort: a failing source is logged and skipped so a
// GitHub outage degrades the harvest to the built-in lists instead of
// failing the run.
func (s *Scout) harvest(ctx context.Context) []domain.Keyword {
	var raw []sourcedTerm
	for _, src := range s.sources {
		terms, err := src.Fetch(ctx)
		if err != nil {
			s.logger.Warn("trend source failed, continuing without it",
				"source", src.Name(), "error", err)
			continue
		}
		s.logger.Debug("trend source contributed", "source", src.Name(), "terms", len(terms))
		for _, term := range terms {
			raw = append(raw, sourcedTerm{term: term, source: src.Name()})
		}
	}
	for _, term := range domain.TechTrends {
		raw = append(raw, sourcedTerm{term: term, source: domain.SourceStatic})
	}
	for _, term := range domain.BusinessTrends {
		raw = append(raw, sourcedTerm{term: term, source: domain.SourceStatic})
	}

	// Dedupe keeping first occurrence so ties rank deterministically.
	seen := make(map[string]struct{}, len(raw))
	keywords := make([]domain.Keyword, 0, len(raw))
	for _, st := range raw {
		if st.term == "" {
			continue
		}
		if _, dup := seen[st.term]; dup {
			continue
		}
		seen[st.term] = struct{}{}
		kw := domain.NewKeyword(st.term)
		kw.Source = st.source
		keywords = append(keywords, kw)
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].Score > keywords[j].Score
	})

	if len(keywords) > topKeywords {
		keywords = keywords[:topKeywords]
	}
	return keywords
}
