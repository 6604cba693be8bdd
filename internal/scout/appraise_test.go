package scout

import (
	"testing"

	"github.com/aretw0/flipper/pkg/domain"
)

func TestEvaluateFiltersAndSorts(t *testing.T) {
	ideas := []domain.Candidate{
		domain.NewCandidate("saas.com"),         // value 600, profit 75: kept
		domain.NewCandidate("dropshipping.net"), // value 100, profit 0: dropped
		domain.NewCandidate("getai.com"),        // value 1000, profit 135: kept, best
		domain.NewCandidate("serverless.io"),    // value 300, profit 30: dropped
	}

	kept := evaluate(ideas)

	if len(kept) != 2 {
		t.Fatalf("expected 2 appraisals, got %d: %+v", len(kept), kept)
	}
	if kept[0].Domain != "getai.com" {
		t.Errorf("best appraisal = %q, want getai.com", kept[0].Domain)
	}
	if kept[1].Domain != "saas.com" {
		t.Errorf("second appraisal = %q, want saas.com", kept[1].Domain)
	}
}

func TestEvaluateCapsCandidates(t *testing.T) {
	ideas := make([]domain.Candidate, 60)
	for i := range ideas {
		ideas[i] = domain.NewCandidate("saas.com")
	}

	kept := evaluate(ideas)

	if len(kept) != appraisalLimit {
		t.Fatalf("expected %d appraisals, got %d", appraisalLimit, len(kept))
	}
}

func TestEvaluateEmpty(t *testing.T) {
	if kept := evaluate(nil); len(kept) != 0 {
		t.Errorf("expected no appraisals, got %+v", kept)
	}
}
