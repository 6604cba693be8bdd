package middleware

import (
	"context"
	"regexp"
	"slices"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// DefaultRedactionPatterns matches the credential shapes that leak into
// run records in practice: git push failures quote the remote URL, and
// authenticated remote URLs embed tokens.
func DefaultRedactionPatterns() []string {
	return []string{
		`ghp_[A-Za-z0-9]+`,
		`gho_[A-Za-z0-9]+`,
		`ghs_[A-Za-z0-9]+`,
		`github_pat_[A-Za-z0-9_]+`,
		`://[^/@\s]+@`,
	}
}

type redactMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks matches of the
// patterns in a run's error and summary before the record is persisted.
// Redaction is one-way; Load returns the record as stored.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunStore) ports.RunStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, run *domain.Run) error {
	// Clone first so the in-memory run the engine keeps using is untouched.
	cloned := *run
	cloned.ChangedFiles = slices.Clone(run.ChangedFiles)
	cloned.ReportPaths = slices.Clone(run.ReportPaths)

	cloned.Error = m.mask(cloned.Error)
	cloned.Summary = m.mask(cloned.Summary)

	return m.next.Save(ctx, &cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (*domain.Run, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	return m.next.List(ctx, limit)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, "***")
	}
	return s
}
