// Package scout implements the built-in analysis agent.
//
// One pass harvests trending keywords, expands them into domain name
// candidates, appraises each candidate and writes the resulting flipping
// strategy into the workspace as report artifacts. The pass is deterministic
// for a given harvest so the publisher can recognize an unchanged market.
package scout

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// DefaultReportDir is where artifacts land inside the workspace.
const DefaultReportDir = "data"

// Scout is the built-in ports.Agent.
type Scout struct {
	logger    *slog.Logger
	sources   []ports.TrendSource
	reportDir string
}

// New creates a Scout reading from the given trend sources.
// Sources are optional; the built-in trend lists always contribute.
func New(logger *slog.Logger, sources []ports.TrendSource, reportDir string) *Scout {
	if logger == nil {
		logger = slog.Default()
	}
	if reportDir == "" {
		reportDir = DefaultReportDir
	}
	return &Scout{
		logger:    logger,
		sources:   sources,
		reportDir: reportDir,
	}
}

// Execute runs one full analysis pass against the workspace.
func (s *Scout) Execute(ctx context.Context, ws *ports.Workspace) (*ports.AgentResult, error) {
	keywords := s.harvest(ctx)

	ideas := generateIdeas(keywords)
	appraisals := evaluate(ideas)
	portfolio := domain.BuildPortfolio(keywords, appraisals)

	s.logger.Info("analysis pass complete",
		"keywords", len(keywords),
		"candidates", len(ideas),
		"kept", len(appraisals),
		"portfolio", len(portfolio.Domains),
		"projected_profit", portfolio.ProjectedProfit,
	)

	reportDir := filepath.Join(ws.Dir, s.reportDir)
	paths, err := writeReports(reportDir, portfolio)
	if err != nil {
		return nil, fmt.Errorf("failed to write reports: %w", err)
	}

	// Report paths are relative to the workspace root for the publisher.
	rel := make([]string, len(paths))
	for i, p := range paths {
		rel[i] = filepath.Join(s.reportDir, p)
	}

	return &ports.AgentResult{
		Summary: fmt.Sprintf("portfolio of %d domains, projected profit $%.0f",
			len(portfolio.Domains), portfolio.ProjectedProfit),
		ReportPaths: rel,
		Stats: map[string]int{
			"keywords":   len(keywords),
			"candidates": len(ideas),
			"appraised":  len(appraisals),
			"portfolio":  len(portfolio.Domains),
		},
	}, nil
}
