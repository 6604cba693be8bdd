// Package loam archives finished runs as markdown documents with YAML
// frontmatter. The archive is the human-facing run history: each run
// becomes one reviewable file, with the run record in the frontmatter
// and the run's report as the body.
package loam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/loam"

	"github.com/aretw0/flipper/pkg/domain"
)

// RunMetadata is the frontmatter of an archived run document.
// Saving marshals through the yaml tags and loading decodes through
// mapstructure, so the two tag sets must stay aligned. Times are
// RFC 3339 strings because mapstructure does not handle time.Time.
type RunMetadata struct {
	ID           string   `json:"id" yaml:"id" mapstructure:"id"`
	Trigger      string   `json:"trigger" yaml:"trigger" mapstructure:"trigger"`
	Status       string   `json:"status" yaml:"status" mapstructure:"status"`
	StartedAt    string   `json:"started_at" yaml:"started_at" mapstructure:"started_at"`
	FinishedAt   string   `json:"finished_at,omitempty" yaml:"finished_at,omitempty" mapstructure:"finished_at"`
	ChangedFiles []string `json:"changed_files,omitempty" yaml:"changed_files,omitempty" mapstructure:"changed_files"`
	CommitHash   string   `json:"commit_hash,omitempty" yaml:"commit_hash,omitempty" mapstructure:"commit_hash"`
	ReportPaths  []string `json:"report_paths,omitempty" yaml:"report_paths,omitempty" mapstructure:"report_paths"`
	Summary      string   `json:"summary,omitempty" yaml:"summary,omitempty" mapstructure:"summary"`
	Error        string   `json:"error,omitempty" yaml:"error,omitempty" mapstructure:"error"`
}

// Archive implements ports.RunArchive on a Loam repository.
type Archive struct {
	repo *loam.TypedRepository[RunMetadata]
}

// NewArchive creates an archive over an existing typed repository.
func NewArchive(repo *loam.TypedRepository[RunMetadata]) *Archive {
	return &Archive{repo: repo}
}

// Open initializes a Loam repository at dir and returns an archive on
// it. Versioning stays off: the workspace publisher owns git, the
// archive is plain files.
func Open(dir string) (*Archive, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid archive path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure archive directory: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithVersioning(false),
		loam.WithStrict(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run archive: %w", err)
	}

	return NewArchive(loam.NewTypedRepository[RunMetadata](repo)), nil
}

// Archive writes the run as a document named after the run ID.
// Archiving the same run again overwrites the document.
func (a *Archive) Archive(ctx context.Context, run *domain.Run, report string) error {
	err := a.repo.Save(ctx, &loam.DocumentModel[RunMetadata]{
		ID:      run.ID,
		Content: report,
		Data:    metadataFromRun(run),
	})
	if err != nil {
		return fmt.Errorf("failed to archive run %s: %w", run.ID, err)
	}
	return nil
}

// Read loads an archived run and its report body.
func (a *Archive) Read(ctx context.Context, id string) (*domain.Run, string, error) {
	doc, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	run, err := runFromMetadata(doc.Data)
	if err != nil {
		return nil, "", fmt.Errorf("archived run %s is malformed: %w", id, err)
	}
	return run, doc.Content, nil
}

// List returns the IDs of all archived runs.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	docs, err := a.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := doc.Data.ID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func metadataFromRun(run *domain.Run) RunMetadata {
	meta := RunMetadata{
		ID:           run.ID,
		Trigger:      string(run.Trigger),
		Status:       string(run.Status),
		StartedAt:    run.StartedAt.Format(time.RFC3339Nano),
		ChangedFiles: run.ChangedFiles,
		CommitHash:   run.CommitHash,
		ReportPaths:  run.ReportPaths,
		Summary:      run.Summary,
		Error:        run.Error,
	}
	if !run.FinishedAt.IsZero() {
		meta.FinishedAt = run.FinishedAt.Format(time.RFC3339Nano)
	}
	return meta
}

func runFromMetadata(meta RunMetadata) (*domain.Run, error) {
	startedAt, err := time.Parse(time.RFC3339Nano, meta.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("bad started_at: %w", err)
	}

	run := &domain.Run{
		ID:           meta.ID,
		Trigger:      domain.Trigger(meta.Trigger),
		Status:       domain.RunStatus(meta.Status),
		StartedAt:    startedAt,
		ChangedFiles: meta.ChangedFiles,
		CommitHash:   meta.CommitHash,
		ReportPaths:  meta.ReportPaths,
		Summary:      meta.Summary,
		Error:        meta.Error,
	}
	if meta.FinishedAt != "" {
		finishedAt, err := time.Parse(time.RFC3339Nano, meta.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("bad finished_at: %w", err)
		}
		run.FinishedAt = finishedAt
	}
	return run, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
