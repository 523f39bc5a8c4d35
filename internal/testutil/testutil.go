// Package testutil provides shared test doubles for the pipeline's two
// external collaborators and a throwaway audit log.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/hunchagency/dotupdate/internal/airtable"
	"github.com/hunchagency/dotupdate/internal/apperr"
	"github.com/hunchagency/dotupdate/internal/auditlog"
	"github.com/hunchagency/dotupdate/internal/extract"
)

// StaticExtractor returns canned candidates without calling a model.
type StaticExtractor struct {
	Cands []extract.Candidate
	Err   error
}

// Extract implements updateservice.Extractor.
func (e *StaticExtractor) Extract(_ context.Context, _ extract.JobContext, _ string) ([]extract.Candidate, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Cands, nil
}

// FakeStore is an in-memory stand-in for the Airtable adapter.
type FakeStore struct {
	Project   *airtable.Project
	CreateErr error
	PatchErr  error

	Updates []airtable.UpdateRecord
	Patches []map[string]any
}

// ProjectByJobNumber implements updateservice.Persistence.
func (f *FakeStore) ProjectByJobNumber(_ context.Context, _ string) (*airtable.Project, error) {
	if f.Project == nil {
		return nil, apperr.ErrJobNotFound
	}
	return f.Project, nil
}

// CreateUpdate implements updateservice.Persistence.
func (f *FakeStore) CreateUpdate(_ context.Context, rec airtable.UpdateRecord) error {
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.Updates = append(f.Updates, rec)
	return nil
}

// PatchProjectFields implements updateservice.Persistence.
func (f *FakeStore) PatchProjectFields(_ context.Context, _ string, fields map[string]any) error {
	if f.PatchErr != nil {
		return f.PatchErr
	}
	f.Patches = append(f.Patches, fields)
	return nil
}

// TestProject returns a canned project record.
func TestProject() *airtable.Project {
	return &airtable.Project{
		RecordID:       "rec123",
		JobNumber:      "TOW 087",
		JobName:        "Tower Rebrand",
		ClientName:     "Tower Corp",
		Stage:          "Concept",
		TeamsChannelID: "19:abc@thread.tacv2",
	}
}

// TestAuditLog creates a temporary audit log that is automatically cleaned up.
func TestAuditLog(t *testing.T) *auditlog.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "dotupdate-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := auditlog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// QuietLogger returns a logger that only emits errors, keeping test output clean.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
