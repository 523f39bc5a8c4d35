// Package updateservice coordinates the extraction-normalization-composition
// pipeline for one status update: validate, look up the project, classify,
// normalize, render, persist, record.
package updateservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hunchagency/dotupdate/internal/airtable"
	"github.com/hunchagency/dotupdate/internal/apperr"
	"github.com/hunchagency/dotupdate/internal/auditlog"
	"github.com/hunchagency/dotupdate/internal/compose"
	"github.com/hunchagency/dotupdate/internal/extract"
	"github.com/hunchagency/dotupdate/internal/normalize"
	"github.com/hunchagency/dotupdate/internal/sse"
	"github.com/hunchagency/dotupdate/internal/vocab"
)

// Extractor classifies a raw message into candidate facts.
type Extractor interface {
	Extract(ctx context.Context, job extract.JobContext, emailContent string) ([]extract.Candidate, error)
}

// Persistence is the record-store collaborator. Failures here are reported
// through result flags, never as request failures.
type Persistence interface {
	ProjectByJobNumber(ctx context.Context, jobNumber string) (*airtable.Project, error)
	CreateUpdate(ctx context.Context, rec airtable.UpdateRecord) error
	PatchProjectFields(ctx context.Context, recordID string, fields map[string]any) error
}

// Result is the outcome of one processed update.
type Result struct {
	JobNumber       string         `json:"jobNumber"`
	JobName         string         `json:"jobName"`
	UpdateTypes     []string       `json:"updateTypes"`
	AirtableUpdate  string         `json:"airtableUpdate"`
	TeamsPost       string         `json:"teamsPost"`
	ProjectUpdates  map[string]any `json:"projectUpdates"`
	UpdateCreated   bool           `json:"updateCreated"`
	ProjectUpdated  bool           `json:"projectUpdated"`
	TeamsChannelID  string         `json:"teamsChannelId,omitempty"`
	ProjectRecordID string         `json:"projectRecordId,omitempty"`
}

// Service runs the update pipeline.
type Service struct {
	extractor Extractor
	store     Persistence
	audit     *auditlog.Store
	broker    *sse.Broker
	logger    *slog.Logger

	now func() time.Time
}

// NewService creates the pipeline service. audit and broker may be nil;
// the pipeline then skips local history and event broadcasting.
func NewService(extractor Extractor, store Persistence, audit *auditlog.Store, broker *sse.Broker, logger *slog.Logger) *Service {
	return &Service{
		extractor: extractor,
		store:     store,
		audit:     audit,
		broker:    broker,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessUpdate runs the full pipeline for one message.
//
// Validation and extraction failures abort with no side effects. Persistence
// failures do not: the rendered artifacts are still returned with the
// corresponding flag set false, because the summaries are useful whether or
// not the record store accepted them.
func (s *Service) ProcessUpdate(ctx context.Context, jobNumber, emailContent string) (*Result, error) {
	jobNumber = strings.TrimSpace(jobNumber)
	emailContent = strings.TrimSpace(emailContent)
	if jobNumber == "" {
		return nil, fmt.Errorf("%w: jobNumber is required", apperr.ErrValidation)
	}
	if emailContent == "" {
		return nil, fmt.Errorf("%w: emailContent is required", apperr.ErrValidation)
	}

	project, err := s.store.ProjectByJobNumber(ctx, jobNumber)
	if err != nil {
		if errors.Is(err, apperr.ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("project lookup: %w", err)
	}

	cands, err := s.extractor.Extract(ctx, extract.JobContext{
		JobNumber:    project.JobNumber,
		JobName:      project.JobName,
		ClientName:   project.ClientName,
		CurrentStage: project.Stage,
	}, emailContent)
	if err != nil {
		return nil, err
	}

	today := s.now()
	facts := normalize.Normalize(cands, today)
	rendered := compose.Render(facts)

	updateTypes := make([]string, 0, len(facts))
	projectUpdates := make(map[string]any)
	dueISO := ""
	for _, f := range facts {
		updateTypes = append(updateTypes, string(f.Type))
		if !f.Confident {
			continue
		}
		if f.Type == vocab.TypeDueDate {
			dueISO = f.Value
		}
		if field, ok := vocab.ProjectField(f.Type); ok {
			projectUpdates[field] = normalize.ProjectValue(f)
		}
	}

	result := &Result{
		JobNumber:       project.JobNumber,
		JobName:         project.JobName,
		UpdateTypes:     updateTypes,
		AirtableUpdate:  rendered.AirtableUpdate,
		TeamsPost:       rendered.TeamsPost,
		ProjectUpdates:  projectUpdates,
		TeamsChannelID:  project.TeamsChannelID,
		ProjectRecordID: project.RecordID,
	}

	if rendered.AirtableUpdate != "" {
		if dueISO == "" {
			dueISO = airtable.NextWorkingDay(today, 5).Format("2006-01-02")
		}
		err := s.store.CreateUpdate(ctx, airtable.UpdateRecord{
			ProjectRecordID: project.RecordID,
			Text:            rendered.AirtableUpdate,
			UpdatedOn:       today.Format("2006-01-02"),
			Due:             dueISO,
		})
		if err != nil {
			s.logger.Error("update record create failed",
				slog.String("job_number", jobNumber),
				slog.String("error", err.Error()))
		} else {
			result.UpdateCreated = true
		}
	}

	if len(projectUpdates) > 0 {
		if err := s.store.PatchProjectFields(ctx, project.RecordID, projectUpdates); err != nil {
			s.logger.Error("project patch failed",
				slog.String("job_number", jobNumber),
				slog.String("error", err.Error()))
		} else {
			result.ProjectUpdated = true
		}
	}

	if s.audit != nil {
		err := s.audit.Insert(auditlog.Record{
			JobNumber:      project.JobNumber,
			RawText:        emailContent,
			UpdateTypes:    updateTypes,
			AirtableUpdate: rendered.AirtableUpdate,
			TeamsPost:      rendered.TeamsPost,
			UpdateCreated:  result.UpdateCreated,
			ProjectUpdated: result.ProjectUpdated,
		})
		if err != nil {
			s.logger.Warn("audit log insert failed", slog.String("error", err.Error()))
		}
	}

	if s.broker != nil {
		s.broker.PublishUpdate(sse.UpdateEvent{
			JobNumber:   project.JobNumber,
			JobName:     project.JobName,
			UpdateTypes: updateTypes,
			TeamsPost:   rendered.TeamsPost,
		})
	}

	return result, nil
}
