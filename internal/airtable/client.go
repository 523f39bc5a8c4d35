// Package airtable is the persistence adapter for the shared project base.
// It looks up projects by job number, writes update records, and patches
// project fields. Every call is one HTTP round trip; retries, if any,
// belong to the caller's deployment, not here.
package airtable

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hunchagency/dotupdate/internal/apperr"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Config holds Airtable connection settings.
type Config struct {
	APIKey        string
	BaseURL       string
	BaseID        string
	ProjectsTable string
	UpdatesTable  string
	Timeout       int // seconds
}

// Client talks to the Airtable REST API.
type Client struct {
	http          *resty.Client
	baseID        string
	projectsTable string
	updatesTable  string
}

// NewClient creates an Airtable client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:          httpClient,
		baseID:        cfg.BaseID,
		projectsTable: cfg.ProjectsTable,
		updatesTable:  cfg.UpdatesTable,
	}
}

// Project is the subset of a Projects record the pipeline needs.
type Project struct {
	RecordID       string
	JobNumber      string
	JobName        string
	ClientName     string
	Stage          string
	Status         string
	Round          int
	WithClient     bool
	TeamsChannelID string
}

// UpdateRecord is a new row for the Updates table.
type UpdateRecord struct {
	ProjectRecordID string
	Text            string
	UpdatedOn       string // ISO date
	Due             string // ISO date
}

type recordsResponse struct {
	Records []apiRecord `json:"records"`
}

type apiRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// ProjectByJobNumber looks up a project record by its job number.
// Returns apperr.ErrJobNotFound when no record matches.
func (c *Client) ProjectByJobNumber(ctx context.Context, jobNumber string) (*Project, error) {
	var out recordsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("filterByFormula", fmt.Sprintf("{Job Number}='%s'", jobNumber)).
		SetResult(&out).
		Get(fmt.Sprintf("/%s/%s", c.baseID, c.projectsTable))
	if err != nil {
		return nil, fmt.Errorf("airtable: project lookup: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("airtable: project lookup: status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Records) == 0 {
		return nil, fmt.Errorf("%w: %s", apperr.ErrJobNotFound, jobNumber)
	}

	rec := out.Records[0]
	p := &Project{
		RecordID:       rec.ID,
		JobNumber:      getString(rec.Fields, "Job Number"),
		JobName:        getString(rec.Fields, "Project Name"),
		ClientName:     getLinkedName(rec.Fields, "Client"),
		Stage:          getString(rec.Fields, "Stage"),
		Status:         getString(rec.Fields, "Status"),
		Round:          getInt(rec.Fields, "Round"),
		WithClient:     getBool(rec.Fields, "With Client?"),
		TeamsChannelID: getString(rec.Fields, "Teams Channel ID"),
	}
	if p.JobNumber == "" {
		p.JobNumber = jobNumber
	}
	return p, nil
}

// CreateUpdate writes a new row to the Updates table.
func (c *Client) CreateUpdate(ctx context.Context, rec UpdateRecord) error {
	body := map[string]any{
		"fields": map[string]any{
			"Project Link": []string{rec.ProjectRecordID},
			"Update":       rec.Text,
			"Updated on":   rec.UpdatedOn,
			"Update due":   rec.Due,
		},
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/%s/%s", c.baseID, c.updatesTable))
	if err != nil {
		return fmt.Errorf("airtable: create update: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("airtable: create update: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// PatchProjectFields patches fields on a project record. Callers are
// responsible for restricting fields to the persisted-field allowlist.
func (c *Client) PatchProjectFields(ctx context.Context, recordID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"fields": fields}).
		Patch(fmt.Sprintf("/%s/%s/%s", c.baseID, c.projectsTable, recordID))
	if err != nil {
		return fmt.Errorf("airtable: patch project: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("airtable: patch project: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// NextWorkingDay adds working days (skipping weekends) to a date.
// Updates default to five working days of follow-up when the message
// carries no due date.
func NextWorkingDay(start time.Time, days int) time.Time {
	current := start
	added := 0
	for added < days {
		current = current.AddDate(0, 0, 1)
		if wd := current.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return current
}

func getString(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func getBool(fields map[string]any, key string) bool {
	if v, ok := fields[key].(bool); ok {
		return v
	}
	return false
}

func getInt(fields map[string]any, key string) int {
	if v, ok := fields[key].(float64); ok {
		return int(v)
	}
	return 0
}

// getLinkedName reads a field that may be a plain string or a linked-record
// list, returning the first entry in the latter case.
func getLinkedName(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
