// Package extract turns a raw update message into candidate facts by way
// of the classification model. Model output is treated as untrusted input:
// it must decode as the exact expected shape or the extraction fails whole.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hunchagency/dotupdate/internal/apperr"
	"github.com/hunchagency/dotupdate/internal/llm"
	"github.com/hunchagency/dotupdate/internal/prompt"
	"github.com/hunchagency/dotupdate/internal/vocab"
)

// JobContext carries the project details included in the classification
// prompt so the model can resolve references like "the next stage".
type JobContext struct {
	JobNumber    string
	JobName      string
	ClientName   string
	CurrentStage string
}

// Candidate is one (type, raw value) pair emitted by the classifier,
// filtered to the known vocabulary but not yet normalized.
type Candidate struct {
	Type     vocab.UpdateType
	RawValue string
}

// Extractor calls the classification model and validates its output.
type Extractor struct {
	provider llm.Provider
	prompts  *prompt.Loader
	maxFacts int
	logger   *slog.Logger
}

// NewExtractor creates an Extractor. maxFacts caps how many candidates a
// single message may yield; excess is dropped in order.
func NewExtractor(provider llm.Provider, prompts *prompt.Loader, maxFacts int, logger *slog.Logger) *Extractor {
	if maxFacts <= 0 {
		maxFacts = 8
	}
	return &Extractor{provider: provider, prompts: prompts, maxFacts: maxFacts, logger: logger}
}

// rawFact is the exact wire shape the classifier must emit.
type rawFact struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Extract classifies emailContent into candidate facts. A provider failure
// or a payload that does not conform to the expected shape fails the whole
// extraction with apperr.ErrExtraction; there is no partial recovery.
func (e *Extractor) Extract(ctx context.Context, job JobContext, emailContent string) ([]Candidate, error) {
	content := fmt.Sprintf(`Job Number: %s
Job Name: %s
Client Name: %s
Current Stage: %s
Email/Message Content:
%s`, job.JobNumber, job.JobName, job.ClientName, job.CurrentStage, emailContent)

	resp, err := e.provider.Complete(ctx, llm.Request{
		System:      e.prompts.Get(),
		Content:     content,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: classifier call: %v", apperr.ErrExtraction, err)
	}

	raw, err := parseFacts(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrExtraction, err)
	}

	seen := make(map[vocab.UpdateType]bool)
	var out []Candidate
	for _, rf := range raw {
		if !vocab.KnownType(rf.Type) {
			e.logger.Debug("extract: dropping unknown type", slog.String("type", rf.Type))
			continue
		}
		t := vocab.UpdateType(rf.Type)
		if seen[t] {
			// Duplicate types are a classification defect, not a failure.
			e.logger.Warn("extract: duplicate type from classifier", slog.String("type", rf.Type))
			continue
		}
		if len(out) >= e.maxFacts {
			e.logger.Warn("extract: fact limit reached, dropping excess",
				slog.Int("limit", e.maxFacts), slog.String("type", rf.Type))
			continue
		}
		seen[t] = true
		out = append(out, Candidate{Type: t, RawValue: rf.Value})
	}

	return out, nil
}

// parseFacts decodes the classifier payload strictly: a single JSON array
// of {type, value} objects with no unknown fields and no trailing data.
func parseFacts(text string) ([]rawFact, error) {
	cleaned := stripMarkdownFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("classifier returned empty payload")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()

	var facts []rawFact
	if err := dec.Decode(&facts); err != nil {
		return nil, fmt.Errorf("classifier payload is not a {type, value} array: %v", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("classifier payload has trailing data")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("classifier payload has trailing data")
	}

	for i, f := range facts {
		if f.Type == "" || strings.TrimSpace(f.Value) == "" {
			return nil, fmt.Errorf("classifier fact %d is missing type or value", i)
		}
	}
	return facts, nil
}

// stripMarkdownFences removes a surrounding ``` code block, which chat
// models add around JSON despite instructions not to.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = s[3:]
		}
	}
	if strings.HasSuffix(s, "```") {
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
