package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Manifest is a batch of documents to mine, usually loaded from a JSON
// file of the form [{"url": "...", "type": "motor", "pages": "1:3"}, ...].
type Manifest struct {
	Documents []Request `json:"documents"`
}

// LoadManifest accepts either the wrapped {"documents": [...]} form or
// a bare JSON array of requests.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err == nil && len(m.Documents) > 0 {
		return &m, nil
	}
	var reqs []Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &Manifest{Documents: reqs}, nil
}

// BatchReport aggregates the outcome of a manifest run.
type BatchReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Documents  []Summary `json:"documents"`
	Persisted  int       `json:"persisted"`
	Duplicates int       `json:"duplicates"`
	Failed     int       `json:"failed"`
}

// RunManifest processes every document in order. One document failing
// does not stop the batch; its summary carries the error.
func (p *Processor) RunManifest(ctx context.Context, m *Manifest) *BatchReport {
	report := &BatchReport{StartedAt: time.Now().UTC()}
	for _, req := range m.Documents {
		summary, err := p.ProcessDocument(ctx, req)
		if err != nil {
			p.Logger.Error("pipeline.document.failed", "source", req.Source, "error", err)
		}
		report.Documents = append(report.Documents, summary)
		report.Persisted += summary.Persisted
		report.Duplicates += summary.Duplicates
		report.Failed += summary.Failed

		if ctx.Err() != nil {
			break
		}
	}
	report.FinishedAt = time.Now().UTC()
	return report
}

// WriteReport writes the report as indented JSON to path, or to w when
// path is empty.
func WriteReport(report any, path string, w io.Writer) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	out = append(out, '\n')
	if path == "" {
		_, err = w.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
