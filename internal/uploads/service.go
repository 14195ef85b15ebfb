package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"novel-assistant/internal/analyses"
	"novel-assistant/internal/documents"
	"novel-assistant/internal/extract"
	"novel-assistant/internal/shared/metrics"
	"novel-assistant/internal/shared/telemetry"
	"novel-assistant/internal/shared/util"
	"novel-assistant/internal/textanalysis"
)

// DefaultMaxBytes caps an upload at 10 MiB.
const DefaultMaxBytes = 10 << 20

// Upload is one file handed to the pipeline.
type Upload struct {
	FileName string
	MimeType string
	Body     io.Reader
}

// Result is what the pipeline produced for one upload.
type Result struct {
	DocumentID string   `json:"documentId"`
	AnalysisID string   `json:"analysisId"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Keywords   []string `json:"keywords"`
}

// Service runs upload -> document -> analysis -> analysis record.
type Service struct {
	Docs     *documents.Service
	Analyses *analyses.Service
	Analyzer *textanalysis.Analyzer
	MaxBytes int64
}

// Process stores the upload as a document, analyzes its text and records the
// analysis. The document and analysis writes are independent: a failure after
// the first leaves a document without an analysis.
func (s *Service) Process(ctx context.Context, up Upload) (Result, error) {
	start := time.Now()
	metrics.IncAnalysisStarted()

	res, err := s.process(ctx, up)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			metrics.IncUploadsRejected(metrics.ReasonTooLarge)
		case errors.Is(err, ErrInvalidInput):
			metrics.IncUploadsRejected(metrics.ReasonInvalidInput)
		default:
			metrics.IncAnalysisFailed()
		}
		telemetry.Error("analysis.failed", map[string]any{
			"request_id":  telemetry.RequestID(ctx),
			"file_name":   up.FileName,
			"document_id": res.DocumentID,
			"error":       err.Error(),
		})
		return Result{}, err
	}

	elapsed := metrics.SinceMillis(start)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(elapsed)
	telemetry.Info("analysis.complete", map[string]any{
		"request_id":  telemetry.RequestID(ctx),
		"document_id": res.DocumentID,
		"analysis_id": res.AnalysisID,
		"keywords":    len(res.Keywords),
		"duration_ms": elapsed,
	})
	return res, nil
}

func (s *Service) process(ctx context.Context, up Upload) (Result, error) {
	if up.Body == nil {
		return Result{}, fmt.Errorf("%w: no file", ErrInvalidInput)
	}
	raw, err := readLimited(up.Body, s.maxBytes())
	if err != nil {
		return Result{}, err
	}

	title := util.DocumentTitle(up.FileName)
	text, err := extract.Text(ctx, raw, up.MimeType, title)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	kind := extract.DetectType(up.MimeType, title, raw)
	metrics.ObserveUploadBytes(len(raw))

	doc, err := s.Docs.CreateFromUpload(ctx, title, text, raw, kind)
	if err != nil {
		return Result{}, fmt.Errorf("store document: %w", err)
	}
	metrics.IncDocumentsStored(kind)
	out := Result{DocumentID: doc.ID, Title: doc.Title}

	analysis, err := s.Analyzer.Analyze(ctx, text)
	if err != nil {
		return out, fmt.Errorf("analyze: %w", err)
	}

	rec, err := s.Analyses.Create(ctx, doc.ID, analysis.Summary, analysis.Keywords)
	if err != nil {
		return out, fmt.Errorf("store analysis: %w", err)
	}

	out.AnalysisID = rec.ID
	out.Summary = rec.Summary
	out.Keywords = rec.Keywords
	return out, nil
}

func (s *Service) maxBytes() int64 {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return DefaultMaxBytes
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > max {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, max)
	}
	return raw, nil
}
