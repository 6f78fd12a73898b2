package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/analytics"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/inference"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/patients"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/reconcile"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// MaxImageSize mirrors the model service's MAX_CONTENT_LENGTH (16 MiB).
const MaxImageSize = 16 << 20

// Stage of the ingestion state machine. Failures carry the stage they
// happened in so the caller never sees an ambiguous partial success.
type Stage string

const (
	StageValidating  Stage = "validating"
	StageInferring   Stage = "inferring"
	StagePersisting  Stage = "persisting"
	StageAggregating Stage = "aggregating"
	StageDone        Stage = "done"
)

// StageError tags a failure with the stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// Service implements the ingestion use-case: one uploaded image becomes a
// stored artifact, a committed scan row, an updated patient counter and an
// updated per-day analytics bucket.
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Scans     domain.Repository
	Patients  patients.Repository
	Inference inference.Client
	Artifacts domain.ArtifactStore
	// Masks optionally separates segmentation masks from source images
	// (e.g. a different key prefix). Nil falls back to Artifacts.
	Masks     domain.ArtifactStore
	Analytics analytics.Aggregator
	Reconcile reconcile.Repository
	Clock     Clock
	Log       zerolog.Logger
}

// Command untuk ingest satu scan
type IngestCommand struct {
	UserID    string
	PatientID string
	Image     []byte
	MimeType  string
}

//
// ==== USE CASES ====
//

// Ingest runs the full pipeline: Validating → Inferring → Persisting →
// Aggregating → Done. Stages before the scan row commits fail cleanly with
// zero side effects (an orphaned artifact excepted, by design). Failures
// after the commit are downgraded to warnings; the scan row is the source
// of truth and drift is repaired out of band from reconciliation entries.
func (s *Service) Ingest(ctx context.Context, cmd IngestCommand) (*domain.Scan, error) {
	// ---- Validating ----
	if err := validate(cmd.Image, cmd.MimeType); err != nil {
		return nil, &StageError{Stage: StageValidating, Err: err}
	}
	mime := cmd.MimeType
	if mime == "" {
		mime = http.DetectContentType(cmd.Image)
	}

	// ---- Inferring ----
	started := s.Clock.Now()
	res, err := s.Inference.Analyze(ctx, cmd.Image, mime)
	if err != nil {
		// clean no-op: nothing has been stored yet
		return nil, &StageError{Stage: StageInferring, Err: err}
	}
	processing := s.Clock.Now().Sub(started).Seconds()

	tumorType := domain.TumorType(res.Classification.TumorType)
	if !domain.ValidTumorTypes[tumorType] {
		return nil, &StageError{Stage: StageInferring,
			Err: fmt.Errorf("%w: unknown class %q", inference.ErrInference, res.Classification.TumorType)}
	}

	// Past this point the operation runs to completion even if the caller
	// goes away: a scan row must never end up inconsistent with its artifact.
	ctx = context.WithoutCancel(ctx)

	// ---- Persisting ----
	// Artifact first; the scan row must reference a URL that already exists.
	imageURL, err := s.Artifacts.Store(ctx, cmd.Image, mime)
	if err != nil {
		return nil, &StageError{Stage: StagePersisting, Err: err}
	}
	var maskURL string
	if len(res.Mask) > 0 {
		masks := s.Masks
		if masks == nil {
			masks = s.Artifacts
		}
		maskURL, err = masks.Store(ctx, res.Mask, "image/png")
		if err != nil {
			return nil, &StageError{Stage: StagePersisting, Err: err}
		}
	}

	scan := &domain.Scan{
		ID:             domain.ScanID(uuid.New().String()),
		UserID:         cmd.UserID,
		PatientID:      cmd.PatientID,
		TumorType:      tumorType,
		Confidence:     res.Classification.Confidence,
		HasTumor:       tumorType.HasTumor(),
		ProcessingTime: processing,
		ImageURL:       imageURL,
		MaskURL:        maskURL,
		CreatedAt:      started,
	}

	created, err := s.Scans.Create(ctx, scan)
	if err != nil {
		// artifact already uploaded → orphaned; left for the housekeeping sweep
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &StageError{Stage: StagePersisting, Err: err}
		}
		return nil, &StageError{Stage: StagePersisting,
			Err: fmt.Errorf("%w: %v", domain.ErrPersistence, err)}
	}

	// ---- Aggregating ----
	// The scan row is committed; everything below is non-fatal.
	if created.PatientID != "" {
		if err := s.Patients.IncrementScanCount(ctx, patients.PatientID(created.PatientID)); err != nil {
			s.warn(ctx, created, reconcile.TargetPatientCounter, err)
		}
	}
	if err := s.Analytics.RecordScan(ctx, created); err != nil {
		s.warn(ctx, created, reconcile.TargetAnalytics, err)
	}

	return created, nil
}

// Get ambil 1 scan by id
func (s *Service) Get(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	return s.Scans.Get(ctx, id)
}

// Latest ambil N scan terakhir
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Scan, error) {
	return s.Scans.Latest(ctx, limit)
}

// ListByRange returns scans created inside [start, end], ascending by time.
func (s *Service) ListByRange(ctx context.Context, start, end time.Time) ([]*domain.Scan, error) {
	return s.Scans.ListByRange(ctx, start, end)
}

// Paginate returns a classic offset page of scans.
func (s *Service) Paginate(ctx context.Context, page, pageSize int) (domain.PaginatedResult, error) {
	return s.Scans.Paginate(ctx, page, pageSize)
}

// AnalyticsRange reads committed buckets for the range, ascending by date.
// Reads never recompute from scan rows.
func (s *Service) AnalyticsRange(ctx context.Context, start, end time.Time) ([]*analytics.Bucket, error) {
	return s.Analytics.GetRange(ctx, start, end)
}

// warn logs an aggregation-stage failure and files a reconciliation entry so
// the drifted value can be recomputed from scan rows later.
func (s *Service) warn(ctx context.Context, scan *domain.Scan, target string, err error) {
	s.Log.Warn().
		Str("scan_id", string(scan.ID)).
		Str("target", target).
		Err(err).
		Msg("aggregation failed after scan commit")

	if s.Reconcile == nil {
		return
	}
	details, _ := json.Marshal(map[string]string{
		"patient_id": scan.PatientID,
		"date":       string(analytics.DateKeyFor(scan.CreatedAt)),
	})
	entry := &reconcile.Entry{
		ScanID:      string(scan.ID),
		Target:      target,
		Message:     err.Error(),
		DetailsJSON: string(details),
		CreatedAt:   s.Clock.Now(),
	}
	if rerr := s.Reconcile.Save(ctx, entry); rerr != nil {
		s.Log.Error().Err(rerr).Str("scan_id", string(scan.ID)).Msg("failed to persist reconciliation entry")
	}
}

// validate rejects missing, oversized, or non-image payloads before any
// remote call happens.
func validate(image []byte, mimeType string) error {
	if len(image) == 0 {
		return fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}
	if len(image) > MaxImageSize {
		return fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, MaxImageSize)
	}
	mime := mimeType
	if mime == "" {
		mime = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mime, "image/") {
		return fmt.Errorf("%w: unsupported content type %s", domain.ErrInvalidInput, mime)
	}
	return nil
}
