package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/inference"
	dompatients "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/patients"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/reconcile"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/db/memory"
)

// pngImage is a minimal payload that http.DetectContentType sniffs as image/png.
var pngImage = []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("x", 64))

type fakeInference struct {
	result inference.Result
	err    error
	calls  int
}

func (f *fakeInference) Analyze(ctx context.Context, image []byte, mimeType string) (inference.Result, error) {
	f.calls++
	if f.err != nil {
		return inference.Result{}, f.err
	}
	return f.result, nil
}

type fakeStore struct {
	urls  []string
	err   error
	calls int
}

func (f *fakeStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	url := fmt.Sprintf("http://store/obj-%d", f.calls)
	f.urls = append(f.urls, url)
	return url, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// failingScans wraps the memory repo and fails every Create.
type failingScans struct {
	domain.Repository
	err error
}

func (f *failingScans) Create(ctx context.Context, s *domain.Scan) (*domain.Scan, error) {
	return nil, f.err
}

type env struct {
	svc       *Service
	scans     *memory.ScanRepository
	patients  *memory.PatientRepository
	analytics *memory.AnalyticsRepository
	reconcile *memory.ReconcileRepository
	inference *fakeInference
	store     *fakeStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		scans:     memory.NewScanRepository(nil),
		patients:  memory.NewPatientRepository(),
		analytics: memory.NewAnalyticsRepository(),
		reconcile: memory.NewReconcileRepository(),
		inference: &fakeInference{result: inference.Result{
			Classification: inference.Classification{TumorType: "Glioma", Confidence: 0.93},
			Mask:           []byte("mask-bytes"),
		}},
		store: &fakeStore{},
	}
	e.svc = &Service{
		Scans:     e.scans,
		Patients:  e.patients,
		Inference: e.inference,
		Artifacts: e.store,
		Analytics: e.analytics,
		Reconcile: e.reconcile,
		Clock:     fixedClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
		Log:       zerolog.Nop(),
	}
	return e
}

func TestIngestSuccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.patients.Create(ctx, &dompatients.Patient{ID: "11111111-1111-1111-1111-111111111111", FirstName: "A", LastName: "B"})
	if err != nil {
		t.Fatalf("patient Create: %v", err)
	}

	scan, err := e.svc.Ingest(ctx, IngestCommand{
		UserID:    "u-1",
		PatientID: string(p.ID),
		Image:     pngImage,
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if scan.TumorType != domain.TumorGlioma || !scan.HasTumor {
		t.Fatalf("scan = %+v", scan)
	}
	if scan.Confidence != 0.93 {
		t.Fatalf("Confidence = %v", scan.Confidence)
	}
	if scan.ImageURL == "" || scan.MaskURL == "" {
		t.Fatalf("artifact urls missing: %+v", scan)
	}
	if e.store.calls != 2 {
		t.Fatalf("store calls = %d, want 2 (image + mask)", e.store.calls)
	}

	// scan row committed
	if _, err := e.scans.Get(ctx, scan.ID); err != nil {
		t.Fatalf("scan not persisted: %v", err)
	}

	// patient counter bumped
	got, _ := e.patients.Get(ctx, p.ID)
	if got.ScanCount != 1 {
		t.Fatalf("ScanCount = %d, want 1", got.ScanCount)
	}

	// analytics bucket updated for the scan's day
	buckets, _ := e.analytics.GetRange(ctx, scan.CreatedAt, scan.CreatedAt)
	if len(buckets) != 1 || buckets[0].TotalScans != 1 {
		t.Fatalf("buckets = %+v", buckets)
	}
	if buckets[0].TumorDistribution["Glioma"] != 1 {
		t.Fatalf("distribution = %v", buckets[0].TumorDistribution)
	}
}

func TestIngestValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  IngestCommand
	}{
		{"empty image", IngestCommand{UserID: "u", Image: nil}},
		{"oversized", IngestCommand{UserID: "u", Image: make([]byte, MaxImageSize+1)}},
		{"not an image", IngestCommand{UserID: "u", Image: []byte("plain text, definitely not pixels")}},
		{"wrong declared type", IngestCommand{UserID: "u", Image: pngImage, MimeType: "application/pdf"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.Ingest(ctx, tc.cmd)
			var stageErr *StageError
			if !errors.As(err, &stageErr) || stageErr.Stage != StageValidating {
				t.Fatalf("err = %v, want validating StageError", err)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}

	if e.inference.calls != 0 {
		t.Fatalf("inference called %d times for invalid input", e.inference.calls)
	}
	if e.store.calls != 0 {
		t.Fatalf("store called %d times for invalid input", e.store.calls)
	}
}

func TestIngestInferenceFailureIsCleanNoop(t *testing.T) {
	e := newEnv(t)
	e.inference.err = fmt.Errorf("%w: connection refused", inference.ErrUnavailable)
	ctx := context.Background()

	_, err := e.svc.Ingest(ctx, IngestCommand{UserID: "u", Image: pngImage})
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageInferring {
		t.Fatalf("err = %v, want inferring StageError", err)
	}
	if !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}

	if e.store.calls != 0 {
		t.Fatal("artifact stored despite inference failure")
	}
	if list, _ := e.scans.Latest(ctx, 10); len(list) != 0 {
		t.Fatalf("scan rows written: %d", len(list))
	}
	if buckets, _ := e.analytics.GetRange(ctx, time.Unix(0, 0), time.Now().Add(time.Hour)); len(buckets) != 0 {
		t.Fatalf("buckets written: %d", len(buckets))
	}
}

func TestIngestUnknownClassRejected(t *testing.T) {
	e := newEnv(t)
	e.inference.result = inference.Result{Classification: inference.Classification{TumorType: "Sarcoma", Confidence: 0.5}}

	_, err := e.svc.Ingest(context.Background(), IngestCommand{UserID: "u", Image: pngImage})
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageInferring {
		t.Fatalf("err = %v, want inferring StageError", err)
	}
	if !errors.Is(err, inference.ErrInference) {
		t.Fatalf("err = %v, want ErrInference", err)
	}
	if e.store.calls != 0 {
		t.Fatal("artifact stored for unknown class")
	}
}

func TestIngestStorageFailure(t *testing.T) {
	e := newEnv(t)
	e.store.err = fmt.Errorf("%w: bucket gone", domain.ErrStorageUnavailable)
	ctx := context.Background()

	_, err := e.svc.Ingest(ctx, IngestCommand{UserID: "u", Image: pngImage})
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StagePersisting {
		t.Fatalf("err = %v, want persisting StageError", err)
	}
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
	if list, _ := e.scans.Latest(ctx, 10); len(list) != 0 {
		t.Fatal("scan row written despite storage failure")
	}
}

func TestIngestCreateFailureLeavesNoAggregates(t *testing.T) {
	e := newEnv(t)
	e.svc.Scans = &failingScans{Repository: e.scans, err: errors.New("disk full")}
	ctx := context.Background()

	_, err := e.svc.Ingest(ctx, IngestCommand{UserID: "u", Image: pngImage})
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StagePersisting {
		t.Fatalf("err = %v, want persisting StageError", err)
	}
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}

	// artifact upload happened before the failed commit (orphan allowed),
	// but no aggregate moved
	if e.store.calls == 0 {
		t.Fatal("expected artifact upload before create")
	}
	if buckets, _ := e.analytics.GetRange(ctx, time.Unix(0, 0), time.Now().Add(time.Hour)); len(buckets) != 0 {
		t.Fatal("analytics recorded for uncommitted scan")
	}
}

func TestIngestPatientCounterFailureIsNonFatal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// patient never registered: IncrementScanCount fails after the commit
	scan, err := e.svc.Ingest(ctx, IngestCommand{
		UserID:    "u",
		PatientID: "22222222-2222-2222-2222-222222222222",
		Image:     pngImage,
	})
	if err != nil {
		t.Fatalf("Ingest should succeed despite counter failure: %v", err)
	}

	// scan committed and analytics recorded
	if _, err := e.scans.Get(ctx, scan.ID); err != nil {
		t.Fatalf("scan not persisted: %v", err)
	}
	buckets, _ := e.analytics.GetRange(ctx, scan.CreatedAt, scan.CreatedAt)
	if len(buckets) != 1 || buckets[0].TotalScans != 1 {
		t.Fatalf("buckets = %+v", buckets)
	}

	// reconciliation entry filed for the drifted counter
	entries, _ := e.reconcile.ListByScan(ctx, string(scan.ID), 10)
	if len(entries) != 1 {
		t.Fatalf("got %d reconciliation entries, want 1", len(entries))
	}
	if entries[0].Target != reconcile.TargetPatientCounter {
		t.Fatalf("Target = %s", entries[0].Target)
	}
}

func TestIngestWithoutPatientSkipsCounter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	scan, err := e.svc.Ingest(ctx, IngestCommand{UserID: "u", Image: pngImage})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if scan.PatientID != "" {
		t.Fatalf("PatientID = %q", scan.PatientID)
	}
	if entries, _ := e.reconcile.ListByScan(ctx, string(scan.ID), 10); len(entries) != 0 {
		t.Fatalf("unexpected reconciliation entries: %d", len(entries))
	}
}

func TestIngestDuplicateSubmissionsAreDistinct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.svc.Ingest(ctx, IngestCommand{UserID: "u", Image: pngImage})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	second, err := e.svc.Ingest(ctx, IngestCommand{UserID: "u", Image: pngImage})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("duplicate submissions produced the same scan id")
	}

	buckets, _ := e.analytics.GetRange(ctx, first.CreatedAt, second.CreatedAt)
	if len(buckets) != 1 || buckets[0].TotalScans != 2 {
		t.Fatalf("buckets = %+v", buckets)
	}
}

func TestIngestSurvivesCallerCancellation(t *testing.T) {
	e := newEnv(t)

	// cancel right after the call starts; inference is a fake so the
	// pipeline reaches the persist stage with a dead caller context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scan, err := e.svc.Ingest(ctx, IngestCommand{UserID: "u", Image: pngImage})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := e.scans.Get(context.Background(), scan.ID); err != nil {
		t.Fatalf("scan not persisted after cancellation: %v", err)
	}
}

func TestIngestMaskOptional(t *testing.T) {
	e := newEnv(t)
	e.inference.result.Mask = nil

	scan, err := e.svc.Ingest(context.Background(), IngestCommand{UserID: "u", Image: pngImage})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if scan.MaskURL != "" {
		t.Fatalf("MaskURL = %q, want empty", scan.MaskURL)
	}
	if e.store.calls != 1 {
		t.Fatalf("store calls = %d, want 1", e.store.calls)
	}
}
