package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/assistant"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/db/memory"
)

type fakeChat struct {
	answer  string
	err     error
	lastCtx *assistant.ScanContext
}

func (f *fakeChat) Chat(ctx context.Context, message string, scan *assistant.ScanContext) (string, error) {
	f.lastCtx = scan
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func TestChatAndStore(t *testing.T) {
	chat := &fakeChat{answer: "It looks like a glioma."}
	repo := memory.NewAssistantRepository()
	scans := memory.NewScanRepository(nil)
	svc := NewService(chat, repo, scans)
	ctx := context.Background()

	reply, err := svc.ChatAndStore(ctx, "what is this?", "")
	if err != nil {
		t.Fatalf("ChatAndStore: %v", err)
	}
	if reply.Answer != "It looks like a glioma." || reply.Question != "what is this?" {
		t.Fatalf("reply = %+v", reply)
	}
	if chat.lastCtx != nil {
		t.Fatal("scan context passed without a scan id")
	}

	// persisted
	list, err := svc.ListReplies(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListReplies: %v", err)
	}
	if len(list) != 1 || list[0].ID != reply.ID {
		t.Fatalf("stored replies = %+v", list)
	}
}

func TestChatWithScanContext(t *testing.T) {
	chat := &fakeChat{answer: "ok"}
	scans := memory.NewScanRepository(nil)
	svc := NewService(chat, memory.NewAssistantRepository(), scans)
	ctx := context.Background()

	scan, err := scans.Create(ctx, &domain.Scan{
		ID:         "33333333-3333-3333-3333-333333333333",
		UserID:     "u",
		TumorType:  domain.TumorGlioma,
		Confidence: 0.91,
		HasTumor:   true,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("scan Create: %v", err)
	}

	if _, err := svc.ChatAndStore(ctx, "explain my result", string(scan.ID)); err != nil {
		t.Fatalf("ChatAndStore: %v", err)
	}
	if chat.lastCtx == nil {
		t.Fatal("scan context not passed to provider")
	}
	if chat.lastCtx.TumorType != "Glioma" || chat.lastCtx.Confidence != 0.91 || !chat.lastCtx.HasTumor {
		t.Fatalf("scan context = %+v", chat.lastCtx)
	}

	// history filtered by scan
	hist, err := svc.History(ctx, string(scan.ID), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("got %d history entries, want 1", len(hist))
	}
}

func TestChatUnknownScan(t *testing.T) {
	svc := NewService(&fakeChat{answer: "ok"}, memory.NewAssistantRepository(), memory.NewScanRepository(nil))
	_, err := svc.ChatAndStore(context.Background(), "hi", "44444444-4444-4444-4444-444444444444")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestChatNotConfigured(t *testing.T) {
	svc := NewService(nil, memory.NewAssistantRepository(), memory.NewScanRepository(nil))
	_, err := svc.ChatAndStore(context.Background(), "hi", "")
	if !errors.Is(err, assistant.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestChatProviderQuota(t *testing.T) {
	chat := &fakeChat{err: assistant.ErrQuotaExceeded}
	svc := NewService(chat, memory.NewAssistantRepository(), memory.NewScanRepository(nil))
	_, err := svc.ChatAndStore(context.Background(), "hi", "")
	if !errors.Is(err, assistant.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	// nothing stored on failure
	if list, _ := svc.ListReplies(context.Background(), 1, 10); len(list) != 0 {
		t.Fatalf("stored %d replies on failure", len(list))
	}
}
