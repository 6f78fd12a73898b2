package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/assistant"
	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// Service answers questions about scan results through the chat provider and
// keeps every reply for auditing.
type Service struct {
	Client assistant.Client
	Repo   assistant.Repository
	Scans  domain.Repository
}

func NewService(client assistant.Client, repo assistant.Repository, scans domain.Repository) *Service {
	return &Service{Client: client, Repo: repo, Scans: scans}
}

// ChatAndStore runs a chat turn. When scanID is set the scan's result is
// fetched and handed to the provider as context.
func (s *Service) ChatAndStore(ctx context.Context, message, scanID string) (*assistant.Reply, error) {
	if s.Client == nil {
		return nil, assistant.ErrNotConfigured
	}

	var scanCtx *assistant.ScanContext
	if scanID != "" {
		scan, err := s.Scans.Get(ctx, domain.ScanID(scanID))
		if err != nil {
			return nil, err
		}
		scanCtx = &assistant.ScanContext{
			TumorType:  string(scan.TumorType),
			Confidence: scan.Confidence,
			HasTumor:   scan.HasTumor,
		}
	}

	answer, err := s.Client.Chat(ctx, message, scanCtx)
	if err != nil {
		return nil, err
	}

	reply := &assistant.Reply{
		ID:        assistant.ReplyID(uuid.New().String()),
		ScanID:    scanID,
		Question:  message,
		Answer:    answer,
		CreatedAt: time.Now(),
	}
	if s.Repo != nil {
		if err := s.Repo.Save(ctx, reply); err != nil {
			return nil, err
		}
	}
	return reply, nil
}

// History lists stored replies for a scan.
func (s *Service) History(ctx context.Context, scanID string, limit int) ([]*assistant.Reply, error) {
	return s.Repo.ListByScan(ctx, scanID, limit)
}

// ListReplies returns a page of replies ordered by created_at desc.
func (s *Service) ListReplies(ctx context.Context, page, pageSize int) ([]*assistant.Reply, error) {
	return s.Repo.Paginate(ctx, page, pageSize)
}
